package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livecap/livecap"
	"github.com/livecap/livecap/internal/media"
	"github.com/livecap/livecap/internal/sink"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// statsReport is the JSON payload pushed to each stats subscriber.
type statsReport struct {
	Video       sink.Stats        `json:"video"`
	Audio       sink.Stats        `json:"audio"`
	VideoConfig media.VideoConfig `json:"videoConfig"`
	AudioConfig media.AudioConfig `json:"audioConfig"`
}

// serveStats publishes delivery counters once a second to every websocket
// client connected at /stats.
func serveStats(addr string, session *livecap.Session) {
	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("stats upgrade: %v", err)
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			video, audio := session.Stats()
			report := statsReport{
				Video:       video,
				Audio:       audio,
				VideoConfig: session.VideoConfig(),
				AudioConfig: session.AudioConfig(),
			}
			if err := conn.WriteJSON(report); err != nil {
				return
			}
		}
	})

	log.Info("serving stats on ws://%s/stats", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("stats server: %v", err)
	}
}
