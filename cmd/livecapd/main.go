package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/livecap/livecap"
	"github.com/livecap/livecap/internal/logging"
	"github.com/livecap/livecap/internal/media"
	"github.com/livecap/livecap/internal/sink"
	"github.com/livecap/livecap/internal/source"
)

var log = logging.DefaultLogger.WithTag("livecapd")

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}
	if flagVersion {
		version()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	src, err := source.Open(flagSource)
	if err != nil {
		return err
	}

	session, err := livecap.NewSession(livecap.Config{
		Source: src,
		Video: media.VideoConfig{
			Width:  int32(flagWidth),
			Height: int32(flagHeight),
		},
		Audio: media.AudioConfig{
			FormatTag:  media.FormatTagPCM,
			Channels:   uint16(flagChannels),
			SampleRate: uint32(flagRate),
		},
		FrameConsumer: sink.FrameConsumerFunc(func(f *media.Frame) error {
			log.Debug("frame %dx%d %d bytes", f.Config.Width, f.Config.Height, f.Len())
			return nil
		}),
		SampleConsumer: sink.SampleConsumerFunc(func(b *media.SampleBuffer) error {
			log.Debug("samples %dms+%dms %d bytes", b.Timestamp, b.Duration, b.Len())
			return nil
		}),
	})
	if err != nil {
		return err
	}

	if err := session.Start(); err != nil {
		return err
	}
	defer session.Stop()

	vc := session.VideoConfig()
	ac := session.AudioConfig()
	log.Info("capturing video %dx%d, audio %d Hz %dch",
		vc.Width, vc.Height, ac.SampleRate, ac.Channels)

	if flagStatsAddr != "" {
		go serveStats(flagStatsAddr, session)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var timeout <-chan time.Time
	if flagDuration > 0 {
		timeout = time.After(time.Duration(flagDuration) * time.Second)
	}

	select {
	case <-interrupt:
		log.Info("interrupted")
	case <-timeout:
	}

	video, audio := session.Stats()
	log.Info("video: delivered=%d dropped=%d late=%d", video.Delivered, video.Dropped, video.Late)
	log.Info("audio: delivered=%d dropped=%d late=%d", audio.Delivered, audio.Dropped, audio.Late)
	return nil
}
