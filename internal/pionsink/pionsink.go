// Package pionsink adapts sink consumers to Pion sample tracks, so a
// downstream encoder or a pass-through pipeline can feed delivered buffers
// into anything implementing WriteSample.
package pionsink

import (
	"time"

	pionmedia "github.com/pion/webrtc/v3/pkg/media"

	"github.com/livecap/livecap/internal/logging"
	"github.com/livecap/livecap/internal/media"
)

var log = logging.DefaultLogger.WithTag("pionsink")

// SampleWriter is the subset of a Pion sample track the adapters need
// (e.g. *webrtc.TrackLocalStaticSample).
type SampleWriter interface {
	WriteSample(pionmedia.Sample) error
}

// VideoWriter forwards delivered frames as Pion samples. It implements
// sink.FrameConsumer.
type VideoWriter struct {
	w SampleWriter

	// Previous frame timestamp in source ticks, for deriving durations.
	lastTicks int64
	haveLast  bool
}

func NewVideoWriter(w SampleWriter) *VideoWriter {
	return &VideoWriter{w: w}
}

func (v *VideoWriter) OnFrame(f *media.Frame) error {
	// Frames carry only a start time; derive the duration from consecutive
	// timestamps. The first frame goes out with zero duration.
	var duration time.Duration
	if v.haveLast {
		duration = time.Duration(f.Timestamp-v.lastTicks) * 100 * time.Nanosecond
	}
	v.lastTicks = f.Timestamp
	v.haveLast = true

	// The frame is reused by the stage after this call returns, so the
	// sample gets its own copy.
	data := append([]byte(nil), f.Bytes()...)
	return v.w.WriteSample(pionmedia.Sample{Data: data, Duration: duration})
}

// AudioWriter forwards delivered sample buffers as Pion samples. It
// implements sink.SampleConsumer.
type AudioWriter struct {
	w SampleWriter
}

func NewAudioWriter(w SampleWriter) *AudioWriter {
	return &AudioWriter{w: w}
}

func (a *AudioWriter) OnSamples(b *media.SampleBuffer) error {
	data := append([]byte(nil), b.Bytes()...)
	return a.w.WriteSample(pionmedia.Sample{
		Data:     data,
		Duration: time.Duration(b.Duration) * time.Millisecond,
	})
}
