//////////////////////////////////////////////////////////////////////////////
//
// Config contains configuration data for a capture Session
//
// Copyright 2026 Livecap Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package livecap

import (
	"github.com/livecap/livecap/internal/media"
	"github.com/livecap/livecap/internal/sink"
	"github.com/livecap/livecap/internal/source"
)

type Config struct {
	// Source supplies the raw samples. Required.
	Source source.Source

	// Requested capture configurations, applied to the stages before
	// negotiation. A zero value keeps the stage's default.
	Video media.VideoConfig
	Audio media.AudioConfig

	// Consumers for completed buffers. One is required for each kind the
	// source produces.
	FrameConsumer  sink.FrameConsumer
	SampleConsumer sink.SampleConsumer
}
