//////////////////////////////////////////////////////////////////////////////
//
// Capture sink stages: format negotiation and sample ingestion
//
// Copyright 2026 Livecap Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

/*
Package sink implements the ingestion boundary between an external capture
source and the encoder pipeline. A stage (VideoSink or AudioSink) owns one
pin. The pin negotiates a sample format with the source, then accepts pushed
samples on the source's own goroutine, copies each into a reused owned buffer
with derived timing, and hands the buffer to the stage's consumer callback.

One lock per stage serializes configuration reads, configuration writes, and
the whole of each delivery (validate, copy, callback). The host's state
machine gates configuration changes: only a Stopped stage accepts SetConfig,
and a delivery that arrives after the transition to Stopped is answered with
a wrong-state result but treated as an expected race, not an error.
*/
package sink

import (
	"sync"

	"github.com/livecap/livecap/internal/logging"
	"github.com/livecap/livecap/internal/media"
)

var log = logging.DefaultLogger.WithTag("sink")

// State of the host state machine, as observed by a stage.
type State int

const (
	Stopped State = iota
	Paused
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Paused:
		return "paused"
	case Running:
		return "running"
	default:
		return "invalid"
	}
}

// A Sample is one pushed payload plus its time range in the source's
// reference-time ticks. The payload is only borrowed for the duration of the
// Deliver call; the pin copies what it keeps.
type Sample struct {
	Data      []byte
	StartTime int64

	// StopTime is meaningful only when HasStopTime is set. Sources are not
	// required to supply one.
	StopTime    int64
	HasStopTime bool
}

// Pin is the negotiation and ingestion contract of one sink stage. The host
// walks OfferType in priority order, settles a type via ValidateType, then
// the source pushes samples through Deliver.
type Pin interface {
	// OfferType returns the preferred type at the given index. It returns
	// media.ErrNoMoreTypes once the offered set is exhausted and
	// media.ErrInvalidArgument for a negative index.
	OfferType(index int) (media.TypeDescriptor, error)

	// ValidateType checks a source-proposed descriptor and, on success,
	// records the derived configuration as the pin's actual configuration.
	// Rejections (media.ErrTypeRejected, media.ErrMalformedType) never
	// mutate the recorded configuration.
	ValidateType(td media.TypeDescriptor) error

	// Deliver ingests one sample on the caller's goroutine: validate, copy
	// into the stage's owned buffer, invoke the consumer. The consumer's own
	// status is advisory and never fails the delivery.
	Deliver(s Sample) error
}

// FrameConsumer receives each completed video frame. The frame is valid only
// for the duration of the call.
type FrameConsumer interface {
	OnFrame(f *media.Frame) error
}

// FrameConsumerFunc adapts a function to the FrameConsumer interface.
type FrameConsumerFunc func(*media.Frame) error

func (fn FrameConsumerFunc) OnFrame(f *media.Frame) error { return fn(f) }

// SampleConsumer receives each completed audio buffer. The buffer is valid
// only for the duration of the call.
type SampleConsumer interface {
	OnSamples(b *media.SampleBuffer) error
}

// SampleConsumerFunc adapts a function to the SampleConsumer interface.
type SampleConsumerFunc func(*media.SampleBuffer) error

func (fn SampleConsumerFunc) OnSamples(b *media.SampleBuffer) error { return fn(b) }

// Stats counts deliveries observed by one stage.
type Stats struct {
	// Delivered samples, including those whose consumer returned an error.
	Delivered uint64

	// Dropped samples: empty payloads and copy failures.
	Dropped uint64

	// Late samples, answered with a wrong-state result after a stop.
	Late uint64
}

// Stage is the host-facing surface shared by both sink kinds.
type Stage interface {
	Stop()
	Pause()
	Run()
	State() State

	// Pin returns the stage's single pin for index 0, nil otherwise.
	Pin(index int) Pin

	Stats() Stats
}

// stage carries the lock, observed host state, and delivery counters shared
// by both sink kinds. The lock guards everything below it in each concrete
// sink as well.
type stage struct {
	mu    sync.Mutex
	state State
	stats Stats
}

func (s *stage) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// Stop, Pause and Run are the host's state-transition notifications. Each
// waits for any in-progress delivery to finish.
func (s *stage) Stop() { s.setState(Stopped) }

func (s *stage) Pause() { s.setState(Paused) }

func (s *stage) Run() { s.setState(Running) }

func (s *stage) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stage) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
