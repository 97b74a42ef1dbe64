package livecap

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/livecap/livecap/internal/logging"
	"github.com/livecap/livecap/internal/media"
	"github.com/livecap/livecap/internal/sink"
	"github.com/livecap/livecap/internal/source"
)

var log = logging.DefaultLogger.WithTag("session")

// A Session is the host side of the capture pipeline: it owns the sink
// stages, negotiates a type for each pin with the source, sequences the
// Stopped/Paused/Running transitions, and tears everything down in order.
type Session struct {
	src source.Source

	video *sink.VideoSink
	audio *sink.AudioSink

	mu      sync.Mutex
	started bool
}

// NewSession builds the stages for the kinds the source produces. The stages
// start out Stopped with the requested configurations applied.
func NewSession(c Config) (*Session, error) {
	if c.Source == nil {
		return nil, errors.Wrap(media.ErrInvalidArgument, "nil source")
	}
	s := &Session{src: c.Source}

	for _, kind := range c.Source.Kinds() {
		switch kind {
		case media.Video:
			v, err := sink.NewVideoSink(c.FrameConsumer)
			if err != nil {
				return nil, errors.Wrap(err, "video stage")
			}
			if !c.Video.Empty() {
				if err := v.SetConfig(c.Video); err != nil {
					return nil, err
				}
			}
			s.video = v
		case media.Audio:
			a, err := sink.NewAudioSink(c.SampleConsumer)
			if err != nil {
				return nil, errors.Wrap(err, "audio stage")
			}
			if !c.Audio.Empty() {
				if err := a.SetConfig(c.Audio); err != nil {
					return nil, err
				}
			}
			s.audio = a
		}
	}
	if s.video == nil && s.audio == nil {
		return nil, errors.Wrap(media.ErrInvalidArgument, "source produces no media kinds")
	}
	return s, nil
}

// Start negotiates a type for each pin, runs the stages, and begins sample
// production.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.Wrap(media.ErrWrongState, "session already started")
	}

	var videoPin, audioPin sink.Pin
	if s.video != nil {
		videoPin = s.video.Pin(0)
		if err := s.negotiate(videoPin, media.Video); err != nil {
			return err
		}
	}
	if s.audio != nil {
		audioPin = s.audio.Pin(0)
		if err := s.negotiate(audioPin, media.Audio); err != nil {
			return err
		}
	}

	// The host machine passes through Paused on the way up.
	s.eachStage(func(st sink.Stage) { st.Pause() })
	s.eachStage(func(st sink.Stage) { st.Run() })

	if err := s.src.Start(videoPin, audioPin); err != nil {
		s.eachStage(func(st sink.Stage) { st.Pause() })
		s.eachStage(func(st sink.Stage) { st.Stop() })
		return errors.Wrap(err, "source start")
	}
	s.started = true
	log.Info("session started")
	return nil
}

// Stop halts the source first, so at most one in-flight delivery can race
// the stop transition, then winds the stages down through Paused.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return errors.Wrap(media.ErrWrongState, "session not started")
	}
	if err := s.src.Stop(); err != nil {
		log.Warn("source stop: %v", err)
	}
	s.eachStage(func(st sink.Stage) { st.Pause() })
	s.eachStage(func(st sink.Stage) { st.Stop() })
	s.started = false
	log.Info("session stopped")
	return nil
}

// negotiate walks the pin's offered types in priority order until the source
// proposes one the pin accepts. A malformed counter-proposal is a protocol
// violation and aborts negotiation; a rejection just moves to the next offer.
func (s *Session) negotiate(pin sink.Pin, kind media.Kind) error {
	for index := 0; ; index++ {
		offered, err := pin.OfferType(index)
		if errors.Is(err, media.ErrNoMoreTypes) {
			return errors.Wrapf(media.ErrTypeRejected, "no agreeable %s type", kind)
		}
		if err != nil {
			return err
		}

		proposed, err := s.src.Propose(kind, offered)
		if err != nil {
			log.Debug("%s offer %d declined by source: %v", kind, index, err)
			continue
		}
		if err := pin.ValidateType(proposed); err != nil {
			if errors.Is(err, media.ErrMalformedType) {
				return err
			}
			log.Debug("%s proposal for offer %d rejected: %v", kind, index, err)
			continue
		}
		log.Info("negotiated %s type at offer index %d", kind, index)
		return nil
	}
}

func (s *Session) eachStage(fn func(sink.Stage)) {
	if s.video != nil {
		fn(s.video)
	}
	if s.audio != nil {
		fn(s.audio)
	}
}

// VideoConfig returns the negotiated video configuration, or an empty one if
// the session has no video stage or has not negotiated.
func (s *Session) VideoConfig() media.VideoConfig {
	if s.video == nil {
		return media.VideoConfig{}
	}
	return s.video.Config()
}

// AudioConfig returns the negotiated audio configuration, or an empty one if
// the session has no audio stage or has not negotiated.
func (s *Session) AudioConfig() media.AudioConfig {
	if s.audio == nil {
		return media.AudioConfig{}
	}
	return s.audio.Config()
}

// Stats returns the delivery counters of both stages.
func (s *Session) Stats() (video, audio sink.Stats) {
	if s.video != nil {
		video = s.video.Stats()
	}
	if s.audio != nil {
		audio = s.audio.Stats()
	}
	return
}
