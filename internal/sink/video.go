package sink

import (
	"github.com/pkg/errors"

	"github.com/livecap/livecap/internal/media"
)

// Requested geometry used before the first SetConfig.
var defaultVideoConfig = media.VideoConfig{Width: 1280, Height: 720}

// A VideoSink accepts uncompressed I420 frames pushed by a capture source and
// forwards each one, copied and timestamped, to a FrameConsumer.
type VideoSink struct {
	stage

	pin      *videoPin
	consumer FrameConsumer

	// Reused on every delivery; owned by the stage until handed to the
	// consumer, and only for the duration of the callback.
	frame media.Frame
}

// NewVideoSink creates a stopped video stage. The consumer is required.
func NewVideoSink(consumer FrameConsumer) (*VideoSink, error) {
	if consumer == nil {
		return nil, errors.Wrap(media.ErrInvalidArgument, "nil frame consumer")
	}
	s := &VideoSink{consumer: consumer}
	s.pin = &videoPin{owner: s, requested: defaultVideoConfig}
	return s, nil
}

// Config returns a copy of the negotiated configuration. It is empty until a
// proposed type has been accepted.
func (s *VideoSink) Config() media.VideoConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pin.actual
}

// SetConfig records the requested capture geometry and clears the negotiated
// configuration, forcing renegotiation. Allowed only while the host state
// machine reports Stopped.
func (s *VideoSink) SetConfig(c media.VideoConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Stopped {
		return errors.Wrapf(media.ErrWrongState, "set video config while %s", s.state)
	}
	s.pin.requested = c
	s.pin.actual = media.VideoConfig{}
	return nil
}

// Pin returns the stage's single pin for index 0, nil otherwise. The pin
// itself is stable for the stage's lifetime.
func (s *VideoSink) Pin(index int) Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index != 0 {
		return nil
	}
	return s.pin
}

// videoPin holds the negotiation state for the video stage. The back
// reference to the owning stage is non-owning; the stage owns the pin.
type videoPin struct {
	owner *VideoSink

	requested media.VideoConfig
	actual    media.VideoConfig
}

func (p *videoPin) OfferType(index int) (media.TypeDescriptor, error) {
	s := p.owner
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 {
		return media.TypeDescriptor{}, errors.Wrapf(media.ErrInvalidArgument, "type index %d", index)
	}
	// One supported layout: I420 at the requested geometry.
	if index > 0 {
		return media.TypeDescriptor{}, media.ErrNoMoreTypes
	}
	return media.NewVideoType(p.requested), nil
}

func (p *videoPin) ValidateType(td media.TypeDescriptor) error {
	s := p.owner
	s.mu.Lock()
	defer s.mu.Unlock()

	if td.Major != media.Video {
		log.Info("rejecting type: major kind not video")
		return errors.Wrap(media.ErrTypeRejected, "major kind not video")
	}
	switch td.FormatKind {
	case media.FormatVideoInfo, media.FormatVideoInfo2:
	default:
		log.Info("rejecting type: format kind %s not supported", td.FormatKind)
		return errors.Wrapf(media.ErrTypeRejected, "format kind %s", td.FormatKind)
	}

	h, err := media.ParseVideoInfo(td.FormatKind, td.Format)
	if err != nil {
		log.Info("invalid type: %v", err)
		return err
	}
	if td.Subtype != media.I420 || h.Compression != media.FourCCI420 {
		log.Info("rejecting type: pixel layout %s/%s not I420", td.Subtype, h.Compression)
		return errors.Wrapf(media.ErrTypeRejected, "pixel layout %s", h.Compression)
	}

	p.actual = h.Config()
	log.Debug("accepted video type: %dx%d", p.actual.Width, p.actual.Height)
	return nil
}

func (p *videoPin) Deliver(sm Sample) error {
	s := p.owner
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		// The host's shutdown can race one in-flight delivery past the stop
		// transition; answer wrong-state without logging it as an error.
		s.stats.Late++
		return media.ErrWrongState
	}
	if len(sm.Data) == 0 {
		s.stats.Dropped++
		log.Error("video pin delivered an empty sample")
		return errors.Wrap(media.ErrInvalidArgument, "empty sample")
	}

	if err := s.frame.Init(p.actual, sm.StartTime, sm.Data); err != nil {
		s.stats.Dropped++
		log.Error("frame copy failed: %v", err)
		return err
	}
	log.Debug("frame received: %dx%d timestamp=%d size=%d",
		p.actual.Width, p.actual.Height, s.frame.Timestamp, s.frame.Len())

	s.stats.Delivered++
	if err := s.consumer.OnFrame(&s.frame); err != nil {
		// Consumer status is advisory; the frame still counts as delivered.
		log.Error("frame consumer: %v", err)
	}
	return nil
}
