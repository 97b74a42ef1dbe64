package sink

import (
	"github.com/pkg/errors"

	"github.com/livecap/livecap/internal/media"
)

// Sub-formats offered during negotiation, in priority order.
var audioOfferOrder = [...]media.Subtype{media.IEEEFloat, media.PCM}

// An AudioSink accepts uncompressed PCM sample spans pushed by a capture
// source and forwards each one, copied and timestamped, to a SampleConsumer.
type AudioSink struct {
	stage

	pin      *audioPin
	consumer SampleConsumer

	// Reused on every delivery; owned by the stage until handed to the
	// consumer, and only for the duration of the callback.
	buffer media.SampleBuffer
}

// NewAudioSink creates a stopped audio stage. The consumer is required.
func NewAudioSink(consumer SampleConsumer) (*AudioSink, error) {
	if consumer == nil {
		return nil, errors.Wrap(media.ErrInvalidArgument, "nil sample consumer")
	}
	s := &AudioSink{consumer: consumer}
	s.pin = &audioPin{owner: s}
	return s, nil
}

// Config returns a copy of the negotiated configuration. It is empty until a
// proposed type has been accepted.
func (s *AudioSink) Config() media.AudioConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pin.actual
}

// SetConfig records the requested capture format and clears the negotiated
// configuration, forcing renegotiation. Allowed only while the host state
// machine reports Stopped.
func (s *AudioSink) SetConfig(c media.AudioConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Stopped {
		return errors.Wrapf(media.ErrWrongState, "set audio config while %s", s.state)
	}
	s.pin.requested = c
	s.pin.actual = media.AudioConfig{}
	return nil
}

// Pin returns the stage's single pin for index 0, nil otherwise.
func (s *AudioSink) Pin(index int) Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index != 0 {
		return nil
	}
	return s.pin
}

// audioPin holds the negotiation state for the audio stage. The back
// reference to the owning stage is non-owning; the stage owns the pin.
type audioPin struct {
	owner *AudioSink

	requested media.AudioConfig
	actual    media.AudioConfig
}

func (p *audioPin) OfferType(index int) (media.TypeDescriptor, error) {
	s := p.owner
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 {
		return media.TypeDescriptor{}, errors.Wrapf(media.ErrInvalidArgument, "type index %d", index)
	}
	if index >= len(audioOfferOrder) {
		return media.TypeDescriptor{}, media.ErrNoMoreTypes
	}
	return media.NewAudioType(audioOfferOrder[index], p.requested), nil
}

func (p *audioPin) ValidateType(td media.TypeDescriptor) error {
	s := p.owner
	s.mu.Lock()
	defer s.mu.Unlock()

	if td.Major != media.Audio {
		log.Info("rejecting type: major kind not audio")
		return errors.Wrap(media.ErrTypeRejected, "major kind not audio")
	}
	if td.TemporallyCompressed {
		log.Info("rejecting type: compressed audio")
		return errors.Wrap(media.ErrTypeRejected, "compressed audio")
	}
	switch td.Subtype {
	case media.PCM, media.IEEEFloat:
	default:
		log.Info("rejecting type: sub-format %s not supported", td.Subtype)
		return errors.Wrapf(media.ErrTypeRejected, "sub-format %s", td.Subtype)
	}
	if td.FormatKind != media.FormatWaveEx {
		log.Info("rejecting type: format kind %s not supported", td.FormatKind)
		return errors.Wrapf(media.ErrTypeRejected, "format kind %s", td.FormatKind)
	}

	f, err := media.ParseWaveFormat(td.Format)
	if err != nil {
		log.Info("invalid type: %v", err)
		return err
	}
	switch f.FormatTag {
	case media.FormatTagPCM, media.FormatTagIEEEFloat, media.FormatTagExtensible:
	default:
		log.Info("rejecting type: format tag %#04x not supported", f.FormatTag)
		return errors.Wrapf(media.ErrTypeRejected, "format tag %#04x", f.FormatTag)
	}

	p.actual = f.Config()
	log.Debug("accepted audio type: tag=%#04x channels=%d rate=%d bits=%d align=%d",
		p.actual.FormatTag, p.actual.Channels, p.actual.SampleRate,
		p.actual.BitsPerSample, p.actual.BlockAlign)
	return nil
}

func (p *audioPin) Deliver(sm Sample) error {
	s := p.owner
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		// Expected shutdown race; see videoPin.Deliver.
		s.stats.Late++
		return media.ErrWrongState
	}
	if len(sm.Data) == 0 {
		s.stats.Dropped++
		log.Error("audio pin delivered an empty sample")
		return errors.Wrap(media.ErrInvalidArgument, "empty sample")
	}

	timestamp := media.TicksToMilliseconds(sm.StartTime)
	var duration int64
	if sm.HasStopTime {
		duration = media.TicksToMilliseconds(sm.StopTime) - timestamp
	} else {
		log.Warn("audio sample has no stop time")
	}

	if err := s.buffer.Init(p.actual, timestamp, duration, sm.Data); err != nil {
		s.stats.Dropped++
		log.Error("sample copy failed: %v", err)
		return err
	}
	log.Debug("samples received: timestamp=%dms duration=%dms size=%d",
		timestamp, duration, s.buffer.Len())

	s.stats.Delivered++
	if err := s.consumer.OnSamples(&s.buffer); err != nil {
		// Consumer status is advisory; the samples still count as delivered.
		log.Error("sample consumer: %v", err)
	}
	return nil
}
