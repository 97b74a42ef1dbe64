package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/livecap/livecap/internal/media"
)

// sampleRecorder collects delivered buffer metadata.
type sampleRecorder struct {
	buffers    int
	timestamps []int64
	durations  []int64
	lastConfig media.AudioConfig
	err        error
}

func (r *sampleRecorder) OnSamples(b *media.SampleBuffer) error {
	r.buffers++
	r.timestamps = append(r.timestamps, b.Timestamp)
	r.durations = append(r.durations, b.Duration)
	r.lastConfig = b.Config
	return r.err
}

func stereoPCM() media.AudioConfig {
	return media.AudioConfig{
		FormatTag:      media.FormatTagPCM,
		Channels:       2,
		SampleRate:     48000,
		BytesPerSecond: 192000,
		BlockAlign:     4,
		BitsPerSample:  16,
	}
}

func newAudioSink(t *testing.T, rec *sampleRecorder) *AudioSink {
	t.Helper()
	s, err := NewAudioSink(rec)
	assert.NoError(t, err)
	return s
}

func negotiateAudio(t *testing.T, s *AudioSink, cfg media.AudioConfig) Pin {
	t.Helper()
	pin := s.Pin(0)
	assert.NoError(t, pin.ValidateType(media.NewAudioType(media.PCM, cfg)))
	return pin
}

func TestNewAudioSinkRequiresConsumer(t *testing.T) {
	_, err := NewAudioSink(nil)
	assert.True(t, errors.Is(err, media.ErrInvalidArgument))
}

func TestAudioOfferOrder(t *testing.T) {
	s := newAudioSink(t, &sampleRecorder{})
	pin := s.Pin(0)

	// Floating-point PCM is offered before integer PCM.
	td, err := pin.OfferType(0)
	assert.NoError(t, err)
	assert.Equal(t, media.Audio, td.Major)
	assert.Equal(t, media.IEEEFloat, td.Subtype)

	td, err = pin.OfferType(1)
	assert.NoError(t, err)
	assert.Equal(t, media.PCM, td.Subtype)

	for _, index := range []int{2, 3, 50} {
		_, err := pin.OfferType(index)
		assert.True(t, errors.Is(err, media.ErrNoMoreTypes))
	}

	_, err = pin.OfferType(-1)
	assert.True(t, errors.Is(err, media.ErrInvalidArgument))
}

func TestAudioValidateType(t *testing.T) {
	s := newAudioSink(t, &sampleRecorder{})
	pin := s.Pin(0)

	// Wrong major kind.
	err := pin.ValidateType(media.NewVideoType(media.VideoConfig{Width: 4, Height: 4}))
	assert.True(t, errors.Is(err, media.ErrTypeRejected))
	assert.True(t, s.Config().Empty())

	// Compressed audio is unconditionally rejected.
	td := media.NewAudioType(media.PCM, stereoPCM())
	td.TemporallyCompressed = true
	err = pin.ValidateType(td)
	assert.True(t, errors.Is(err, media.ErrTypeRejected))
	assert.True(t, s.Config().Empty())

	// Malformed format block, distinct from a semantic rejection.
	td = media.NewAudioType(media.PCM, stereoPCM())
	td.Format = td.Format[:10]
	err = pin.ValidateType(td)
	assert.True(t, errors.Is(err, media.ErrMalformedType))
	assert.False(t, errors.Is(err, media.ErrTypeRejected))
	assert.True(t, s.Config().Empty())

	// Well-formed block with an unsupported format tag.
	mp3 := stereoPCM()
	mp3.FormatTag = 0x0055
	err = pin.ValidateType(media.NewAudioType(media.PCM, mp3))
	assert.True(t, errors.Is(err, media.ErrTypeRejected))
	assert.True(t, s.Config().Empty())

	// Acceptance round-trips the proposal into the configuration.
	assert.NoError(t, pin.ValidateType(media.NewAudioType(media.PCM, stereoPCM())))
	assert.Equal(t, stereoPCM(), s.Config())
}

func TestAudioValidateExtensible(t *testing.T) {
	s := newAudioSink(t, &sampleRecorder{})
	pin := s.Pin(0)

	cfg := media.AudioConfig{
		FormatTag:          media.FormatTagExtensible,
		Channels:           6,
		SampleRate:         44100,
		BytesPerSecond:     44100 * 18,
		BlockAlign:         18,
		BitsPerSample:      24,
		ValidBitsPerSample: 20,
		ChannelMask:        0x3F,
	}
	assert.NoError(t, pin.ValidateType(media.NewAudioType(media.PCM, cfg)))
	assert.Equal(t, cfg, s.Config())
}

func TestAudioDeliverTiming(t *testing.T) {
	rec := &sampleRecorder{}
	s := newAudioSink(t, rec)
	pin := negotiateAudio(t, s, stereoPCM())
	s.Pause()
	s.Run()

	// Start 1000 ms, stop 1500 ms, in source ticks.
	err := pin.Deliver(Sample{
		Data:        make([]byte, 8),
		StartTime:   media.MillisecondsToTicks(1000),
		StopTime:    media.MillisecondsToTicks(1500),
		HasStopTime: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, []int64{1000}, rec.timestamps)
	assert.Equal(t, []int64{500}, rec.durations)
	assert.Equal(t, stereoPCM(), rec.lastConfig)
}

func TestAudioDeliverNoStopTime(t *testing.T) {
	rec := &sampleRecorder{}
	s := newAudioSink(t, rec)
	pin := negotiateAudio(t, s, stereoPCM())
	s.Run()

	// Missing stop time is recorded as zero duration, not a failure.
	err := pin.Deliver(Sample{
		Data:      make([]byte, 8),
		StartTime: media.MillisecondsToTicks(250),
	})
	assert.NoError(t, err)
	assert.Equal(t, []int64{250}, rec.timestamps)
	assert.Equal(t, []int64{0}, rec.durations)
	assert.Equal(t, uint64(1), s.Stats().Delivered)
}

func TestAudioDeliverEmptySample(t *testing.T) {
	rec := &sampleRecorder{}
	s := newAudioSink(t, rec)
	pin := negotiateAudio(t, s, stereoPCM())
	s.Run()

	err := pin.Deliver(Sample{})
	assert.True(t, errors.Is(err, media.ErrInvalidArgument))
	assert.Zero(t, rec.buffers)
}

func TestAudioDeliverCopyFailureKeepsPinUsable(t *testing.T) {
	rec := &sampleRecorder{}
	s := newAudioSink(t, rec)
	pin := negotiateAudio(t, s, stereoPCM())
	s.Run()

	// Not a whole number of sample blocks.
	err := pin.Deliver(Sample{Data: make([]byte, 6)})
	assert.True(t, errors.Is(err, media.ErrCopyFailure))
	assert.Zero(t, rec.buffers)

	assert.NoError(t, pin.Deliver(Sample{Data: make([]byte, 8)}))
	assert.Equal(t, 1, rec.buffers)
	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.Delivered)
	assert.Equal(t, uint64(1), stats.Dropped)
}

func TestAudioDeliverAfterStop(t *testing.T) {
	rec := &sampleRecorder{}
	s := newAudioSink(t, rec)
	pin := negotiateAudio(t, s, stereoPCM())
	s.Run()
	s.Stop()

	err := pin.Deliver(Sample{Data: make([]byte, 8)})
	assert.True(t, errors.Is(err, media.ErrWrongState))
	assert.Zero(t, rec.buffers)
	assert.Equal(t, uint64(1), s.Stats().Late)
}

func TestAudioSetConfigStateGate(t *testing.T) {
	s := newAudioSink(t, &sampleRecorder{})
	negotiateAudio(t, s, stereoPCM())

	s.Run()
	err := s.SetConfig(stereoPCM())
	assert.True(t, errors.Is(err, media.ErrWrongState))
	assert.Equal(t, stereoPCM(), s.Config())

	s.Stop()
	assert.NoError(t, s.SetConfig(stereoPCM()))
	assert.True(t, s.Config().Empty())
}
