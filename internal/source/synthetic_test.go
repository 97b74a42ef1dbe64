package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/livecap/livecap/internal/media"
	"github.com/livecap/livecap/internal/sink"
)

func TestOpenSpec(t *testing.T) {
	src, err := Open("synthetic:320x240@15")
	assert.NoError(t, err)
	syn := src.(*Synthetic)
	assert.Equal(t, int32(320), syn.cfg.Width)
	assert.Equal(t, int32(240), syn.cfg.Height)
	assert.Equal(t, 15, syn.cfg.FPS)

	// Empty path falls back to defaults.
	src, err = Open("synthetic")
	assert.NoError(t, err)
	assert.Equal(t, int32(defaultWidth), src.(*Synthetic).cfg.Width)

	_, err = Open("synthetic:nonsense")
	assert.Error(t, err)

	_, err = Open("dshow:Logitech Webcam")
	assert.Error(t, err)
}

func TestSyntheticKinds(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{})
	assert.Equal(t, []media.Kind{media.Video, media.Audio}, src.Kinds())
}

func TestSyntheticPropose(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{Width: 320, Height: 240, FPS: 15})

	// The source answers a video offer with its own geometry.
	offered := media.NewVideoType(media.VideoConfig{Width: 1920, Height: 1080})
	td, err := src.Propose(media.Video, offered)
	assert.NoError(t, err)
	h, err := media.ParseVideoInfo(td.FormatKind, td.Format)
	assert.NoError(t, err)
	assert.Equal(t, media.VideoConfig{Width: 320, Height: 240}, h.Config())

	// Float audio offers are declined so negotiation reaches integer PCM.
	_, err = src.Propose(media.Audio, media.NewAudioType(media.IEEEFloat, media.AudioConfig{}))
	assert.Error(t, err)

	td, err = src.Propose(media.Audio, media.NewAudioType(media.PCM, media.AudioConfig{}))
	assert.NoError(t, err)
	f, err := media.ParseWaveFormat(td.Format)
	assert.NoError(t, err)
	assert.Equal(t, uint16(16), f.BitsPerSample)
	assert.Equal(t, uint32(defaultSampleRate), f.SampleRate)
}

func TestSyntheticNegotiatesWithSinks(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{Width: 64, Height: 48, FPS: 30})

	vs, err := sink.NewVideoSink(sink.FrameConsumerFunc(func(*media.Frame) error { return nil }))
	assert.NoError(t, err)
	as, err := sink.NewAudioSink(sink.SampleConsumerFunc(func(*media.SampleBuffer) error { return nil }))
	assert.NoError(t, err)

	vtd, err := vs.Pin(0).OfferType(0)
	assert.NoError(t, err)
	proposal, err := src.Propose(media.Video, vtd)
	assert.NoError(t, err)
	assert.NoError(t, vs.Pin(0).ValidateType(proposal))
	assert.Equal(t, media.VideoConfig{Width: 64, Height: 48}, vs.Config())

	// First audio offer is float; the source declines it and accepts the
	// second, integer PCM.
	atd, err := as.Pin(0).OfferType(0)
	assert.NoError(t, err)
	_, err = src.Propose(media.Audio, atd)
	assert.Error(t, err)

	atd, err = as.Pin(0).OfferType(1)
	assert.NoError(t, err)
	proposal, err = src.Propose(media.Audio, atd)
	assert.NoError(t, err)
	assert.NoError(t, as.Pin(0).ValidateType(proposal))
	assert.Equal(t, uint16(media.FormatTagPCM), as.Config().FormatTag)
}

func TestSyntheticProduction(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{Width: 32, Height: 32, FPS: 100})

	frames := make(chan int64, 64)
	vs, err := sink.NewVideoSink(sink.FrameConsumerFunc(func(f *media.Frame) error {
		select {
		case frames <- f.Timestamp:
		default:
		}
		return nil
	}))
	assert.NoError(t, err)

	samples := make(chan int64, 64)
	as, err := sink.NewAudioSink(sink.SampleConsumerFunc(func(b *media.SampleBuffer) error {
		assert.Equal(t, int64(20), b.Duration)
		select {
		case samples <- b.Timestamp:
		default:
		}
		return nil
	}))
	assert.NoError(t, err)

	vpin, apin := vs.Pin(0), as.Pin(0)
	proposal, err := src.Propose(media.Video, media.NewVideoType(media.VideoConfig{Width: 32, Height: 32}))
	assert.NoError(t, err)
	assert.NoError(t, vpin.ValidateType(proposal))
	proposal, err = src.Propose(media.Audio, media.NewAudioType(media.PCM, media.AudioConfig{}))
	assert.NoError(t, err)
	assert.NoError(t, apin.ValidateType(proposal))

	vs.Run()
	as.Run()
	assert.NoError(t, src.Start(vpin, apin))

	deadline := time.After(2 * time.Second)
	var gotFrame, gotSample bool
	for !gotFrame || !gotSample {
		select {
		case ts := <-frames:
			assert.GreaterOrEqual(t, ts, int64(0))
			gotFrame = true
		case ts := <-samples:
			assert.GreaterOrEqual(t, ts, int64(0))
			gotSample = true
		case <-deadline:
			t.Fatal("no samples produced before deadline")
		}
	}

	vs.Stop()
	as.Stop()
	assert.NoError(t, src.Stop())
	// Stop is idempotent.
	assert.NoError(t, src.Stop())
}

func TestSyntheticStartValidation(t *testing.T) {
	src := NewSynthetic(SyntheticConfig{})
	err := src.Start(nil, nil)
	assert.Error(t, err)
}
