package source

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/livecap/livecap/internal/media"
	"github.com/livecap/livecap/internal/sink"
)

// Defaults for a synthetic source opened with an empty path.
const (
	defaultWidth      = 1280
	defaultHeight     = 720
	defaultFPS        = 30
	defaultSampleRate = 48000
	defaultChannels   = 2

	// Audio is produced in fixed 20 ms spans.
	audioSpan = 20 * time.Millisecond
)

func init() {
	Register("synthetic", func(path string) (Source, error) {
		cfg := SyntheticConfig{
			Width:      defaultWidth,
			Height:     defaultHeight,
			FPS:        defaultFPS,
			SampleRate: defaultSampleRate,
			Channels:   defaultChannels,
		}
		if path != "" {
			if n, err := fmt.Sscanf(path, "%dx%d@%d", &cfg.Width, &cfg.Height, &cfg.FPS); n != 3 || err != nil {
				return nil, errors.Errorf("synthetic source path %q, want WxH@FPS", path)
			}
		}
		return NewSynthetic(cfg), nil
	})
}

// SyntheticConfig describes the test pattern a Synthetic source generates.
type SyntheticConfig struct {
	Width  int32
	Height int32
	FPS    int

	SampleRate int
	Channels   int
}

// Synthetic produces a moving-gradient I420 stream and a sine 16-bit PCM
// stream with consistent reference times. It stands in for an external
// capture host in the daemon and in tests.
type Synthetic struct {
	cfg SyntheticConfig

	quit    chan struct{}
	done    chan struct{}
	started int32
	stopped int32
}

func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.FPS <= 0 {
		cfg.FPS = defaultFPS
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = defaultChannels
	}
	return &Synthetic{
		cfg:  cfg,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (s *Synthetic) Kinds() []media.Kind {
	return []media.Kind{media.Video, media.Audio}
}

func (s *Synthetic) audioConfig() media.AudioConfig {
	align := uint16(s.cfg.Channels * 2) // 16-bit samples
	return media.AudioConfig{
		FormatTag:      media.FormatTagPCM,
		Channels:       uint16(s.cfg.Channels),
		SampleRate:     uint32(s.cfg.SampleRate),
		BytesPerSecond: uint32(s.cfg.SampleRate) * uint32(align),
		BlockAlign:     align,
		BitsPerSample:  16,
	}
}

func (s *Synthetic) Propose(kind media.Kind, offered media.TypeDescriptor) (media.TypeDescriptor, error) {
	switch kind {
	case media.Video:
		if offered.Subtype != media.I420 {
			return media.TypeDescriptor{}, errors.Errorf("synthetic video is I420 only")
		}
		// Produce at native geometry, whatever the sink asked for.
		return media.NewVideoType(media.VideoConfig{Width: s.cfg.Width, Height: s.cfg.Height}), nil
	case media.Audio:
		// Integer PCM only; declining the float offer moves negotiation on
		// to the pin's next preference.
		if offered.Subtype != media.PCM {
			return media.TypeDescriptor{}, errors.Errorf("synthetic audio is integer PCM only")
		}
		return media.NewAudioType(media.PCM, s.audioConfig()), nil
	default:
		return media.TypeDescriptor{}, errors.Errorf("unsupported kind %s", kind)
	}
}

// Start launches the producer goroutine. Samples are pushed until Stop; a
// wrong-state answer from a pin ends production quietly, since it means the
// host has stopped the stage.
func (s *Synthetic) Start(video, audio sink.Pin) error {
	if video == nil && audio == nil {
		return errors.Wrap(media.ErrInvalidArgument, "no pins to feed")
	}
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return errors.New("synthetic source already started")
	}
	go s.loop(video, audio)
	return nil
}

func (s *Synthetic) Stop() error {
	if atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		close(s.quit)
		if atomic.LoadInt32(&s.started) == 1 {
			<-s.done
		}
	}
	return nil
}

func (s *Synthetic) loop(video, audio sink.Pin) {
	defer close(s.done)

	frameTicks := int64(10_000_000 / s.cfg.FPS)
	spanTicks := media.DurationToTicks(audioSpan)

	var videoTicker, audioTicker *time.Ticker
	var videoC, audioC <-chan time.Time
	if video != nil {
		videoTicker = time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
		defer videoTicker.Stop()
		videoC = videoTicker.C
	}
	if audio != nil {
		audioTicker = time.NewTicker(audioSpan)
		defer audioTicker.Stop()
		audioC = audioTicker.C
	}

	frame := make([]byte, media.VideoConfig{Width: s.cfg.Width, Height: s.cfg.Height}.SampleSize())
	span := make([]byte, s.cfg.SampleRate/50*s.cfg.Channels*2)

	var frameIndex, spanIndex int64
	for {
		select {
		case <-s.quit:
			return
		case <-videoC:
			s.fillFrame(frame, frameIndex)
			err := video.Deliver(sink.Sample{
				Data:      frame,
				StartTime: frameIndex * frameTicks,
			})
			frameIndex++
			if errors.Is(err, media.ErrWrongState) {
				log.Debug("video pin stopped, ending production")
				return
			}
			if err != nil {
				log.Warn("video delivery: %v", err)
			}
		case <-audioC:
			s.fillSpan(span, spanIndex)
			err := audio.Deliver(sink.Sample{
				Data:        span,
				StartTime:   spanIndex * spanTicks,
				StopTime:    (spanIndex + 1) * spanTicks,
				HasStopTime: true,
			})
			spanIndex++
			if errors.Is(err, media.ErrWrongState) {
				log.Debug("audio pin stopped, ending production")
				return
			}
			if err != nil {
				log.Warn("audio delivery: %v", err)
			}
		}
	}
}

// fillFrame draws a gradient that drifts one luma step per frame, with flat
// chroma.
func (s *Synthetic) fillFrame(frame []byte, n int64) {
	w, h := int(s.cfg.Width), int(s.cfg.Height)
	for y := 0; y < h; y++ {
		row := frame[y*w : (y+1)*w]
		for x := range row {
			row[x] = byte(x + y + int(n))
		}
	}
	chroma := frame[w*h:]
	for i := range chroma {
		chroma[i] = 128
	}
}

// fillSpan writes 20 ms of a 440 Hz sine across all channels.
func (s *Synthetic) fillSpan(span []byte, n int64) {
	rate := float64(s.cfg.SampleRate)
	frames := len(span) / (s.cfg.Channels * 2)
	base := n * int64(frames)
	for i := 0; i < frames; i++ {
		t := float64(base+int64(i)) / rate
		v := int16(0.25 * math.MaxInt16 * math.Sin(2*math.Pi*440*t))
		for c := 0; c < s.cfg.Channels; c++ {
			off := (i*s.cfg.Channels + c) * 2
			span[off] = byte(v)
			span[off+1] = byte(v >> 8)
		}
	}
}
