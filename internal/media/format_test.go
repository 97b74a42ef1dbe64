package media

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaveFormatRoundTrip(t *testing.T) {
	cfg := AudioConfig{
		FormatTag:      FormatTagPCM,
		Channels:       2,
		SampleRate:     48000,
		BytesPerSecond: 192000,
		BlockAlign:     4,
		BitsPerSample:  16,
	}

	b := MarshalWaveFormat(NewWaveFormat(cfg))
	assert.Len(t, b, 18)

	f, err := ParseWaveFormat(b)
	assert.NoError(t, err)
	assert.Equal(t, cfg, f.Config())
}

func TestWaveFormatExtensibleRoundTrip(t *testing.T) {
	cfg := AudioConfig{
		FormatTag:          FormatTagExtensible,
		Channels:           6,
		SampleRate:         44100,
		BytesPerSecond:     44100 * 6 * 3,
		BlockAlign:         18,
		BitsPerSample:      24,
		ValidBitsPerSample: 20,
		ChannelMask:        0x3F,
	}

	b := MarshalWaveFormat(NewWaveFormat(cfg))
	assert.Len(t, b, 40)

	f, err := ParseWaveFormat(b)
	assert.NoError(t, err)
	assert.Equal(t, cfg, f.Config())
	assert.Equal(t, uint16(FormatTagPCM), f.SubFormatTag)
}

func TestWaveFormatExtensibleFieldsDroppedForPlainTags(t *testing.T) {
	// A plain tag must not carry extensible fields into the configuration.
	f := WaveFormat{
		FormatTag:          FormatTagIEEEFloat,
		Channels:           2,
		SampleRate:         48000,
		BytesPerSecond:     384000,
		BlockAlign:         8,
		BitsPerSample:      32,
		ValidBitsPerSample: 32,
		ChannelMask:        3,
	}
	c := f.Config()
	assert.Zero(t, c.ValidBitsPerSample)
	assert.Zero(t, c.ChannelMask)
}

func TestWaveFormatSixteenBytePCM(t *testing.T) {
	// The 16-byte PCM prefix without an appended-size field is accepted for
	// plain PCM only.
	full := MarshalWaveFormat(WaveFormat{
		FormatTag:     FormatTagPCM,
		Channels:      1,
		SampleRate:    8000,
		BlockAlign:    2,
		BitsPerSample: 16,
	})

	f, err := ParseWaveFormat(full[:16])
	assert.NoError(t, err)
	assert.Equal(t, uint16(1), f.Channels)

	float := MarshalWaveFormat(WaveFormat{FormatTag: FormatTagIEEEFloat})
	_, err = ParseWaveFormat(float[:16])
	assert.True(t, errors.Is(err, ErrMalformedType))
}

func TestWaveFormatMalformed(t *testing.T) {
	cases := map[string][]byte{
		"empty":     nil,
		"too short": {0x01, 0x00, 0x02},
	}

	// Appended size larger than the remaining block.
	truncated := MarshalWaveFormat(WaveFormat{FormatTag: FormatTagPCM})
	truncated[16] = 0xFF
	cases["truncated appended data"] = truncated

	// Extensible with an appended size too small for the extension.
	ext := MarshalWaveFormat(NewWaveFormat(AudioConfig{FormatTag: FormatTagExtensible, Channels: 2}))
	ext[16] = 4
	cases["short extensible"] = ext[:22]

	// Extensible with an unrecognized sub-format identifier.
	badGUID := MarshalWaveFormat(NewWaveFormat(AudioConfig{FormatTag: FormatTagExtensible, Channels: 2}))
	badGUID[30] ^= 0xFF
	cases["bad sub-format identifier"] = badGUID

	for name, b := range cases {
		_, err := ParseWaveFormat(b)
		assert.Truef(t, errors.Is(err, ErrMalformedType), "%s: got %v", name, err)
	}
}

func TestVideoInfoRoundTrip(t *testing.T) {
	for _, kind := range []FormatKind{FormatVideoInfo, FormatVideoInfo2} {
		h := VideoInfoHeader{
			Width:       1920,
			Height:      1080,
			Planes:      1,
			BitCount:    I420BitCount,
			Compression: FourCCI420,
			SizeImage:   1920 * 1080 * 3 / 2,
		}

		b := MarshalVideoInfo(kind, h)
		parsed, err := ParseVideoInfo(kind, b)
		assert.NoError(t, err)
		assert.Equal(t, h, parsed)
		assert.Equal(t, VideoConfig{Width: 1920, Height: 1080}, parsed.Config())
	}
}

func TestVideoInfoBottomUpHeight(t *testing.T) {
	// Sources may encode a bottom-up bitmap as a negative height; the
	// derived configuration normalizes it away.
	h := VideoInfoHeader{Width: 640, Height: -480, Compression: FourCCI420}
	b := MarshalVideoInfo(FormatVideoInfo2, h)

	parsed, err := ParseVideoInfo(FormatVideoInfo2, b)
	assert.NoError(t, err)
	assert.Equal(t, int32(-480), parsed.Height)
	assert.Equal(t, VideoConfig{Width: 640, Height: 480}, parsed.Config())
}

func TestVideoInfoMalformed(t *testing.T) {
	_, err := ParseVideoInfo(FormatVideoInfo, make([]byte, 40))
	assert.True(t, errors.Is(err, ErrMalformedType))

	// A VideoInfo-sized block is too short for VideoInfo2.
	short := MarshalVideoInfo(FormatVideoInfo, VideoInfoHeader{Width: 640, Height: 480})
	_, err = ParseVideoInfo(FormatVideoInfo2, short)
	assert.True(t, errors.Is(err, ErrMalformedType))

	// Corrupt bitmap header size.
	bad := MarshalVideoInfo(FormatVideoInfo, VideoInfoHeader{Width: 640, Height: 480})
	bad[48] = 39
	_, err = ParseVideoInfo(FormatVideoInfo, bad)
	assert.True(t, errors.Is(err, ErrMalformedType))

	_, err = ParseVideoInfo(FormatWaveEx, make([]byte, 128))
	assert.True(t, errors.Is(err, ErrMalformedType))
}

func TestFourCC(t *testing.T) {
	assert.Equal(t, "I420", FourCCI420.String())
	assert.Equal(t, FourCC(0x30323449), FourCCI420)
}
