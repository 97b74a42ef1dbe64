package media

import (
	"bytes"
	"encoding/binary"

	errors "golang.org/x/xerrors"
)

// Wire layouts for format blocks carried by a TypeDescriptor. These mirror
// the uncompressed audio/video conventions used by existing capture sources
// (VIDEOINFOHEADER, VIDEOINFOHEADER2, WAVEFORMATEX, WAVEFORMATEXTENSIBLE),
// all little-endian. Parse failures wrap ErrMalformedType so callers can
// distinguish a block that does not parse from a well-formed type that is
// merely unsupported.

// FormatKind identifies the wire layout of a format block.
type FormatKind int

const (
	FormatNone FormatKind = iota
	FormatVideoInfo
	FormatVideoInfo2
	FormatWaveEx
)

func (f FormatKind) String() string {
	switch f {
	case FormatVideoInfo:
		return "VideoInfo"
	case FormatVideoInfo2:
		return "VideoInfo2"
	case FormatWaveEx:
		return "WaveFormatEx"
	default:
		return "none"
	}
}

const (
	bitmapInfoSize = 40

	videoInfoSize  = 48 + bitmapInfoSize // VIDEOINFOHEADER
	videoInfo2Size = 72 + bitmapInfoSize // VIDEOINFOHEADER2

	wavePCMSize        = 16 // PCMWAVEFORMAT, implied zero cbSize
	waveExSize         = 18 // WAVEFORMATEX
	waveExtensibleSize = 40 // WAVEFORMATEXTENSIBLE, cbSize >= 22
)

// VideoInfoHeader is the parsed form of a video format block. Height may be
// negative, which sources use to mean a bottom-up bitmap.
type VideoInfoHeader struct {
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     FourCC
	SizeImage       uint32
	AvgTimePerFrame int64 // reference-time ticks
}

// Config derives the capture configuration, normalizing away a bottom-up
// (negative) height.
func (h VideoInfoHeader) Config() VideoConfig {
	height := h.Height
	if height < 0 {
		height = -height
	}
	return VideoConfig{Width: h.Width, Height: height}
}

// MarshalVideoInfo encodes h as a VIDEOINFOHEADER (kind FormatVideoInfo) or
// VIDEOINFOHEADER2 (kind FormatVideoInfo2) block.
func MarshalVideoInfo(kind FormatKind, h VideoInfoHeader) []byte {
	size, bmiOff := videoInfoSize, 48
	if kind == FormatVideoInfo2 {
		size, bmiOff = videoInfo2Size, 72
	}
	b := make([]byte, size)
	// rcSource and rcTarget stay empty: the whole image is wanted and there
	// is no target subrectangle.
	binary.LittleEndian.PutUint64(b[40:], uint64(h.AvgTimePerFrame))

	bmi := b[bmiOff:]
	binary.LittleEndian.PutUint32(bmi[0:], bitmapInfoSize)
	binary.LittleEndian.PutUint32(bmi[4:], uint32(h.Width))
	binary.LittleEndian.PutUint32(bmi[8:], uint32(h.Height))
	binary.LittleEndian.PutUint16(bmi[12:], h.Planes)
	binary.LittleEndian.PutUint16(bmi[14:], h.BitCount)
	binary.LittleEndian.PutUint32(bmi[16:], uint32(h.Compression))
	binary.LittleEndian.PutUint32(bmi[20:], h.SizeImage)
	return b
}

// ParseVideoInfo decodes a video format block of the given kind.
func ParseVideoInfo(kind FormatKind, b []byte) (VideoInfoHeader, error) {
	var h VideoInfoHeader

	var size, bmiOff int
	switch kind {
	case FormatVideoInfo:
		size, bmiOff = videoInfoSize, 48
	case FormatVideoInfo2:
		size, bmiOff = videoInfo2Size, 72
	default:
		return h, errors.Errorf("%s is not a video format kind: %w", kind, ErrMalformedType)
	}
	if len(b) < size {
		return h, errors.Errorf("%s block is %d bytes, want %d: %w", kind, len(b), size, ErrMalformedType)
	}

	h.AvgTimePerFrame = int64(binary.LittleEndian.Uint64(b[40:]))

	bmi := b[bmiOff:]
	if s := binary.LittleEndian.Uint32(bmi[0:]); s != bitmapInfoSize {
		return h, errors.Errorf("bitmap header size %d, want %d: %w", s, bitmapInfoSize, ErrMalformedType)
	}
	h.Width = int32(binary.LittleEndian.Uint32(bmi[4:]))
	h.Height = int32(binary.LittleEndian.Uint32(bmi[8:]))
	h.Planes = binary.LittleEndian.Uint16(bmi[12:])
	h.BitCount = binary.LittleEndian.Uint16(bmi[14:])
	h.Compression = FourCC(binary.LittleEndian.Uint32(bmi[16:]))
	h.SizeImage = binary.LittleEndian.Uint32(bmi[20:])
	return h, nil
}

// WaveFormat is the parsed form of an audio format block. SubFormatTag is the
// leading word of the extensible sub-format identifier and is meaningful only
// when FormatTag is FormatTagExtensible.
type WaveFormat struct {
	FormatTag      uint16
	Channels       uint16
	SampleRate     uint32
	BytesPerSecond uint32
	BlockAlign     uint16
	BitsPerSample  uint16

	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormatTag       uint16
}

// Tail of the extensible sub-format identifier; the leading four bytes encode
// the underlying format tag.
var waveSubFormatTail = []byte{
	0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71,
}

// Config derives the capture configuration. The extensible fields carry over
// only when the format tag says so.
func (f WaveFormat) Config() AudioConfig {
	c := AudioConfig{
		FormatTag:      f.FormatTag,
		Channels:       f.Channels,
		SampleRate:     f.SampleRate,
		BytesPerSecond: f.BytesPerSecond,
		BlockAlign:     f.BlockAlign,
		BitsPerSample:  f.BitsPerSample,
	}
	if f.FormatTag == FormatTagExtensible {
		c.ValidBitsPerSample = f.ValidBitsPerSample
		c.ChannelMask = f.ChannelMask
	}
	return c
}

// NewWaveFormat builds the wire form of an audio configuration.
func NewWaveFormat(c AudioConfig) WaveFormat {
	f := WaveFormat{
		FormatTag:      c.FormatTag,
		Channels:       c.Channels,
		SampleRate:     c.SampleRate,
		BytesPerSecond: c.BytesPerSecond,
		BlockAlign:     c.BlockAlign,
		BitsPerSample:  c.BitsPerSample,
	}
	if c.FormatTag == FormatTagExtensible {
		f.ValidBitsPerSample = c.ValidBitsPerSample
		f.ChannelMask = c.ChannelMask
		f.SubFormatTag = FormatTagPCM
	}
	return f
}

// MarshalWaveFormat encodes f as a WAVEFORMATEX block, or a
// WAVEFORMATEXTENSIBLE block when the format tag is extensible.
func MarshalWaveFormat(f WaveFormat) []byte {
	size := waveExSize
	if f.FormatTag == FormatTagExtensible {
		size = waveExtensibleSize
	}
	b := make([]byte, size)
	binary.LittleEndian.PutUint16(b[0:], f.FormatTag)
	binary.LittleEndian.PutUint16(b[2:], f.Channels)
	binary.LittleEndian.PutUint32(b[4:], f.SampleRate)
	binary.LittleEndian.PutUint32(b[8:], f.BytesPerSecond)
	binary.LittleEndian.PutUint16(b[12:], f.BlockAlign)
	binary.LittleEndian.PutUint16(b[14:], f.BitsPerSample)
	if f.FormatTag == FormatTagExtensible {
		binary.LittleEndian.PutUint16(b[16:], waveExtensibleSize-waveExSize)
		binary.LittleEndian.PutUint16(b[18:], f.ValidBitsPerSample)
		binary.LittleEndian.PutUint32(b[20:], f.ChannelMask)
		binary.LittleEndian.PutUint32(b[24:], uint32(f.SubFormatTag))
		copy(b[28:], waveSubFormatTail)
	}
	return b
}

// ParseWaveFormat decodes an audio format block. A 16-byte block is accepted
// for plain PCM, which predates the appended-size field.
func ParseWaveFormat(b []byte) (WaveFormat, error) {
	var f WaveFormat

	if len(b) < wavePCMSize {
		return f, errors.Errorf("wave format block is %d bytes, want at least %d: %w",
			len(b), wavePCMSize, ErrMalformedType)
	}
	f.FormatTag = binary.LittleEndian.Uint16(b[0:])
	f.Channels = binary.LittleEndian.Uint16(b[2:])
	f.SampleRate = binary.LittleEndian.Uint32(b[4:])
	f.BytesPerSecond = binary.LittleEndian.Uint32(b[8:])
	f.BlockAlign = binary.LittleEndian.Uint16(b[12:])
	f.BitsPerSample = binary.LittleEndian.Uint16(b[14:])

	var extra uint16
	switch {
	case len(b) >= waveExSize:
		extra = binary.LittleEndian.Uint16(b[16:])
		if len(b) < waveExSize+int(extra) {
			return f, errors.Errorf("wave format block truncated: %d bytes, appended size %d: %w",
				len(b), extra, ErrMalformedType)
		}
	case f.FormatTag != FormatTagPCM:
		// Only plain PCM may omit the appended-size field.
		return f, errors.Errorf("wave format block is %d bytes with format tag %#04x: %w",
			len(b), f.FormatTag, ErrMalformedType)
	}

	if f.FormatTag == FormatTagExtensible {
		if extra < waveExtensibleSize-waveExSize {
			return f, errors.Errorf("extensible wave format with appended size %d: %w",
				extra, ErrMalformedType)
		}
		f.ValidBitsPerSample = binary.LittleEndian.Uint16(b[18:])
		f.ChannelMask = binary.LittleEndian.Uint32(b[20:])
		f.SubFormatTag = uint16(binary.LittleEndian.Uint32(b[24:]))
		if !bytes.Equal(b[28:40], waveSubFormatTail) {
			return f, errors.Errorf("unrecognized extensible sub-format identifier: %w", ErrMalformedType)
		}
	}
	return f, nil
}
