//////////////////////////////////////////////////////////////////////////////
//
// Media kinds, sub-formats, and related constants
//
// Copyright 2026 Livecap Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package media

// Kind is the major type of a media stream.
type Kind int

const (
	Video Kind = iota
	Audio
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return "unknown"
	}
}

// Subtype identifies a specific uncompressed sample layout within a Kind.
type Subtype int

const (
	SubtypeNone Subtype = iota

	// Planar 4:2:0 chroma-subsampled YUV, 8 bits per component.
	I420

	// Integer PCM.
	PCM

	// 32-bit floating point PCM.
	IEEEFloat
)

func (s Subtype) String() string {
	switch s {
	case I420:
		return "I420"
	case PCM:
		return "PCM"
	case IEEEFloat:
		return "IEEE float"
	default:
		return "none"
	}
}

// Audio format tags, matching the WAVE wire convention.
const (
	FormatTagPCM        = 0x0001
	FormatTagIEEEFloat  = 0x0003
	FormatTagExtensible = 0xFFFE
)

// FourCC is a four-character pixel layout code.
type FourCC uint32

func MakeFourCC(a, b, c, d byte) FourCC {
	return FourCC(a) | FourCC(b)<<8 | FourCC(c)<<16 | FourCC(d)<<24
}

func (f FourCC) String() string {
	return string([]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)})
}

var FourCCI420 = MakeFourCC('I', '4', '2', '0')

// I420 stores 12 bits per pixel.
const I420BitCount = 12
