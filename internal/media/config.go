package media

// VideoConfig is the negotiated (or requested) video capture configuration.
// The zero value means "not negotiated".
type VideoConfig struct {
	Width  int32
	Height int32
}

func (c VideoConfig) Empty() bool {
	return c == VideoConfig{}
}

// SampleSize returns the byte length of one I420 frame at this geometry.
func (c VideoConfig) SampleSize() int {
	return int(c.Width) * int(c.Height) * I420BitCount / 8
}

// AudioConfig is the negotiated (or requested) audio capture configuration.
// ValidBitsPerSample and ChannelMask are meaningful only when FormatTag is
// FormatTagExtensible. The zero value means "not negotiated".
type AudioConfig struct {
	FormatTag      uint16
	Channels       uint16
	SampleRate     uint32
	BytesPerSecond uint32
	BlockAlign     uint16
	BitsPerSample  uint16

	ValidBitsPerSample uint16
	ChannelMask        uint32
}

func (c AudioConfig) Empty() bool {
	return c == AudioConfig{}
}
