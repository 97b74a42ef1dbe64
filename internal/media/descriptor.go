package media

// TypeDescriptor is a negotiable media-format proposal exchanged with a
// capture source. Format is the wire-layout block described by FormatKind;
// see format.go.
type TypeDescriptor struct {
	Major                Kind
	Subtype              Subtype
	TemporallyCompressed bool
	FormatKind           FormatKind
	Format               []byte

	// SampleSize is the fixed per-sample byte length, or 0 if variable.
	SampleSize int
}

// NewVideoType builds the I420 descriptor offered for the given geometry.
func NewVideoType(c VideoConfig) TypeDescriptor {
	h := VideoInfoHeader{
		Width:       c.Width,
		Height:      c.Height,
		Planes:      1,
		BitCount:    I420BitCount,
		Compression: FourCCI420,
		SizeImage:   uint32(c.SampleSize()),
	}
	return TypeDescriptor{
		Major:      Video,
		Subtype:    I420,
		FormatKind: FormatVideoInfo,
		Format:     MarshalVideoInfo(FormatVideoInfo, h),
		SampleSize: c.SampleSize(),
	}
}

// NewAudioType builds a descriptor for the given sub-format. The format block
// is included only when a concrete configuration is known; an offer with an
// empty requested configuration carries no block, and the source fills in the
// detail on its counter-proposal.
func NewAudioType(sub Subtype, c AudioConfig) TypeDescriptor {
	td := TypeDescriptor{
		Major:      Audio,
		Subtype:    sub,
		FormatKind: FormatWaveEx,
	}
	if !c.Empty() {
		td.Format = MarshalWaveFormat(NewWaveFormat(c))
	}
	return td
}
