package media

import (
	errors "golang.org/x/xerrors"
)

// A Frame is an owned copy of one video sample. The producing stage reuses a
// single Frame, overwriting it on each delivery, so a consumer must not keep
// a reference past the callback's return; if the data is needed longer, the
// consumer copies it inside the callback.
type Frame struct {
	// Configuration snapshot at capture time.
	Config VideoConfig

	// Start time, in the source's reference-time ticks. Frames carry no
	// duration.
	Timestamp int64

	data []byte
}

// Init validates the payload against the configuration and copies it into the
// frame's own storage. The payload must be exactly one I420 image.
func (f *Frame) Init(c VideoConfig, timestamp int64, payload []byte) error {
	if len(payload) == 0 {
		return errors.Errorf("empty frame payload: %w", ErrInvalidArgument)
	}
	want := c.SampleSize()
	if want <= 0 || len(payload) != want {
		return errors.Errorf("frame payload is %d bytes, %dx%d I420 wants %d: %w",
			len(payload), c.Width, c.Height, want, ErrCopyFailure)
	}
	f.Config = c
	f.Timestamp = timestamp
	f.data = append(f.data[:0], payload...)
	return nil
}

// Bytes returns the frame payload. Valid only until the next Init.
func (f *Frame) Bytes() []byte {
	return f.data
}

func (f *Frame) Len() int {
	return len(f.data)
}
