package media

import (
	errors "golang.org/x/xerrors"
)

// A SampleBuffer is an owned copy of one audio sample span. Like Frame, it is
// reused by the producing stage; consumers must not retain it past the
// callback's return.
type SampleBuffer struct {
	// Configuration snapshot at capture time.
	Config AudioConfig

	// Start time and duration, in milliseconds. Duration is 0 when the
	// source supplied no stop time.
	Timestamp int64
	Duration  int64

	data []byte
}

// Init validates the payload against the configuration and copies it into the
// buffer's own storage. The payload must cover whole sample blocks.
func (b *SampleBuffer) Init(c AudioConfig, timestamp, duration int64, payload []byte) error {
	if len(payload) == 0 {
		return errors.Errorf("empty sample payload: %w", ErrInvalidArgument)
	}
	if c.Empty() {
		return errors.Errorf("no negotiated audio configuration: %w", ErrCopyFailure)
	}
	if c.BlockAlign > 0 && len(payload)%int(c.BlockAlign) != 0 {
		return errors.Errorf("sample payload is %d bytes, not a multiple of block align %d: %w",
			len(payload), c.BlockAlign, ErrCopyFailure)
	}
	b.Config = c
	b.Timestamp = timestamp
	b.Duration = duration
	b.data = append(b.data[:0], payload...)
	return nil
}

// Bytes returns the sample payload. Valid only until the next Init.
func (b *SampleBuffer) Bytes() []byte {
	return b.data
}

func (b *SampleBuffer) Len() int {
	return len(b.data)
}
