package media

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTypeRejected    = errors.New("media type not accepted")
	ErrMalformedType   = errors.New("malformed media type")
	ErrWrongState      = errors.New("wrong state")
	ErrNoMoreTypes     = errors.New("no more media types") // end of the offered set
	ErrCopyFailure     = errors.New("sample copy failed")
)
