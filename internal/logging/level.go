package logging

import (
	"errors"
	"strconv"
	"strings"
)

// Level of a log message. Higher values are more verbose.
type Level int

const (
	Error Level = iota - 2
	Warn
	Info
	Debug

	// Numeric trace levels are allowed up to 9.
	MaxLevel Level = 9
)

// Default level, overridable via the LOGLEVEL environment variable.
var defaultLevel = Info

func parseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "E", "ERROR":
		return Error, nil
	case "W", "WARN":
		return Warn, nil
	case "I", "INFO":
		return Info, nil
	case "D", "DEBUG":
		return Debug, nil
	case "T", "TRACE":
		return MaxLevel, nil
	}

	// Otherwise expect an explicit numeric level.
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid logging level: " + s)
	}
	if Level(n) < Error || Level(n) > MaxLevel {
		return 0, errors.New("numeric level out of range: " + s)
	}
	return Level(n), nil
}

func (l Level) String() string {
	switch l {
	case Error:
		return "Error"
	case Warn:
		return "Warn"
	case Info:
		return "Info"
	case Debug:
		return "Debug"
	default:
		return strconv.Itoa(int(l))
	}
}

func (l Level) letter() byte {
	if l <= Debug {
		return "EWID"[l-Error]
	}
	return byte('0' + l)
}

var (
	ansiBoldRed = []byte("\033[1;31m")
	ansiRed     = []byte("\033[31m")
	ansiGreen   = []byte("\033[32m")
	ansiYellow  = []byte("\033[33m")
	ansiWhite   = []byte("\033[37m")
	ansiReset   = []byte("\033[0m")
)

func (l Level) color() []byte {
	switch l {
	case Error:
		return ansiBoldRed
	case Warn:
		return ansiRed
	case Info:
		return ansiReset
	case Debug:
		return ansiGreen
	default:
		return ansiYellow
	}
}
