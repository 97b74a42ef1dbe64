package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// A Logger writes tagged, leveled log lines. Loggers derived from a common
// parent share one mutex so lines from different goroutines never interleave.
type Logger struct {
	// Messages above this level are discarded.
	Level

	// Tag used to filter and classify log messages.
	Tag string

	out io.Writer

	mu *sync.Mutex
}

// DefaultLogger writes to stderr.
var DefaultLogger = &Logger{defaultLevel, "", os.Stderr, new(sync.Mutex)}

// SetDestination overrides the output writer, e.g. to capture logs in tests.
func (log *Logger) SetDestination(out io.Writer) {
	log.out = out
}

// WithTag derives a logger with the given tag. The level is looked up from
// the LOGLEVEL directives, falling back to the parent's level.
func (log *Logger) WithTag(tag string) *Logger {
	return &Logger{determineLevel(tag, log.Level), tag, log.out, log.mu}
}

// buffer is a []byte that implements io.Writer. Simpler and cheaper than
// bytes.Buffer.
type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

// Pool of line buffers shared by all loggers. 256 bytes covers most lines.
var bufPool = sync.Pool{
	New: func() interface{} {
		return make(buffer, 0, 256)
	},
}

// Log a message at the given level, annotated with the file and line number
// from 'calldepth' frames up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if level > log.Level {
		return
	}

	buf := bufPool.Get().(buffer)
	defer bufPool.Put(buf[:0])

	buf.Write(ansiWhite)
	buf = time.Now().AppendFormat(buf, timestampFormat)
	fmt.Fprintf(&buf, " %s%c/%s", level.color(), level.letter(), log.Tag)

	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}
	fmt.Fprintf(&buf, "[%s:%d] %s", filepath.Base(file), line, ansiReset)

	fmt.Fprintf(&buf, format, a...)
	if n := len(buf); n == 0 || buf[n-1] != '\n' {
		buf = append(buf, '\n')
	}

	log.mu.Lock()
	log.out.Write(buf)
	log.mu.Unlock()
}

func (log *Logger) Error(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
}

func (log *Logger) Warn(format string, a ...interface{}) {
	log.Log(Warn, 1, format, a...)
}

func (log *Logger) Info(format string, a ...interface{}) {
	log.Log(Info, 1, format, a...)
}

func (log *Logger) Debug(format string, a ...interface{}) {
	log.Log(Debug, 1, format, a...)
}

func (log *Logger) Trace(n int, format string, a ...interface{}) {
	log.Log(Level(n), 1, format, a...)
}
