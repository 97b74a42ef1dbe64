//////////////////////////////////////////////////////////////////////////////
//
// Capture source contract and source registry
//
// Copyright 2026 Livecap Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package source

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/livecap/livecap/internal/logging"
	"github.com/livecap/livecap/internal/media"
	"github.com/livecap/livecap/internal/sink"
)

var log = logging.DefaultLogger.WithTag("source")

// A Source produces raw media samples and pushes them into sink pins from its
// own goroutine. The session negotiates on the source's behalf: for each kind
// it walks the pin's offered types and asks the source for a concrete
// counter-proposal to validate.
type Source interface {
	// Kinds reports which media kinds this source produces.
	Kinds() []media.Kind

	// Propose examines a descriptor offered by a sink pin and returns the
	// concrete descriptor the source would produce for it, format block
	// included. Returning an error declines the offer; negotiation then
	// moves on to the pin's next preference.
	Propose(kind media.Kind, offered media.TypeDescriptor) (media.TypeDescriptor, error)

	// Start begins sample production into the given pins, one goroutine per
	// source. A nil pin disables that kind. Production continues until Stop.
	Start(video, audio sink.Pin) error

	// Stop halts production and waits for the producer goroutine to exit.
	Stop() error
}

// A function used to open a specific source type.
type OpenFunc func(path string) (Source, error)

var registry = map[string]OpenFunc{}

// Register a source type, identified by its tag. Sources of this type will
// be opened with the given function.
func Register(tag string, open OpenFunc) {
	registry[tag] = open
}

// Open a source based on its source spec, a colon-separated "tag:path"
// string. The path format is defined by the registered OpenFunc.
func Open(spec string) (Source, error) {
	var tags []string
	for t := range registry {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	log.Debug("registered source types: %v", tags)

	parts := strings.SplitN(spec, ":", 2)
	tag := parts[0]
	var path string
	if len(parts) == 2 {
		path = parts[1]
	}

	open, found := registry[tag]
	if !found {
		return nil, errors.Errorf("source type %q not registered", tag)
	}
	return open(path)
}
