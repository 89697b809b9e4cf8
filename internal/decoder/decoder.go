// Package decoder defines the input-decoder boundary spec.md places
// out of scope: an ordered stream of OSM primitives that the core
// consumes as "for each (primitive_kind, id, tags, body) in stream"
// (spec.md §6). Grounded on the teacher's internal/parser.Parser
// interface shape (internal/parser/parser.go): a Parse/ParseWithOptions
// split, here modeled as Decode/DecodeWithOptions plus a streaming
// callback instead of a whole-file return value, since OSM inputs are
// far larger than a single ENC chart.
package decoder

import (
	"context"
	"errors"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// Kind identifies which OSM primitive a decoded item carries.
type Kind int

const (
	KindNode Kind = iota
	KindWay
	KindRelation
)

// Item is one decoded OSM primitive, tagged by Kind; exactly one of
// Node/Way/Relation is populated.
type Item struct {
	Kind     Kind
	Node     *element.Node
	Way      *element.Way
	Relation *element.Relation
}

// Options configures decoding behavior.
type Options struct {
	// IgnoreInvalidLocations mirrors spec.md §6's config option of the
	// same name, threaded through so a streaming decoder can decide
	// whether a malformed record aborts the whole run.
	IgnoreInvalidLocations bool
}

// DefaultOptions returns the zero-value Options (strict).
func DefaultOptions() Options { return Options{} }

// Decoder is the boundary spec.md describes only by its contract: it
// MUST deliver nodes, then ways, then relations, each kind in
// ascending id order (spec.md §6). Duplicates within a kind are a
// warning, not an error.
type Decoder interface {
	// Decode streams every primitive in the input to emit, in the
	// canonical node/way/relation order, stopping at the first error
	// returned by emit or encountered while reading.
	Decode(ctx context.Context, emit func(Item) error) error

	// DecodeWithOptions is Decode with explicit Options instead of
	// DefaultOptions().
	DecodeWithOptions(ctx context.Context, opts Options, emit func(Item) error) error
}

// ErrNotImplemented is returned by decoder implementations that are
// documented boundaries only (spec.md frames the decoder itself as an
// external collaborator; see DESIGN.md for why no complete PBF/XML
// schema ships in this retrieval pack).
var ErrNotImplemented = errors.New("decoder: format not implemented")
