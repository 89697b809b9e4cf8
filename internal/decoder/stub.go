package decoder

import (
	"context"
	"io"
)

// PBFDecoder is a documented boundary for OSM's binary PBF container
// format. No complete, fetchable Protocol Buffers schema for OSM PBF
// ships in this retrieval pack (see DESIGN.md), so this implementation
// is intentionally left unimplemented rather than hand-written against
// an unverified schema.
type PBFDecoder struct {
	r io.Reader
}

// NewPBFDecoder creates a PBFDecoder over r. Decode/DecodeWithOptions
// always return ErrNotImplemented.
func NewPBFDecoder(r io.Reader) *PBFDecoder { return &PBFDecoder{r: r} }

func (d *PBFDecoder) Decode(ctx context.Context, emit func(Item) error) error {
	return ErrNotImplemented
}

func (d *PBFDecoder) DecodeWithOptions(ctx context.Context, opts Options, emit func(Item) error) error {
	return ErrNotImplemented
}

// XMLDecoder is a documented boundary for OSM's XML interchange
// format (.osm). Not implemented for the same reason as PBFDecoder.
type XMLDecoder struct {
	r io.Reader
}

// NewXMLDecoder creates an XMLDecoder over r. Decode/DecodeWithOptions
// always return ErrNotImplemented.
func NewXMLDecoder(r io.Reader) *XMLDecoder { return &XMLDecoder{r: r} }

func (d *XMLDecoder) Decode(ctx context.Context, emit func(Item) error) error {
	return ErrNotImplemented
}

func (d *XMLDecoder) DecodeWithOptions(ctx context.Context, opts Options, emit func(Item) error) error {
	return ErrNotImplemented
}
