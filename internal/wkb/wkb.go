// Package wkb implements GeometryFactory (spec.md §4.5): a stateful
// little-endian EWKB emitter with back-patched size prefixes, grounded
// on original_source/contrib/libosmium/include/osmium/geom/wkb.hpp's
// WKBFactoryImpl (header/set_size back-patch pattern, point/linestring/
// polygon/multipolygon builder methods).
package wkb

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// GeometryType is the WKB/EWKB type code (99-049_OpenGIS_Simple
// Features spec), spec.md §4.5.
type GeometryType uint32

const (
	Point        GeometryType = 1
	LineString   GeometryType = 2
	Polygon      GeometryType = 3
	MultiPolygon GeometryType = 6

	sridFlag uint32 = 0x20000000
)

// OutputMode toggles raw binary vs uppercase hex output.
type OutputMode int

const (
	OutputBinary OutputMode = iota
	OutputHex
)

// ErrTooManyPoints is returned when a ring/linestring accumulates more
// than 2^32-1 points, overflowing the uint32 size prefix (spec.md
// §4.5).
var ErrTooManyPoints = errors.New("wkb: too many points in geometry (overflows uint32 size prefix)")

// Factory is a stateful per-geometry EWKB builder. Not safe for
// concurrent use; each Make* call resets the buffer, so one Factory
// builds geometries one after another (matching the teacher's single-threaded-cooperative core, spec.md
// §5).
type Factory struct {
	srid int32
	mode OutputMode
	buf  bytes.Buffer
}

// NewFactory creates a Factory stamping srid into every geometry's
// EWKB header.
func NewFactory(srid int32, mode OutputMode) *Factory {
	return &Factory{srid: srid, mode: mode}
}

func (f *Factory) writeHeader(typ GeometryType) {
	f.buf.WriteByte(1) // NDR / little-endian byte order marker
	binary.Write(&f.buf, binary.LittleEndian, uint32(typ)|sridFlag)
	binary.Write(&f.buf, binary.LittleEndian, f.srid)
}

// writeSizePlaceholder appends a zero uint32 and returns its byte
// offset so it can be back-patched once the real count is known.
func (f *Factory) writeSizePlaceholder() int {
	offset := f.buf.Len()
	binary.Write(&f.buf, binary.LittleEndian, uint32(0))
	return offset
}

func (f *Factory) patchSize(offset int, count int) error {
	if count < 0 || uint64(count) > math.MaxUint32 {
		return ErrTooManyPoints
	}
	b := f.buf.Bytes()
	binary.LittleEndian.PutUint32(b[offset:offset+4], uint32(count))
	return nil
}

func (f *Factory) writePoint(loc element.Location) {
	binary.Write(&f.buf, binary.LittleEndian, fixedToFloat(loc.Lon))
	binary.Write(&f.buf, binary.LittleEndian, fixedToFloat(loc.Lat))
}

// fixedToFloat converts a 1e7-scaled fixed-point coordinate to the
// float64 degrees EWKB expects.
func fixedToFloat(v int32) float64 { return float64(v) / 1e7 }

// MakePoint emits a standalone POINT geometry.
func (f *Factory) MakePoint(loc element.Location) []byte {
	f.buf.Reset()
	f.writeHeader(Point)
	f.writePoint(loc)
	return f.finish()
}

// MakeLineString emits a LINESTRING geometry from an ordered point
// sequence.
func (f *Factory) MakeLineString(points []element.Location) ([]byte, error) {
	f.buf.Reset()
	f.writeHeader(LineString)
	offset := f.writeSizePlaceholder()
	for _, p := range points {
		f.writePoint(p)
	}
	if err := f.patchSize(offset, len(points)); err != nil {
		return nil, err
	}
	return f.finish(), nil
}

// Ring is one linear ring of a polygon: a closed point sequence.
type Ring []element.Location

// MakePolygon emits a POLYGON geometry: outer followed by any holes.
func (f *Factory) MakePolygon(rings []Ring) ([]byte, error) {
	f.buf.Reset()
	f.writeHeader(Polygon)
	binary.Write(&f.buf, binary.LittleEndian, uint32(len(rings)))
	for _, ring := range rings {
		offset := f.writeSizePlaceholder()
		for _, p := range ring {
			f.writePoint(p)
		}
		if err := f.patchSize(offset, len(ring)); err != nil {
			return nil, err
		}
	}
	return f.finish(), nil
}

// PolygonRings is one polygon within a multipolygon: an outer ring
// plus zero or more hole rings.
type PolygonRings struct {
	Outer Ring
	Holes []Ring
}

// MakeMultiPolygon emits a MULTIPOLYGON geometry (spec.md §4.3.6's
// assembler output, §4.5's wire format).
func (f *Factory) MakeMultiPolygon(polygons []PolygonRings) ([]byte, error) {
	f.buf.Reset()
	f.writeHeader(MultiPolygon)
	binary.Write(&f.buf, binary.LittleEndian, uint32(len(polygons)))

	for _, poly := range polygons {
		f.writeHeader(Polygon)
		numRings := 1 + len(poly.Holes)
		binary.Write(&f.buf, binary.LittleEndian, uint32(numRings))

		offset := f.writeSizePlaceholder()
		for _, p := range poly.Outer {
			f.writePoint(p)
		}
		if err := f.patchSize(offset, len(poly.Outer)); err != nil {
			return nil, err
		}

		for _, hole := range poly.Holes {
			offset := f.writeSizePlaceholder()
			for _, p := range hole {
				f.writePoint(p)
			}
			if err := f.patchSize(offset, len(hole)); err != nil {
				return nil, err
			}
		}
	}

	return f.finish(), nil
}

func (f *Factory) finish() []byte {
	out := make([]byte, f.buf.Len())
	copy(out, f.buf.Bytes())
	if f.mode == OutputHex {
		hexOut := make([]byte, hex.EncodedLen(len(out)))
		hex.Encode(hexOut, out)
		upper := bytes.ToUpper(hexOut)
		return upper
	}
	return out
}
