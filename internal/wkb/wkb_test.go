package wkb

import (
	"encoding/binary"
	"testing"

	"github.com/go-osm/osm2pgsql/internal/element"
)

func TestMakePointLayout(t *testing.T) {
	f := NewFactory(4326, OutputBinary)
	b := f.MakePoint(element.Location{Lon: 10_000_000, Lat: 20_000_000})

	if b[0] != 1 {
		t.Fatalf("byte order marker = %d, want 1 (NDR)", b[0])
	}
	typ := binary.LittleEndian.Uint32(b[1:5])
	if typ != uint32(Point)|sridFlag {
		t.Errorf("type field = %#x, want %#x", typ, uint32(Point)|sridFlag)
	}
	srid := int32(binary.LittleEndian.Uint32(b[5:9]))
	if srid != 4326 {
		t.Errorf("srid = %d, want 4326", srid)
	}
	if len(b) != 1+4+4+8+8 {
		t.Errorf("point length = %d, want %d", len(b), 1+4+4+8+8)
	}
}

func TestMakeLineStringBackPatchedSize(t *testing.T) {
	f := NewFactory(4326, OutputBinary)
	pts := []element.Location{{Lon: 0, Lat: 0}, {Lon: 10_000_000, Lat: 0}, {Lon: 10_000_000, Lat: 10_000_000}}
	b, err := f.MakeLineString(pts)
	if err != nil {
		t.Fatalf("MakeLineString: %v", err)
	}
	numPoints := binary.LittleEndian.Uint32(b[9:13])
	if numPoints != uint32(len(pts)) {
		t.Errorf("num_points = %d, want %d", numPoints, len(pts))
	}
	wantLen := 1 + 4 + 4 + 4 + len(pts)*16
	if len(b) != wantLen {
		t.Errorf("length = %d, want %d", len(b), wantLen)
	}
}

func TestMakePolygonRingCount(t *testing.T) {
	f := NewFactory(4326, OutputBinary)
	outer := Ring{{Lon: 0, Lat: 0}, {Lon: 10_000_000, Lat: 0}, {Lon: 10_000_000, Lat: 10_000_000}, {Lon: 0, Lat: 0}}
	hole := Ring{{Lon: 1_000_000, Lat: 1_000_000}, {Lon: 2_000_000, Lat: 1_000_000}, {Lon: 2_000_000, Lat: 2_000_000}, {Lon: 1_000_000, Lat: 1_000_000}}

	b, err := f.MakePolygon([]Ring{outer, hole})
	if err != nil {
		t.Fatalf("MakePolygon: %v", err)
	}
	numRings := binary.LittleEndian.Uint32(b[9:13])
	if numRings != 2 {
		t.Errorf("num_rings = %d, want 2", numRings)
	}
}

func TestMakeMultiPolygonNested(t *testing.T) {
	f := NewFactory(3857, OutputBinary)
	poly := PolygonRings{
		Outer: Ring{{Lon: 0, Lat: 0}, {Lon: 10_000_000, Lat: 0}, {Lon: 10_000_000, Lat: 10_000_000}, {Lon: 0, Lat: 0}},
	}
	b, err := f.MakeMultiPolygon([]PolygonRings{poly})
	if err != nil {
		t.Fatalf("MakeMultiPolygon: %v", err)
	}

	typ := binary.LittleEndian.Uint32(b[1:5])
	if typ != uint32(MultiPolygon)|sridFlag {
		t.Errorf("outer type = %#x, want MultiPolygon|SRID", typ)
	}
	numPolygons := binary.LittleEndian.Uint32(b[9:13])
	if numPolygons != 1 {
		t.Fatalf("num_polygons = %d, want 1", numPolygons)
	}

	// Nested polygon header starts right after the outer header + count.
	nestedOffset := 13
	if b[nestedOffset] != 1 {
		t.Errorf("nested byte order marker = %d, want 1", b[nestedOffset])
	}
	nestedType := binary.LittleEndian.Uint32(b[nestedOffset+1 : nestedOffset+5])
	if nestedType != uint32(Polygon)|sridFlag {
		t.Errorf("nested type = %#x, want Polygon|SRID", nestedType)
	}
}

func TestHexOutputIsUppercase(t *testing.T) {
	f := NewFactory(4326, OutputHex)
	b := f.MakePoint(element.Location{Lon: 0, Lat: 0})
	s := string(b)
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			t.Fatalf("hex output contains lowercase: %s", s)
		}
	}
	if len(s) != (1+4+4+8+8)*2 {
		t.Errorf("hex length = %d, want %d", len(s), (1+4+4+8+8)*2)
	}
}

func TestTooManyPointsOverflow(t *testing.T) {
	f := NewFactory(4326, OutputBinary)
	f.buf.Reset()
	offset := f.writeSizePlaceholder()
	if err := f.patchSize(offset, 1<<32); err != ErrTooManyPoints {
		t.Fatalf("patchSize(2^32) err = %v, want ErrTooManyPoints", err)
	}
	if err := f.patchSize(offset, -1); err != ErrTooManyPoints {
		t.Fatalf("patchSize(-1) err = %v, want ErrTooManyPoints", err)
	}
}
