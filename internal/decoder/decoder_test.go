package decoder

import (
	"context"
	"strings"
	"testing"
)

func TestSanitizeUTF8PassesValid(t *testing.T) {
	s := "hello, 世界"
	if got := SanitizeUTF8(s); got != s {
		t.Errorf("SanitizeUTF8(valid) = %q, want unchanged %q", got, s)
	}
}

func TestSanitizeUTF8ReplacesInvalidContinuation(t *testing.T) {
	// 0xC3 expects one continuation byte; 'x' (0x78) is not one.
	bad := "a\xc3x b"
	got := SanitizeUTF8(bad)
	if !strings.Contains(got, "�") {
		t.Errorf("SanitizeUTF8(%q) = %q, want it to contain U+FFFD", bad, got)
	}
}

func TestSanitizeUTF8RejectsFiveAndSixByteLead(t *testing.T) {
	// 0xF8 and 0xFC are 5-/6-byte lead bytes under the original
	// ISO/IEC 10646 UTF-8 definition, invalid under RFC 3629.
	for _, lead := range []byte{0xF8, 0xFC} {
		bad := string([]byte{lead, 0x80, 0x80, 0x80, 0x80})
		got := SanitizeUTF8(bad)
		if !strings.Contains(got, "�") {
			t.Errorf("SanitizeUTF8(lead=%#x) = %q, want U+FFFD replacement", lead, got)
		}
	}
}

func TestLineFormatDecoderRoundTrip(t *testing.T) {
	input := `# comment
n1 10000000 20000000 amenity=cafe
n2 30000000 40000000
w10 1,2 highway=residential
r100 w:outer:10 type=multipolygon
`
	dec := NewLineFormatDecoder(strings.NewReader(input), nil)
	var items []Item
	err := dec.Decode(context.Background(), func(it Item) error {
		items = append(items, it)
		return nil
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("got %d items, want 4", len(items))
	}
	if items[0].Kind != KindNode || items[0].Node.ID != 1 {
		t.Errorf("item 0 = %+v", items[0])
	}
	if v, ok := items[0].Node.Tags.Get("amenity"); !ok || v != "cafe" {
		t.Errorf("node 1 tags = %v", items[0].Node.Tags)
	}
	if items[2].Kind != KindWay || len(items[2].Way.Nodes) != 2 {
		t.Errorf("item 2 = %+v", items[2])
	}
	if items[3].Kind != KindRelation || len(items[3].Relation.Members) != 1 {
		t.Errorf("item 3 = %+v", items[3])
	}
}

func TestLineFormatDecoderInvalidLine(t *testing.T) {
	dec := NewLineFormatDecoder(strings.NewReader("x1 bogus\n"), nil)
	err := dec.Decode(context.Background(), func(Item) error { return nil })
	if err == nil {
		t.Fatalf("expected an error for an unknown primitive kind")
	}
}

func TestOrderCheckerWarnsOnceOnOutOfOrder(t *testing.T) {
	var warnings []string
	c := NewOrderChecker()
	c.Warn = func(msg string) { warnings = append(warnings, msg) }

	c.Node(1)
	c.Node(2)
	c.Node(1) // out of order
	c.Node(0) // would also warn, but only the first warning is issued

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want exactly 1 (warn-once policy)", len(warnings))
	}
}

func TestOrderCheckerWarnsOnNodeAfterWay(t *testing.T) {
	var warnings []string
	c := NewOrderChecker()
	c.Warn = func(msg string) { warnings = append(warnings, msg) }

	c.Way(1)
	c.Node(2)

	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
}

func TestOrderCheckerAcceptsInOrderStream(t *testing.T) {
	c := NewOrderChecker()
	c.Warn = func(string) { t.Fatalf("unexpected warning for a well-ordered stream") }

	c.Node(1)
	c.Node(2)
	c.Node(3)
	c.Way(1)
	c.Way(2)
	c.Relation(1)
	c.Relation(2)

	if c.Warned() {
		t.Errorf("Warned() = true, want false")
	}
}
