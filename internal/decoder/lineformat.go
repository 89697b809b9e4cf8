package decoder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-osm/osm2pgsql/internal/element"
)

// LineFormatDecoder reads a compact, line-oriented OSM primitive
// encoding (one primitive per line), the sole fully-implemented
// concrete Decoder in this package (see DESIGN.md for why the real
// OSM PBF/XML formats are left as stubs). Modeled on
// original_source/src/opl_input_format.hpp's line-per-object design,
// which this package's grammar is a deliberate simplification of:
//
//	n<id> <lon_1e7> <lat_1e7> [key=value ...]
//	w<id> <node_id,node_id,...> [key=value ...]
//	r<id> <type:role:ref,...> [key=value ...]
//
// Lines are '\n'-terminated; blank lines and lines starting with '#'
// are skipped. Tag values containing spaces are not supported by this
// compact grammar (use the PBF/XML decoders for full fidelity, not
// implemented here, see ErrNotImplemented).
type LineFormatDecoder struct {
	r       io.Reader
	checker *OrderChecker
}

// NewLineFormatDecoder creates a decoder reading from r. checker may
// be nil to skip order checking.
func NewLineFormatDecoder(r io.Reader, checker *OrderChecker) *LineFormatDecoder {
	return &LineFormatDecoder{r: r, checker: checker}
}

func (d *LineFormatDecoder) Decode(ctx context.Context, emit func(Item) error) error {
	return d.DecodeWithOptions(ctx, DefaultOptions(), emit)
}

func (d *LineFormatDecoder) DecodeWithOptions(ctx context.Context, opts Options, emit func(Item) error) error {
	scanner := bufio.NewScanner(d.r)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item, err := parseLine(line)
		if err != nil {
			return fmt.Errorf("decoder: line %d: %w", lineNo, err)
		}
		if d.checker != nil {
			switch item.Kind {
			case KindNode:
				d.checker.Node(item.Node.ID)
			case KindWay:
				d.checker.Way(item.Way.ID)
			case KindRelation:
				d.checker.Relation(item.Relation.ID)
			}
		}
		if err := emit(item); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseLine(line string) (Item, error) {
	if len(line) < 2 {
		return Item{}, fmt.Errorf("line too short: %q", line)
	}
	kindByte := line[0]
	rest := line[1:]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Item{}, fmt.Errorf("missing id field: %q", line)
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Item{}, fmt.Errorf("invalid id %q: %w", fields[0], err)
	}

	switch kindByte {
	case 'n':
		if len(fields) < 3 {
			return Item{}, fmt.Errorf("node line missing lon/lat: %q", line)
		}
		lon, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return Item{}, fmt.Errorf("invalid lon %q: %w", fields[1], err)
		}
		lat, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			return Item{}, fmt.Errorf("invalid lat %q: %w", fields[2], err)
		}
		return Item{Kind: KindNode, Node: &element.Node{
			ID:       element.ID(id),
			Location: element.Location{Lon: int32(lon), Lat: int32(lat)},
			Tags:     parseTags(fields[3:]),
		}}, nil

	case 'w':
		nodes, err := parseNodeIDs(fields[1:])
		if err != nil {
			return Item{}, err
		}
		tagStart := len(fields)
		for i, f := range fields[1:] {
			if strings.Contains(f, "=") {
				tagStart = i + 1
				break
			}
		}
		return Item{Kind: KindWay, Way: &element.Way{
			ID:    element.ID(id),
			Nodes: nodes,
			Tags:  parseTags(fields[tagStart:]),
		}}, nil

	case 'r':
		members, tagStart, err := parseMembers(fields[1:])
		if err != nil {
			return Item{}, err
		}
		return Item{Kind: KindRelation, Relation: &element.Relation{
			ID:      element.ID(id),
			Members: members,
			Tags:    parseTags(fields[1+tagStart:]),
		}}, nil

	default:
		return Item{}, fmt.Errorf("unknown primitive kind %q", string(kindByte))
	}
}

func parseNodeIDs(fields []string) ([]element.ID, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	first := fields[0]
	if strings.Contains(first, "=") {
		return nil, nil
	}
	parts := strings.Split(first, ",")
	ids := make([]element.ID, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid node id %q: %w", p, err)
		}
		ids = append(ids, element.ID(v))
	}
	return ids, nil
}

func parseMembers(fields []string) ([]element.Member, int, error) {
	if len(fields) == 0 || strings.Contains(fields[0], "=") {
		return nil, 0, nil
	}
	parts := strings.Split(fields[0], ",")
	members := make([]element.Member, 0, len(parts))
	for _, p := range parts {
		pieces := strings.SplitN(p, ":", 3)
		if len(pieces) != 3 {
			return nil, 0, fmt.Errorf("invalid member %q (want type:role:ref)", p)
		}
		var typ element.MemberType
		switch pieces[0] {
		case "n":
			typ = element.MemberNode
		case "w":
			typ = element.MemberWay
		case "r":
			typ = element.MemberRelation
		default:
			return nil, 0, fmt.Errorf("invalid member type %q", pieces[0])
		}
		ref, err := strconv.ParseInt(pieces[2], 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid member ref %q: %w", pieces[2], err)
		}
		members = append(members, element.Member{
			Type: typ,
			Ref:  element.ID(ref),
			Role: element.ParseRole(pieces[1]),
		})
	}
	return members, 1, nil
}

func parseTags(fields []string) *element.TagList {
	if len(fields) == 0 {
		return nil
	}
	tags := element.NewTagList()
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		tags.Set(SanitizeUTF8(k), SanitizeUTF8(v))
	}
	return tags
}
