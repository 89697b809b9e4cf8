// Package osm2pgsql provides a clean public API over the internal
// ETL pipeline: decode OSM primitives, resolve node locations, build
// EWKB geometry for ways and multipolygon relations, and stream the
// results into PostgreSQL/PostGIS.
//
// Grounded on pkg/s57/s57.go's wrapper-and-convert facade pattern
// (parserWrapper over internal/parser, here Importer over the
// internal cache/geom/mapping/wkb/writer packages) and
// pkg/s57/manager.go's ChartManager, the model for a single type that
// coordinates storage, assembly, and output rather than exposing each
// internal package directly.
package osm2pgsql

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-osm/osm2pgsql/internal/cache"
	"github.com/go-osm/osm2pgsql/internal/config"
	"github.com/go-osm/osm2pgsql/internal/decoder"
	"github.com/go-osm/osm2pgsql/internal/element"
	"github.com/go-osm/osm2pgsql/internal/geom"
	"github.com/go-osm/osm2pgsql/internal/mapping"
	"github.com/go-osm/osm2pgsql/internal/stats"
	"github.com/go-osm/osm2pgsql/internal/wkb"
	"github.com/go-osm/osm2pgsql/internal/writer"
)

// Destination table names, matching the conventional osm2pgsql schema
// (the same planet_osm_* naming the secondary postgresosm reference
// package queries against).
const (
	TablePoint   = "planet_osm_point"
	TableLine    = "planet_osm_line"
	TablePolygon = "planet_osm_polygon"
)

// Importer runs the full node/way/relation pipeline described by
// spec.md §2's data flow: decoded OSM objects -> location resolution
// -> geometry construction -> WKB+tags row forwarded to the writer.
// Not safe for concurrent use: per spec.md §5, the core is
// single-threaded cooperative.
type Importer struct {
	cfg config.Config

	nodes *cache.NodeStore
	ways  *cache.WayStore

	areaFilter *mapping.TagFilter
	assembler  *geom.Assembler
	factory    *wkb.Factory

	order *decoder.OrderChecker
	Stats stats.Counters
}

// New builds an Importer from cfg. It does not open a database
// connection; pair it with a writer.Pool opened separately so callers
// can control the connection's lifetime independently (spec.md §5,
// scoped resource acquisition).
func New(cfg config.Config) *Importer {
	nodes := cache.New(cfg.NodeStoreOptions())
	return &Importer{
		cfg:        cfg,
		nodes:      nodes,
		ways:       cache.NewWayStore(0),
		areaFilter: mapping.DefaultAreaFilter(),
		assembler: geom.NewAssembler(nodes, geom.Options{
			IgnoreInvalidLocations: cfg.IgnoreInvalidLocations,
			CreateEmptyAreas:       cfg.CreateEmptyAreas,
			KeepTypeTag:            cfg.KeepTypeTag,
		}),
		factory: wkb.NewFactory(int32(cfg.ProjectionSRID), wkb.OutputBinary),
		order:   decoder.NewOrderChecker(),
	}
}

// Run decodes every primitive dec produces and forwards geometry rows
// to out, in the canonical node/way/relation order spec.md §5 and §6
// require. It returns the first fatal error encountered: any NodeStore
// Set error (id too large, out of order, capacity exceeded), a
// geometry encoding error, or a writer error ends the run. Missing
// node locations and geometry problems are recovered per-primitive
// and folded into Stats (spec.md §7).
func (imp *Importer) Run(ctx context.Context, dec decoder.Decoder, out writer.Sink) error {
	opts := decoder.Options{IgnoreInvalidLocations: imp.cfg.IgnoreInvalidLocations}
	return dec.DecodeWithOptions(ctx, opts, func(item decoder.Item) error {
		switch item.Kind {
		case decoder.KindNode:
			return imp.handleNode(item.Node, out)
		case decoder.KindWay:
			return imp.handleWay(item.Way, out)
		case decoder.KindRelation:
			return imp.handleRelation(item.Relation, out)
		default:
			return fmt.Errorf("osm2pgsql: unknown primitive kind %d", item.Kind)
		}
	})
}

func (imp *Importer) handleNode(n *element.Node, out writer.Sink) error {
	imp.order.Node(n.ID)
	if err := imp.nodes.Set(n.ID, n.Location); err != nil {
		var capErr *cache.ErrCapacityExceeded
		if errors.As(err, &capErr) {
			imp.Stats.AddCapacityExceeded(1)
		}
		return fmt.Errorf("osm2pgsql: node %d: %w", n.ID, err)
	}
	imp.Stats.AddNodes(1)

	if !mapping.IsPointCandidate(n) {
		return nil
	}
	wkbBytes := imp.factory.MakePoint(n.Location)
	return out.Enqueue(writer.Row{
		Table:    TablePoint,
		ID:       int64(n.ID),
		Tags:     tagsToMap(n.Tags),
		Geometry: wkbBytes,
		SRID:     int32(imp.cfg.ProjectionSRID),
	})
}

func (imp *Importer) handleWay(w *element.Way, out writer.Sink) error {
	imp.order.Way(w.ID)
	if imp.ways.Put(w.ID, w) {
		imp.Stats.AddDuplicateWays(1)
	}
	imp.Stats.AddWays(1)

	if len(w.Nodes) < 2 {
		imp.Stats.AddShortWays(1)
		return nil
	}

	switch mapping.ClassifyWay(w, imp.areaFilter) {
	case mapping.KindPolygon:
		return imp.emitWayPolygon(w, out)
	default:
		return imp.emitWayLine(w, out)
	}
}

func (imp *Importer) emitWayLine(w *element.Way, out writer.Sink) error {
	points := make([]element.Location, 0, len(w.Nodes))
	missing := 0
	for _, id := range w.Nodes {
		loc := imp.nodes.Get(id)
		if !loc.IsDefined() {
			missing++
			continue
		}
		points = append(points, loc)
	}
	if missing > 0 {
		imp.Stats.AddInvalidLocations(int64(missing))
		if !imp.cfg.IgnoreInvalidLocations {
			return nil
		}
	}
	if len(points) < 2 {
		return nil
	}

	body, err := imp.factory.MakeLineString(points)
	if err != nil {
		return fmt.Errorf("osm2pgsql: way %d linestring: %w", w.ID, err)
	}
	return out.Enqueue(writer.Row{
		Table:    TableLine,
		ID:       int64(w.ID),
		Tags:     tagsToMap(w.Tags),
		Geometry: body,
		SRID:     int32(imp.cfg.ProjectionSRID),
	})
}

func (imp *Importer) emitWayPolygon(w *element.Way, out writer.Sink) error {
	if !w.IsClosed() {
		return imp.emitWayLine(w, out)
	}
	result, err := imp.assembler.AssembleWay(w, w.Tags)
	if err != nil {
		return fmt.Errorf("osm2pgsql: way %d area assembly: %w", w.ID, err)
	}
	imp.foldAssemblerStats()
	// A lone way (spec.md §4.3, case (i)) always emits POLYGON: the
	// build_multigeoms option (spec.md §6) only governs whether a
	// multipolygon *relation* collapses to POLYGON, not this case.
	return imp.emitResult(int64(w.ID), result, out, true)
}

func (imp *Importer) handleRelation(r *element.Relation, out writer.Sink) error {
	imp.order.Relation(r.ID)
	imp.Stats.AddRelations(1)

	if mapping.ClassifyRelation(r) != mapping.KindMultipolygon {
		return nil
	}

	wayMembers := r.WayMembers()
	members := make([]*element.Way, 0, len(wayMembers))
	roles := make([]element.Role, 0, len(wayMembers))
	for _, m := range wayMembers {
		rec, err := imp.ways.Get(m.Ref)
		if err != nil {
			// way not retained: relation reported incomplete and skipped, per spec.md §4.2
			log.Printf("osm2pgsql: relation %d incomplete, skipped: %v", r.ID, err)
			return nil
		}
		members = append(members, &element.Way{ID: m.Ref, Nodes: rec.Nodes, Tags: rec.Tags})
		roles = append(roles, m.Role)
	}

	result, err := imp.assembler.AssembleRelation(r, members, roles, r.Tags)
	if err != nil {
		return fmt.Errorf("osm2pgsql: relation %d area assembly: %w", r.ID, err)
	}
	imp.foldAssemblerStats()
	return imp.emitResult(int64(r.ID), result, out, false)
}

// foldAssemblerStats copies the Assembler's problem counters into the
// Importer's run-wide Stats and then resets them, so each fold covers
// exactly one AssembleWay/AssembleRelation call.
func (imp *Importer) foldAssemblerStats() {
	s := imp.assembler.Stats
	imp.Stats.AddInvalidLocations(int64(s.InvalidLocations))
	imp.Stats.AddDuplicateNodes(int64(s.DuplicateNodes))
	imp.Stats.AddDuplicateSegments(int64(s.DuplicateSegments))
	imp.Stats.AddSelfIntersections(int64(s.SelfIntersections))
	imp.Stats.AddOpenRings(int64(s.OpenRings))
	imp.Stats.AddOrientationMismatch(int64(s.OrientationMismatches))
	imp.Stats.AddNoWayInMPRelation(int64(s.NoWayInRelation))
	imp.assembler.Stats = geom.Stats{}
}

// emitResult encodes an assembled area and enqueues it. singlePolygon
// forces a bare POLYGON encoding regardless of BuildMultigeoms: it is
// set for a standalone way (spec.md §4.3, case (i)), which always
// emits POLYGON, never MULTIPOLYGON. For a relation's result,
// singlePolygon is false and BuildMultigeoms decides whether a single
// assembled ring collapses to POLYGON or still emits MULTIPOLYGON
// (spec.md §6).
func (imp *Importer) emitResult(id int64, result *geom.Result, out writer.Sink, singlePolygon bool) error {
	if result == nil {
		return nil
	}
	if result.EmptyArea {
		return out.Enqueue(writer.Row{
			Table: TablePolygon,
			ID:    id,
			Tags:  tagsToMap(result.Tags),
			SRID:  int32(imp.cfg.ProjectionSRID),
		})
	}
	if len(result.Polygons) == 0 {
		return nil
	}

	polys := make([]wkb.PolygonRings, 0, len(result.Polygons))
	for _, outer := range result.Polygons {
		holes := make([]wkb.Ring, 0, len(outer.Inners))
		for _, inner := range outer.Inners {
			holes = append(holes, wkb.Ring(inner.Points))
		}
		polys = append(polys, wkb.PolygonRings{Outer: wkb.Ring(outer.Points), Holes: holes})
	}

	var body []byte
	var err error
	collapseToPolygon := len(polys) == 1 && (singlePolygon || !imp.cfg.BuildMultigeoms)
	if collapseToPolygon {
		body, err = imp.factory.MakePolygon(append([]wkb.Ring{polys[0].Outer}, polys[0].Holes...))
	} else {
		body, err = imp.factory.MakeMultiPolygon(polys)
	}
	if err != nil {
		return fmt.Errorf("osm2pgsql: id %d geometry encode: %w", id, err)
	}

	return out.Enqueue(writer.Row{
		Table:    TablePolygon,
		ID:       id,
		Tags:     tagsToMap(result.Tags),
		Geometry: body,
		SRID:     int32(imp.cfg.ProjectionSRID),
	})
}

func tagsToMap(tags *element.TagList) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, tags.Len())
	for _, t := range tags.All() {
		out[t.Key] = t.Value
	}
	return out
}
