// Package writer implements the parallel COPY pipeline spec.md §1(c),
// §5, and §6 describe: a pool of worker goroutines draining an
// unordered queue of already-serialized rows and streaming them into
// PostgreSQL/PostGIS via COPY. Grounded on the teacher's
// pkg/v1/parallel.go (LoadCellsParallel's worker-pool-over-a-channel
// shape, here swapped to golang.org/x/sync/errgroup per SPEC_FULL.md
// §3) and pkg/s57/manager.go's budget-aware coordinating type for the
// batching-buffer shape.
package writer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Sink accepts serialized output rows. *Pool satisfies Sink; callers
// that only need to produce rows (such as pkg/osm2pgsql.Importer)
// should depend on Sink rather than *Pool so tests can substitute a
// fake.
type Sink interface {
	Enqueue(row Row) error
}

// Row is one output record: spec.md §6's "(id:int64, tags:map<string,
// string>, geometry:EWKB bytes, srid:int32)", plus the destination
// table, since this importer fans rows out to point/line/polygon
// tables the way the real osm2pgsql does.
type Row struct {
	Table    string
	ID       int64
	Tags     map[string]string
	Geometry []byte
	SRID     int32
}

// Options configures the writer pool.
type Options struct {
	// DatabaseURL is a pgx connection string.
	DatabaseURL string
	// Workers bounds the writer pool's concurrency (spec.md §5).
	Workers int
	// BatchSize is the number of rows accumulated per table before a
	// COPY is issued.
	BatchSize int
}

// DefaultOptions returns a small, always-valid Options suitable for
// tests; callers building a real pipeline should set DatabaseURL.
func DefaultOptions() Options {
	return Options{Workers: 4, BatchSize: 1000}
}

// Pool is the writer pool: an unordered, bounded queue of Rows drained
// by Options.Workers goroutines, each batching same-table rows into
// pgx.CopyFrom calls. Safe for concurrent Enqueue from multiple
// producer goroutines (spec.md §5: "writers drain an unordered
// queue").
type Pool struct {
	pool  *pgxpool.Pool
	opts  Options
	queue chan Row
	group *errgroup.Group
	gctx  context.Context
}

// Open creates a Pool backed by a pgxpool connection to
// opts.DatabaseURL and starts opts.Workers drain goroutines. The
// caller must call Close to flush remaining rows and release the
// connection pool, on every exit path including error (spec.md §5,
// "File handles, DB connections: scoped acquisition with guaranteed
// release on all exit paths").
func Open(ctx context.Context, opts Options) (*Pool, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}
	pgxPool, err := pgxpool.New(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("writer: connect: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	p := &Pool{
		pool:  pgxPool,
		opts:  opts,
		queue: make(chan Row, opts.Workers*opts.BatchSize),
		group: g,
		gctx:  gctx,
	}
	for i := 0; i < opts.Workers; i++ {
		g.Go(p.drain)
	}
	return p, nil
}

// Enqueue pushes a row onto the writer queue, blocking if the queue is
// full (spec.md §5's backpressure: "queue push when full"). Returns
// the first worker error if the pipeline has already failed.
func (p *Pool) Enqueue(row Row) error {
	select {
	case p.queue <- row:
		return nil
	case <-p.gctx.Done():
		return p.group.Wait()
	}
}

// Close drains and flushes all queued rows, waits for every worker to
// exit, then releases the connection pool. Returns the first error
// encountered by any worker, if any (spec.md §7: "Resource errors ...
// terminate the pipeline").
func (p *Pool) Close() error {
	close(p.queue)
	err := p.group.Wait()
	p.pool.Close()
	return err
}

// drain is one writer-pool worker: it accumulates rows per
// destination table and flushes each batch via CopyFrom, either when
// a table's batch reaches BatchSize or when the queue closes.
func (p *Pool) drain() error {
	batches := make(map[string][]Row)

	flush := func(table string) error {
		rows := batches[table]
		if len(rows) == 0 {
			return nil
		}
		batches[table] = nil
		return p.copyBatch(table, rows)
	}

	for {
		select {
		case row, ok := <-p.queue:
			if !ok {
				for table := range batches {
					if err := flush(table); err != nil {
						return err
					}
				}
				return nil
			}
			batches[row.Table] = append(batches[row.Table], row)
			if len(batches[row.Table]) >= p.opts.BatchSize {
				if err := flush(row.Table); err != nil {
					return err
				}
			}
		case <-p.gctx.Done():
			return p.gctx.Err()
		}
	}
}

// copyBatch streams rows into table via a single COPY FROM, released
// on return (success or error).
func (p *Pool) copyBatch(table string, rows []Row) error {
	src := &rowSource{rows: rows, idx: -1}
	_, err := p.pool.CopyFrom(p.gctx, pgx.Identifier{table}, copyColumns, src)
	if err != nil {
		return fmt.Errorf("writer: copy into %s: %w", table, err)
	}
	return nil
}

// copyColumns is the fixed column list every destination table uses,
// matching spec.md §6's output row shape.
var copyColumns = []string{"osm_id", "tags", "geometry", "srid"}

// rowSource adapts a []Row into a pgx.CopyFromSource.
type rowSource struct {
	rows []Row
	idx  int
}

func (s *rowSource) Next() bool {
	s.idx++
	return s.idx < len(s.rows)
}

func (s *rowSource) Values() ([]interface{}, error) {
	r := s.rows[s.idx]
	return []interface{}{r.ID, r.Tags, r.Geometry, r.SRID}, nil
}

func (s *rowSource) Err() error { return nil }
