package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"server/internal/domain"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

// staticRows plays back a fixed sequence of row scans.
type staticRows struct {
	testRowsBase
	scans []func(dest ...any) error
	idx   int
}

func (r *staticRows) Next() bool {
	r.idx++
	return r.idx <= len(r.scans)
}

func (r *staticRows) Scan(dest ...any) error { return r.scans[r.idx-1](dest...) }

func (r *staticRows) Close() {}

func (r *staticRows) Err() error { return nil }

func intRows(values ...int) pgx.Rows {
	scans := make([]func(dest ...any) error, 0, len(values))
	for _, v := range values {
		v := v
		scans = append(scans, func(dest ...any) error {
			*(dest[0].(*int)) = v
			return nil
		})
	}
	return &staticRows{scans: scans}
}

func emptyRows() pgx.Rows { return &staticRows{} }

// contentRow answers a full content select with minimal non-null columns.
func contentRow(id int64) pgx.Row {
	return simpleRow{scan: func(dest ...any) error {
		*(dest[0].(*int64)) = id
		*(dest[1].(*string)) = domain.ContentTypeImage
		*(dest[5].(*[]byte)) = []byte(`{}`)
		*(dest[12].(*[]byte)) = []byte(`{}`)
		*(dest[13].(*float64)) = 0
		*(dest[14].(*int)) = 0
		*(dest[15].(*time.Time)) = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		return nil
	}}
}

type execCall struct {
	query string
	args  []any
}

// fakeExecutor routes queries to canned responses keyed by the inline SQL
// constant and records every Exec for assertions.
type fakeExecutor struct {
	execs    []execCall
	execErrs map[string]error
	rows     map[string]func(args []any) pgx.Row
	queries  map[string]func(args []any) (pgx.Rows, error)
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		execErrs: map[string]error{},
		rows:     map[string]func(args []any) pgx.Row{},
		queries:  map[string]func(args []any) (pgx.Rows, error){},
	}
}

func (f *fakeExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, f.execErrs[query]
}

func (f *fakeExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if fn, ok := f.rows[query]; ok {
		return fn(args)
	}
	return simpleRow{}
}

func (f *fakeExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if fn, ok := f.queries[query]; ok {
		return fn(args)
	}
	return emptyRows(), nil
}

func (f *fakeExecutor) execCount(query string) int {
	n := 0
	for _, c := range f.execs {
		if c.query == query {
			n++
		}
	}
	return n
}

func (f *fakeExecutor) lastExec(query string) *execCall {
	for i := len(f.execs) - 1; i >= 0; i-- {
		if f.execs[i].query == query {
			return &f.execs[i]
		}
	}
	return nil
}
