package infra

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor defines the contract the stores need for executing SQL. It
// matches the pgxpool surface so tests can substitute an in-memory fake.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// SQLRunner wraps a pgx pool with per-statement logging. Statements are
// tagged by verb and target table so slow or failing queries are
// attributable without logging full SQL text.
type SQLRunner struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	tag := queryTag(query)
	r.Logger.Debug().Msgf("sql[%s] exec", tag)
	cmd, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		r.Logger.Error().Err(err).Msgf("sql[%s] error", tag)
		return cmd, err
	}
	return cmd, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	tag := queryTag(query)
	r.Logger.Debug().Msgf("sql[%s] query_row", tag)
	return loggingRow{row: r.Pool.QueryRow(ctx, query, args...), logger: r.Logger, tag: tag}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	tag := queryTag(query)
	r.Logger.Debug().Msgf("sql[%s] query", tag)
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		r.Logger.Error().Err(err).Msgf("sql[%s] error", tag)
		return nil, err
	}
	return rows, nil
}

type loggingRow struct {
	row    pgx.Row
	logger zerolog.Logger
	tag    string
}

func (l loggingRow) Scan(dest ...any) error {
	err := l.row.Scan(dest...)
	if err != nil && err != pgx.ErrNoRows {
		l.logger.Error().Err(err).Msgf("sql[%s] scan error", l.tag)
	}
	return err
}

// queryTag derives a short "verb table" label from a statement, e.g.
// "select hackathon_applications".
func queryTag(query string) string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 {
		return "unknown"
	}
	verb := fields[0]
	table := ""
	marker := map[string]string{"select": "from", "delete": "from", "update": "update", "insert": "into"}[verb]
	for i, f := range fields {
		if f == marker && i+1 < len(fields) {
			table = fields[i+1]
			break
		}
	}
	if verb == "update" && len(fields) > 1 {
		table = fields[1]
	}
	if table == "" {
		return verb
	}
	return verb + " " + table
}

var _ SQLExecutor = (*SQLRunner)(nil)
