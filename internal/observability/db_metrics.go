package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ObserveDB times fn under the logical op name and counts its failures by
// class. A nil *Prom just runs fn.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	if p == nil {
		return fn()
	}

	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
	}
	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifyDBErr(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "unique_violation"
		case "53300":
			return "too_many_connections"
		case "57014":
			return "query_canceled"
		case "42P01":
			return "undefined_table"
		default:
			return "pg_" + pgErr.Code
		}
	}

	// sqlite and pool errors only carry text
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "unique constraint failed"):
		return "unique_violation"
	case strings.Contains(msg, "database is locked"):
		return "locked"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "acquire"):
		return "connection"
	default:
		return "unknown"
	}
}
