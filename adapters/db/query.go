package db

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"aivaceo/adapters/coercer"
	"aivaceo/domain/dataset"
	apperrors "aivaceo/internal/errors"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens and pings a database for the SQL reader
func Connect(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported database driver: %s", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to connect to database", err)
	}
	if driver == DriverSQLite {
		// an in-memory database lives on a single connection
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// QueryReader runs a query and returns its result set as a dataset
type QueryReader struct {
	db      *sqlx.DB
	coercer *coercer.TypeCoercer
}

// NewQueryReader creates a reader over an open database
func NewQueryReader(db *sqlx.DB, coercion coercer.CoercionConfig) *QueryReader {
	return &QueryReader{db: db, coercer: coercer.NewTypeCoercer(coercion)}
}

// QueryDataset executes query. Column kinds follow the declared database types;
// untyped expressions are inferred from their values.
func (r *QueryReader) QueryDataset(ctx context.Context, query string, args ...interface{}) (*dataset.Dataset, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidInput("query is empty")
	}

	startTime := time.Now()
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.DatabaseError("query failed", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to read column types", err)
	}

	cells := make([][]interface{}, len(types))
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, apperrors.DatabaseError("failed to scan row", err)
		}
		for j, v := range row {
			cells[j] = append(cells[j], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("failed to iterate rows", err)
	}

	columns := make([]*dataset.Column, len(types))
	for j, ct := range types {
		kind, known := KindForType(ct.DatabaseTypeName())
		col, err := r.buildColumn(ct.Name(), kind, known, cells[j])
		if err != nil {
			return nil, err
		}
		columns[j] = col
	}

	ds, err := dataset.New(columns...)
	if err != nil {
		return nil, err
	}
	log.Printf("[QueryReader] %d rows x %d columns in %.2fms",
		ds.Rows(), ds.NumColumns(), float64(time.Since(startTime).Nanoseconds())/1e6)
	return ds, nil
}

// KindForType maps a declared database type to a column kind; ok is false for unknown types
func KindForType(dbType string) (dataset.Kind, bool) {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch t {
	case "INT", "INTEGER", "SMALLINT", "BIGINT", "TINYINT", "MEDIUMINT", "INT2", "INT4", "INT8",
		"REAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "DOUBLE PRECISION", "NUMERIC", "DECIMAL", "MONEY",
		"SERIAL", "BIGSERIAL":
		return dataset.KindNumeric, true
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE":
		return dataset.KindDatetime, true
	case "TEXT", "VARCHAR", "CHAR", "BPCHAR", "CHARACTER", "CHARACTER VARYING", "NVARCHAR", "CLOB",
		"UUID", "BOOL", "BOOLEAN", "JSON", "JSONB", "NAME", "CITEXT":
		return dataset.KindText, true
	}
	return "", false
}

func (r *QueryReader) buildColumn(name string, kind dataset.Kind, known bool, values []interface{}) (*dataset.Column, error) {
	if !known {
		raw := make([]string, len(values))
		for i, v := range values {
			raw[i] = coercer.ToString(v)
		}
		col, _, err := r.coercer.BuildColumn(name, raw)
		return col, err
	}

	b := dataset.NewColumnBuilder(name, kind)
	for _, v := range values {
		if v == nil {
			b.AppendMissing()
			continue
		}
		switch kind {
		case dataset.KindNumeric:
			if f, ok := toFloat(v); ok {
				b.AppendFloat(f)
			} else {
				b.AppendMissing()
			}
		case dataset.KindDatetime:
			if t, ok := toTime(v); ok {
				b.AppendTime(t)
			} else {
				b.AppendMissing()
			}
		default:
			b.AppendText(coercer.ToString(v))
		}
	}
	return b.Build()
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return coercer.ParseNumeric(coercer.ToString(v))
	}
}

func toTime(v interface{}) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, !t.IsZero()
	}
	return coercer.ParseTimestamp(coercer.ToString(v))
}
