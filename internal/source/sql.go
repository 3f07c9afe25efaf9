package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Columns read from the snapshot table, in scan order.
const eventColumns = "event_date, product, quarter, reg, icp_r, nicp_r, att, icp_a, nicp_a, d_r, p_r"

// loadedAtColumn holds the load timestamp written by the upstream producer.
const loadedAtColumn = "loaded_at"

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SQLSource reads the snapshot from a table. It never writes.
type SQLSource struct {
	db        *sql.DB
	tableName string
	backend   schema.SourceBackend
}

var _ contract.SnapshotSource = &SQLSource{} // Compile-time check

// NewSQLSource opens a read-only source over the table for the given backend.
func NewSQLSource(backend schema.SourceBackend, connStr, tableName string) (*SQLSource, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return &SQLSource{db: db, tableName: tableName, backend: backend}, nil
}

// openDB opens a connection pool for the backend.
func openDB(backend schema.SourceBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteSource:
		db, err := sql.Open("sqlite", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w", connStr, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLSource:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLSource:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=regpulse
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported SQL backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}
}

// Describe returns backend and table, never the connection string.
func (s *SQLSource) Describe() string {
	return fmt.Sprintf("%s://%s", s.backend, s.tableName)
}

// Close releases the connection pool.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// Fetch reads every row of the table. updatedAt is the latest loaded_at when the
// table has that column.
func (s *SQLSource) Fetch(ctx context.Context) (contract.Payload, error) {
	events, err := s.readEvents(ctx)
	if err != nil {
		return contract.Payload{}, err
	}
	payload := contract.Payload{Events: events}
	if updated, ok := s.lastLoadedAt(ctx); ok {
		payload.UpdatedAt = updated
	}
	return payload, nil
}

func (s *SQLSource) readEvents(ctx context.Context) ([]schema.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY event_date`, eventColumns, quoteTableName(s.tableName, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.tableName, err)
	}
	defer func() { _ = rows.Close() }()

	events := []schema.Event{}
	for rows.Next() {
		row, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.tableName, err)
		}
		events = append(events, row.Event())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.tableName, err)
	}
	return events, nil
}

func scanEventRow(rows *sql.Rows) (schema.SQLEventRow, error) {
	var (
		date             any
		product, quarter sql.NullString
		counts           [8]sql.NullInt64
	)
	dest := []any{&date, &product, &quarter}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return schema.SQLEventRow{}, err
	}
	return schema.SQLEventRow{
		EventDate: asTime(date),
		Product:   strings.TrimSpace(product.String),
		Quarter:   strings.TrimSpace(quarter.String),
		Reg:       int(counts[0].Int64),
		IcpR:      int(counts[1].Int64),
		NicpR:     int(counts[2].Int64),
		Att:       int(counts[3].Int64),
		IcpA:      int(counts[4].Int64),
		NicpA:     int(counts[5].Int64),
		DR:        int(counts[6].Int64),
		PR:        int(counts[7].Int64),
	}, nil
}

// lastLoadedAt returns MAX(loaded_at). Tables without the column report false.
func (s *SQLSource) lastLoadedAt(ctx context.Context) (time.Time, bool) {
	query := fmt.Sprintf(`SELECT MAX(%s) FROM %s`, loadedAtColumn, quoteTableName(s.tableName, s.backend))
	var v any
	if err := s.db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return time.Time{}, false
	}
	t := asTime(v)
	return t, !t.IsZero()
}

// Status reports row counts and date coverage of the table.
func (s *SQLSource) Status(ctx context.Context) (schema.SourceStatus, error) {
	status := schema.SourceStatus{
		Backend: string(s.backend),
		Table:   s.tableName,
	}
	if err := s.db.PingContext(ctx); err != nil {
		return status, nil
	}
	status.Connected = true

	quoted := quoteTableName(s.tableName, s.backend)
	query := fmt.Sprintf(`SELECT COUNT(*), COUNT(DISTINCT product), COUNT(DISTINCT quarter), MIN(event_date), MAX(event_date) FROM %s`, quoted)
	var first, last any
	if err := s.db.QueryRowContext(ctx, query).Scan(&status.TotalRows, &status.Products, &status.Quarters, &first, &last); err != nil {
		return status, fmt.Errorf("failed to query %s status: %w", s.tableName, err)
	}
	status.FirstEvent = asTime(first)
	status.LastEvent = asTime(last)
	if loaded, ok := s.lastLoadedAt(ctx); ok {
		status.LastLoadedAt = loaded
	}
	return status, nil
}

// timeLayouts covers what the three drivers return for DATE and TIMESTAMP columns
// when they hand back text instead of time.Time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	schema.DateFormat,
}

// asTime converts a scanned DATE or TIMESTAMP value. Unparseable values are zero.
func asTime(v any) time.Time {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x.UTC()
	case []byte:
		s = string(x)
	case string:
		s = x
	case int64:
		return time.Unix(x, 0).UTC()
	default:
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// validateTableName validates that a table name contains only safe characters.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.SourceBackend) string {
	switch backend {
	case schema.MySQLSource:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}
