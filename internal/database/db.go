package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/Alias1177/volscan/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ConnString builds a lib/pq key/value connection string, skipping empty values
func (p ConnectionParams) ConnString() string {
	pairs := []struct{ key, value string }{
		{"host", p.Host},
		{"port", p.Port},
		{"user", p.User},
		{"password", p.Password},
		{"dbname", p.DBName},
		{"sslmode", p.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv.value == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", kv.key, quoteValue(kv.value)))
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// New creates a new database connection. A non-empty url takes precedence over params.
func New(ctx context.Context, url string, params ConnectionParams) (*DB, error) {
	connStr := url
	if connStr == "" {
		connStr = params.ConnString()
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS volatility_reports (
			id UUID PRIMARY KEY,
			exchange TEXT NOT NULL,
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			status TEXT NOT NULL,
			conclusion TEXT,
			signal_strength INTEGER NOT NULL,
			latest_open_time BIGINT,
			report JSONB NOT NULL,
			summary JSONB,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS volatility_reports_symbol_idx
		ON volatility_reports (exchange, symbol, interval, created_at DESC)
	`)
	return err
}

// ReportRow is one archived volatility report
type ReportRow struct {
	ID             uuid.UUID
	Exchange       string
	Symbol         string
	Interval       string
	Status         string
	Conclusion     sql.NullString
	SignalStrength int
	LatestOpenTime sql.NullInt64
	Report         []byte
	Summary        []byte
	CreatedAt      time.Time
}

// NewReportRow serializes a report and its optional summary for archiving
func NewReportRow(p *models.Payload, report models.SignalReport, summary *models.Summary, now time.Time) (*ReportRow, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	row := &ReportRow{
		ID:             uuid.New(),
		Exchange:       p.Exchange,
		Symbol:         p.Symbol,
		Interval:       p.Interval,
		Status:         report.Status,
		Conclusion:     sql.NullString{String: report.Conclusion, Valid: report.Conclusion != ""},
		SignalStrength: report.SignalStrength,
		Report:         reportJSON,
		CreatedAt:      now.UTC(),
	}

	if latest, ok := models.LatestCandle(p.Klines); ok {
		row.LatestOpenTime = sql.NullInt64{Int64: latest.OpenTime, Valid: true}
		if row.Symbol == "" {
			row.Symbol = latest.Symbol
		}
	}

	if summary != nil {
		if row.Summary, err = json.Marshal(summary); err != nil {
			return nil, fmt.Errorf("failed to encode summary: %w", err)
		}
	}

	return row, nil
}

// SaveReport inserts an archived report
func (db *DB) SaveReport(ctx context.Context, row *ReportRow) error {
	// lib/pq sends []byte as bytea, jsonb columns need text
	var summary sql.NullString
	if row.Summary != nil {
		summary = sql.NullString{String: string(row.Summary), Valid: true}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO volatility_reports (
			id, exchange, symbol, interval, status, conclusion, signal_strength,
			latest_open_time, report, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		row.ID.String(), row.Exchange, row.Symbol, row.Interval, row.Status, row.Conclusion,
		row.SignalStrength, row.LatestOpenTime, string(row.Report), summary, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report %s: %w", row.ID, err)
	}

	return nil
}

// LatestReport returns the most recent report JSON for a symbol/interval, or nil when none exists
func (db *DB) LatestReport(ctx context.Context, exchange, symbol, interval string) (*models.SignalReport, error) {
	var raw []byte
	err := db.QueryRowContext(ctx, `
		SELECT report
		FROM volatility_reports
		WHERE exchange = $1 AND symbol = $2 AND interval = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, exchange, symbol, interval).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var report models.SignalReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}
