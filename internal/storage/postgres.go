package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/mohamedkhairy/session-analytics/internal/config"
	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeWriteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_store_write_total",
			Help: "Total number of record store write operations",
		},
		[]string{"status"}, // "success" or "error"
	)

	storeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "record_store_latency_seconds",
			Help:    "Record store operation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		},
		[]string{"operation"},
	)
)

// PostgresRecordStore implements RecordStore on PostgreSQL.
type PostgresRecordStore struct {
	db *sql.DB
}

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS session_records (
	instrument     TEXT        NOT NULL,
	trading_date   DATE        NOT NULL,
	session        TEXT        NOT NULL,
	kind           TEXT        NOT NULL,
	start_time     TIMESTAMPTZ NOT NULL,
	end_time       TIMESTAMPTZ,
	high           DOUBLE PRECISION,
	low            DOUBLE PRECISION,
	mid            DOUBLE PRECISION,
	open           DOUBLE PRECISION,
	price          DOUBLE PRECISION,
	status         TEXT,
	triggered_side TEXT,
	status_time    TIMESTAMPTZ,
	broken         BOOLEAN     NOT NULL DEFAULT FALSE,
	broken_time    TIMESTAMPTZ,
	PRIMARY KEY (instrument, trading_date, session, start_time)
)`

// NewPostgresRecordStore connects and bootstraps the schema.
func NewPostgresRecordStore(cfg config.DatabaseConfig) (*PostgresRecordStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createRecordsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session_records table: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
	)

	return &PostgresRecordStore{db: db}, nil
}

// SaveRecords replaces the stored records for an instrument in one
// transaction.
func (s *PostgresRecordStore) SaveRecords(ctx context.Context, instrument string, records []models.SessionRecord) error {
	start := time.Now()
	defer func() {
		storeLatency.WithLabelValues("save").Observe(time.Since(start).Seconds())
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		storeWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_records WHERE instrument = $1`, instrument); err != nil {
		storeWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to clear previous records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO session_records (
			instrument, trading_date, session, kind, start_time, end_time,
			high, low, mid, open, price,
			status, triggered_side, status_time, broken, broken_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`)
	if err != nil {
		storeWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		_, err := stmt.ExecContext(ctx,
			instrument,
			rec.Date,
			rec.Session,
			string(rec.Kind),
			rec.StartTime,
			nullTime(rec.EndTime),
			rec.High,
			rec.Low,
			rec.Mid,
			rec.Open,
			rec.Price,
			string(rec.Status),
			string(rec.TriggeredSide),
			nullTimePtr(rec.StatusTime),
			rec.Broken,
			nullTimePtr(rec.BrokenTime),
		)
		if err != nil {
			storeWriteTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("failed to insert record %s/%s: %w", rec.Date.Format("2006-01-02"), rec.Session, err)
		}
	}

	if err := tx.Commit(); err != nil {
		storeWriteTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to commit records: %w", err)
	}

	storeWriteTotal.WithLabelValues("success").Inc()
	logger.Info("Saved session records",
		logger.String("instrument", instrument),
		logger.Int("count", len(records)),
	)
	return nil
}

// GetRecords returns everything stored for an instrument.
func (s *PostgresRecordStore) GetRecords(ctx context.Context, instrument string) ([]models.SessionRecord, error) {
	return s.query(ctx, `
		SELECT trading_date, session, kind, start_time, end_time,
		       high, low, mid, open, price,
		       status, triggered_side, status_time, broken, broken_time
		FROM session_records
		WHERE instrument = $1
		ORDER BY trading_date, start_time`, instrument)
}

// GetRecordsByDateRange returns stored records within [from, to].
func (s *PostgresRecordStore) GetRecordsByDateRange(ctx context.Context, instrument string, from, to time.Time) ([]models.SessionRecord, error) {
	return s.query(ctx, `
		SELECT trading_date, session, kind, start_time, end_time,
		       high, low, mid, open, price,
		       status, triggered_side, status_time, broken, broken_time
		FROM session_records
		WHERE instrument = $1 AND trading_date BETWEEN $2 AND $3
		ORDER BY trading_date, start_time`, instrument, from, to)
}

func (s *PostgresRecordStore) query(ctx context.Context, q string, args ...interface{}) ([]models.SessionRecord, error) {
	start := time.Now()
	defer func() {
		storeLatency.WithLabelValues("query").Observe(time.Since(start).Seconds())
	}()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query session records: %w", err)
	}
	defer rows.Close()

	var records []models.SessionRecord
	for rows.Next() {
		var rec models.SessionRecord
		var kind, status, side sql.NullString
		var endTime, statusTime, brokenTime sql.NullTime

		err := rows.Scan(
			&rec.Date, &rec.Session, &kind, &rec.StartTime, &endTime,
			&rec.High, &rec.Low, &rec.Mid, &rec.Open, &rec.Price,
			&status, &side, &statusTime, &rec.Broken, &brokenTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session record: %w", err)
		}

		rec.Kind = models.RecordKind(kind.String)
		rec.Status = models.Status(status.String)
		rec.TriggeredSide = models.Side(side.String)
		if endTime.Valid {
			rec.EndTime = endTime.Time
		}
		if statusTime.Valid {
			t := statusTime.Time
			rec.StatusTime = &t
		}
		if brokenTime.Valid {
			t := brokenTime.Time
			rec.BrokenTime = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the connection pool.
func (s *PostgresRecordStore) Close() error {
	return s.db.Close()
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}
