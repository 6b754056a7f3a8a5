package submit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	_ "github.com/lib/pq"
	"github.com/tbxark/tripwizard/types"
)

const createTripsTable = `CREATE TABLE IF NOT EXISTS trips (
	id TEXT PRIMARY KEY,
	destination TEXT NOT NULL,
	hotel_name TEXT NOT NULL DEFAULT '',
	price INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'proposed',
	full_data_json TEXT NOT NULL,
	preview_html TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

const (
	insertTrip = `INSERT INTO trips (id, destination, hotel_name, price, status, full_data_json, preview_html, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	selectTrip    = `SELECT id, destination, hotel_name, price, status, full_data_json, preview_html, created_at FROM trips`
	orderByNewest = ` ORDER BY created_at DESC`
)

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func OpenPostgres(cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// tripDocument is the JSON kept in full_data_json.
type tripDocument struct {
	FormData   types.Answers `json:"form_data"`
	Enrichment Enrichment    `json:"enriched_data"`
}

type PostgresTripStore struct {
	db *sql.DB
}

func NewPostgresTripStore(db *sql.DB) *PostgresTripStore {
	return &PostgresTripStore{db: db}
}

func (s *PostgresTripStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTripsTable); err != nil {
		return fmt.Errorf("create trips table failed: %w", err)
	}
	return nil
}

func (s *PostgresTripStore) Save(ctx context.Context, trip *Trip) error {
	doc, err := sonic.MarshalString(tripDocument{FormData: trip.FormData, Enrichment: trip.Enrichment})
	if err != nil {
		return fmt.Errorf("encode trip failed: %w", err)
	}
	_, err = s.db.ExecContext(ctx, insertTrip,
		trip.ID, trip.Destination, trip.HotelName, trip.Price, string(trip.Status), doc, trip.PreviewHTML, trip.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert trip failed: %w", err)
	}
	return nil
}

func (s *PostgresTripStore) Get(ctx context.Context, id string) (*Trip, error) {
	row := s.db.QueryRowContext(ctx, selectTrip+` WHERE id = $1`, id)
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTripNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *PostgresTripStore) List(ctx context.Context, status Status, limit int) ([]*Trip, error) {
	query := selectTrip
	var args []any
	if status != "" {
		args = append(args, string(status))
		query += ` WHERE status = $1`
	}
	query += orderByNewest
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trips failed: %w", err)
	}
	defer rows.Close()

	var out []*Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, trip)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrip(row scanner) (*Trip, error) {
	var (
		trip   Trip
		status string
		doc    string
	)
	if err := row.Scan(&trip.ID, &trip.Destination, &trip.HotelName, &trip.Price, &status, &doc, &trip.PreviewHTML, &trip.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan trip failed: %w", err)
	}
	trip.Status = Status(status)
	var decoded tripDocument
	if err := sonic.UnmarshalString(doc, &decoded); err != nil {
		return nil, fmt.Errorf("decode trip %s failed: %w", trip.ID, err)
	}
	trip.FormData = decoded.FormData
	trip.Enrichment = decoded.Enrichment
	return &trip, nil
}
