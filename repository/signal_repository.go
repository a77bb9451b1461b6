package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SignalRepository handles startup_signals rows in Postgres
type SignalRepository struct {
	db *pgxpool.Pool
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(db *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{db: db}
}

// Save upserts the payload for (kind, startupID)
func (r *SignalRepository) Save(ctx context.Context, kind SignalKind, startupID string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for %s: %w", kind, startupID, err)
	}

	query := `
		INSERT INTO startup_signals (kind, startup_id, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (kind, startup_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = NOW()`

	if _, err := r.db.Exec(ctx, query, string(kind), startupID, payload); err != nil {
		return fmt.Errorf("failed to save %s for %s: %w", kind, startupID, err)
	}
	return nil
}

// Load decodes the payload for (kind, startupID) into dest
func (r *SignalRepository) Load(ctx context.Context, kind SignalKind, startupID string, dest interface{}) error {
	var payload []byte
	query := `SELECT payload FROM startup_signals WHERE kind = $1 AND startup_id = $2`

	err := r.db.QueryRow(ctx, query, string(kind), startupID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", kind, startupID, ErrNotFound)
		}
		return fmt.Errorf("failed to load %s for %s: %w", kind, startupID, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("failed to decode %s for %s: %w", kind, startupID, err)
	}
	return nil
}

// LoadAll returns every payload of a kind keyed by startup id
func (r *SignalRepository) LoadAll(ctx context.Context, kind SignalKind) (map[string]json.RawMessage, error) {
	query := `SELECT startup_id, payload FROM startup_signals WHERE kind = $1`

	rows, err := r.db.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		out[id] = json.RawMessage(payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", kind, err)
	}
	return out, nil
}

var _ SignalStore = (*SignalRepository)(nil)
