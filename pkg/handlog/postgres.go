package handlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"holdem-server/pkg/db"
	"holdem-server/pkg/holdem"
)

const entryColumns = `
hand_events.id,
hand_events.table_id,
hand_events.hand_id,
hand_events.event_type,
hand_events.table_version,
hand_events.seq,
hand_events.action,
hand_events.result,
hand_events.snapshot,
hand_events.created`

// PostgresLog stores events in the hand_events table
type PostgresLog struct {
	db *sql.DB
}

// NewPostgresLog returns a log using the database
func NewPostgresLog(db *sql.DB) *PostgresLog {
	return &PostgresLog{db: db}
}

// Append records the entries in a single transaction
func (p *PostgresLog) Append(ctx context.Context, entries ...Entry) error {
	const query = `
INSERT INTO hand_events (id, table_id, hand_id, event_type, table_version, seq, action, result, snapshot, created)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, e := range entries {
		action, err := nullableJSON(e.Action != nil, e.Action)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		result, err := nullableJSON(e.Result != nil, e.Result)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		snapshot, err := json.Marshal(e.Snapshot)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		if _, err := tx.ExecContext(ctx, query, e.ID, e.TableID, e.HandID, string(e.Type), e.Version, e.Seq, action, result, string(snapshot), e.CreatedAt); err != nil {
			_ = tx.Rollback()
			if db.IsDuplicateKey(err) {
				return ErrDuplicateEvent
			}

			return fmt.Errorf("could not append hand event: %w", err)
		}
	}

	return tx.Commit()
}

// List returns the entries in commit order
func (p *PostgresLog) List(ctx context.Context, tableID, handID string) ([]Entry, error) {
	const query = `
SELECT ` + entryColumns + `
FROM hand_events
WHERE table_id = $1 AND ($2 = '' OR hand_id = $2)
ORDER BY table_version, seq`

	rows, err := p.db.QueryContext(ctx, query, tableID, handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := getEntryByRow(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

// Latest returns the most recent entry
func (p *PostgresLog) Latest(ctx context.Context, tableID string) (*Entry, error) {
	const query = `
SELECT ` + entryColumns + `
FROM hand_events
WHERE table_id = $1
ORDER BY table_version DESC, seq DESC
LIMIT 1`

	e, err := getEntryByRow(p.db.QueryRowContext(ctx, query, tableID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoEvents
	}

	return e, err
}

func getEntryByRow(row db.Scanner) (*Entry, error) {
	var e Entry
	var eventType string
	var action, result []byte
	var snapshot []byte

	if err := row.Scan(&e.ID, &e.TableID, &e.HandID, &eventType, &e.Version, &e.Seq, &action, &result, &snapshot, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.Type = holdem.EventType(eventType)

	if action != nil {
		if err := json.Unmarshal(action, &e.Action); err != nil {
			return nil, err
		}
	}

	if result != nil {
		if err := json.Unmarshal(result, &e.Result); err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(snapshot, &e.Snapshot); err != nil {
		return nil, err
	}

	return &e, nil
}

func nullableJSON(present bool, v interface{}) (interface{}, error) {
	if !present {
		return nil, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}
