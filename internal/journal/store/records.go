package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/models"
)

const maxRecordRows = 1000000

// StoreRecord persists one chained record.
func (db *DB) StoreRecord(rec *models.Record) error {
	if err := assert.NotNil(rec, "record"); err != nil {
		return err
	}
	if err := assert.Check(rec.ID != "", "record id must not be empty"); err != nil {
		return err
	}
	if err := assert.Check(rec.RunID != "", "run id must not be empty"); err != nil {
		return err
	}
	if err := assert.Check(rec.Hash != "", "hash must not be empty"); err != nil {
		return err
	}

	res, err := db.conn.Exec(`
		INSERT INTO records (
			id, run_id, seq, timestamp, actor, op, value, outcome, depth, capacity, prev_hash, hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Seq, rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Actor, rec.Op, rec.Value, rec.Outcome, rec.Depth, rec.Capacity, rec.PrevHash, rec.Hash,
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil || rows != 1 {
		return fmt.Errorf("failed to insert record: rows affected = %d", rows)
	}
	return nil
}

// LastRecord returns the chain head of a run. hash is "" when the run has no records.
func (db *DB) LastRecord(runID string) (seq uint64, hash string, err error) {
	if err := assert.Check(runID != "", "runID must not be empty"); err != nil {
		return 0, "", err
	}
	err = db.conn.QueryRow(
		`SELECT seq, hash FROM records WHERE run_id = ? ORDER BY seq DESC LIMIT 1`, runID,
	).Scan(&seq, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("querying last record: %w", err)
	}
	return seq, hash, nil
}

// Records returns every record of a run ordered by sequence.
func (db *DB) Records(runID string) (records []models.Record, err error) {
	if err := assert.Check(runID != "", "runID must not be empty"); err != nil {
		return nil, err
	}
	rows, err := db.conn.Query(`
		SELECT id, run_id, seq, timestamp, actor, op, value, outcome, depth, capacity, prev_hash, hash
		FROM records
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing records rows: %w", closeErr)
		}
	}()

	for i := 0; i < maxRecordRows; i++ {
		if !rows.Next() {
			break
		}
		var r models.Record
		var timestamp string
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.Seq, &timestamp, &r.Actor, &r.Op, &r.Value,
			&r.Outcome, &r.Depth, &r.Capacity, &r.PrevHash, &r.Hash,
		); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp of record %s: %w", r.ID, err)
		}
		r.Timestamp = t
		records = append(records, r)
	}
	if err := assert.Check(rows.Err() == nil, "records rows error: %v", rows.Err()); err != nil {
		return nil, err
	}
	return records, nil
}
