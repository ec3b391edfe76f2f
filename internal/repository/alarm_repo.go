package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"plc_alarm_monitor/internal/models"
)

// timeLayout is the SQLite TIMESTAMP text format. Comparisons on the column
// are lexical, which this layout orders correctly.
const timeLayout = "2006-01-02 15:04:05"

type AlarmSQLite struct {
	db *sql.DB
}

func NewAlarmSQLite(db *sql.DB) *AlarmSQLite { return &AlarmSQLite{db: db} }

var _ AlarmRepo = (*AlarmSQLite)(nil)

const insertAlarmSQL = `
		INSERT INTO alarm_events (occurred_at, alarm_code, alarm_description, plc_id, plc_name, count_value)
		VALUES (?, ?, ?, ?, ?, ?)
	`

const selectAlarmCols = `SELECT id, occurred_at, alarm_code, alarm_description, plc_id, plc_name, count_value FROM alarm_events`

// InsertBatch writes all events in one transaction. If any insert fails the
// transaction is rolled back and no event is persisted.
func (r *AlarmSQLite) InsertBatch(ctx context.Context, events []models.AlarmEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin alarm insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertAlarmSQL)
	if err != nil {
		return fmt.Errorf("prepare alarm insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		ts := e.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := stmt.ExecContext(ctx,
			ts.UTC().Format(timeLayout),
			e.AlarmCode,
			e.AlarmDescription,
			e.PLCID,
			e.PLCName,
			e.CountValue,
		); err != nil {
			return fmt.Errorf("insert alarm %s for plc %s: %w", e.AlarmCode, e.PLCID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alarm insert: %w", err)
	}
	return nil
}

// ListRange returns events in [from, to), newest first. A same-timestamp tie is
// broken by id so ordering within a poll cycle stays insertion-stable.
func (r *AlarmSQLite) ListRange(ctx context.Context, from, to time.Time, plcID string) ([]models.AlarmEvent, error) {
	conds := []string{"occurred_at >= ?", "occurred_at < ?"}
	args := []any{from.UTC().Format(timeLayout), to.UTC().Format(timeLayout)}
	if plcID != "" {
		conds = append(conds, "plc_id = ?")
		args = append(args, plcID)
	}

	q := selectAlarmCols + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY occurred_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanAlarmRows(rows)
}

// Latest returns the most recent events across all time, newest first.
func (r *AlarmSQLite) Latest(ctx context.Context, limit int, plcID string) ([]models.AlarmEvent, error) {
	var args []any
	q := selectAlarmCols
	if plcID != "" {
		q += " WHERE plc_id = ?"
		args = append(args, plcID)
	}
	q += " ORDER BY occurred_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanAlarmRows(rows)
}

func scanAlarmRows(rows *sql.Rows) ([]models.AlarmEvent, error) {
	out := make([]models.AlarmEvent, 0, 64)
	for rows.Next() {
		var ev models.AlarmEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.Timestamp,
			&ev.AlarmCode,
			&ev.AlarmDescription,
			&ev.PLCID,
			&ev.PLCName,
			&ev.CountValue,
		); err != nil {
			return nil, err
		}
		ev.Timestamp = ev.Timestamp.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
