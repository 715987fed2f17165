package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// XPRecord is one user's accumulated experience.
type XPRecord struct {
	User string `db:"user_id"`
	XP   int64  `db:"xp"`
}

// Rows per INSERT statement, well under sqlite's bound parameter limit.
const xpInsertBatch = 500

// LoadXP returns the whole XP collection in the order it was last saved.
func (d *DB) LoadXP(ctx context.Context) ([]XPRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var records []XPRecord
	if err := d.db.SelectContext(ctx, &records, "SELECT user_id, xp FROM xp ORDER BY rowid"); err != nil {
		return nil, fmt.Errorf("failed to load xp: %w", err)
	}
	return records, nil
}

// SaveXP replaces the stored XP collection with records.
func (d *DB) SaveXP(ctx context.Context, records []XPRecord) error {
	err := d.executeAndCommit(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM xp"); err != nil {
			return err
		}
		for start := 0; start < len(records); start += xpInsertBatch {
			end := min(start+xpInsertBatch, len(records))
			if _, err := tx.NamedExecContext(ctx, "INSERT INTO xp (user_id, xp) VALUES (:user_id, :xp)", records[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save xp: %w", err)
	}
	return nil
}
