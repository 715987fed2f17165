package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SaveMemberRoles replaces the roles remembered for a member. An empty roleIds
// forgets them.
func (d *DB) SaveMemberRoles(ctx context.Context, userId string, roleIds []string) error {
	now := time.Now().Unix()
	err := d.executeAndCommit(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM member_roles WHERE user_id = ?", userId); err != nil {
			return err
		}
		for _, roleId := range roleIds {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO member_roles (user_id, role_id, saved_at) VALUES (?, ?, ?)",
				userId, roleId, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save roles for %s: %w", userId, err)
	}
	return nil
}

// FetchMemberRoles returns the role IDs saved for a member, oldest role first.
func (d *DB) FetchMemberRoles(ctx context.Context, userId string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var roles []string
	err := d.db.SelectContext(ctx, &roles, "SELECT role_id FROM member_roles WHERE user_id = ? ORDER BY rowid", userId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles for %s: %w", userId, err)
	}
	return roles, nil
}
