package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage"
)

// UpsertBalance writes the single derived row for (pair, context, currency).
func (s *SQLiteStore) UpsertBalance(ctx context.Context, b *models.Balance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO balances (user1, user2, group_id, currency, amount, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user1, user2, group_id, currency)
		 DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		b.User1, b.User2, b.GroupID, b.Currency, b.Amount, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %w", err)
	}
	return nil
}

// DeleteBalance removes one derived row. Deleting a missing row is a no-op.
func (s *SQLiteStore) DeleteBalance(ctx context.Context, key storage.BalanceKey) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM balances WHERE user1 = ? AND user2 = ? AND group_id = ? AND currency = ?",
		key.User1, key.User2, key.GroupID, key.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to delete balance: %w", err)
	}
	return nil
}

const balanceColumns = "user1, user2, group_id, currency, amount, updated_at"

func (s *SQLiteStore) queryBalances(ctx context.Context, query string, args ...any) ([]*models.Balance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var balances []*models.Balance
	for rows.Next() {
		b := &models.Balance{}
		if err := rows.Scan(&b.User1, &b.User2, &b.GroupID, &b.Currency, &b.Amount, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return balances, nil
}

// ListContextBalances returns the per-currency rows for a pair in one
// context.
func (s *SQLiteStore) ListContextBalances(ctx context.Context, user1, user2, groupID string) ([]*models.Balance, error) {
	return s.queryBalances(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE user1 = ? AND user2 = ? AND group_id = ? ORDER BY currency",
		user1, user2, groupID)
}

// ListPairBalances returns every row for a pair across all contexts, in
// insertion-stable (context, currency) order.
func (s *SQLiteStore) ListPairBalances(ctx context.Context, user1, user2 string) ([]*models.Balance, error) {
	return s.queryBalances(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE user1 = ? AND user2 = ? ORDER BY group_id, currency",
		user1, user2)
}

// ListUserBalances returns every row where the user appears on either side.
func (s *SQLiteStore) ListUserBalances(ctx context.Context, userID string) ([]*models.Balance, error) {
	return s.queryBalances(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE user1 = ? OR user2 = ?",
		userID, userID)
}

// ListGroupBalances returns every row within one group.
func (s *SQLiteStore) ListGroupBalances(ctx context.Context, groupID string) ([]*models.Balance, error) {
	return s.queryBalances(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE group_id = ? AND group_id != ''",
		groupID)
}

// ListBalanceContexts returns the distinct (pair, context) combinations that
// currently have derived rows.
func (s *SQLiteStore) ListBalanceContexts(ctx context.Context) ([]storage.PairContext, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT user1, user2, group_id FROM balances")
	if err != nil {
		return nil, fmt.Errorf("failed to list balance contexts: %w", err)
	}
	defer rows.Close()

	var contexts []storage.PairContext
	for rows.Next() {
		var pc storage.PairContext
		if err := rows.Scan(&pc.User1, &pc.User2, &pc.GroupID); err != nil {
			return nil, fmt.Errorf("failed to scan balance context: %w", err)
		}
		contexts = append(contexts, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance contexts: %w", err)
	}
	return contexts, nil
}

// UpsertFriendBalance writes the single aggregate row for a pair.
func (s *SQLiteStore) UpsertFriendBalance(ctx context.Context, fb *models.FriendBalance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friend_balances (user1, user2, total_amount, currency, last_activity_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user1, user2)
		 DO UPDATE SET total_amount = excluded.total_amount, currency = excluded.currency,
		               last_activity_at = excluded.last_activity_at`,
		fb.User1, fb.User2, fb.TotalAmount, fb.Currency, fb.LastActivityAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert friend balance: %w", err)
	}
	return nil
}

// GetFriendBalance returns the aggregate row for a pair.
func (s *SQLiteStore) GetFriendBalance(ctx context.Context, user1, user2 string) (*models.FriendBalance, error) {
	fb := &models.FriendBalance{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user1, user2, total_amount, currency, last_activity_at
		 FROM friend_balances WHERE user1 = ? AND user2 = ?`,
		user1, user2,
	).Scan(&fb.User1, &fb.User2, &fb.TotalAmount, &fb.Currency, &fb.LastActivityAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("friend balance %s/%s: %w", user1, user2, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend balance: %w", err)
	}
	return fb, nil
}

// ListUserFriendBalances returns every aggregate row where the user appears
// on either side.
func (s *SQLiteStore) ListUserFriendBalances(ctx context.Context, userID string) ([]*models.FriendBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user1, user2, total_amount, currency, last_activity_at
		 FROM friend_balances WHERE user1 = ? OR user2 = ?`,
		userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend balances: %w", err)
	}
	defer rows.Close()

	var balances []*models.FriendBalance
	for rows.Next() {
		fb := &models.FriendBalance{}
		if err := rows.Scan(&fb.User1, &fb.User2, &fb.TotalAmount, &fb.Currency, &fb.LastActivityAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend balance: %w", err)
		}
		balances = append(balances, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend balances: %w", err)
	}
	return balances, nil
}
