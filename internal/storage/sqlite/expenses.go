package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage"
)

// CreateExpense persists an expense and its splits in one transaction,
// assigning ID and CreatedAt when unset.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, splits []models.Split) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, paid_by, description, total_amount, currency, category,
		                       date, created_by, split_method, is_settlement, is_multi_payer,
		                       payer_count, split_count, notes, is_deleted, deleted_by, deleted_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '', 0, ?)`,
		expense.ID, expense.GroupID, expense.PaidBy, expense.Description,
		expense.TotalAmount, expense.Currency, expense.Category, expense.Date,
		expense.CreatedBy, string(expense.SplitMethod), boolToInt(expense.IsSettlement),
		boolToInt(expense.IsMultiPayer), expense.PayerCount, expense.SplitCount,
		expense.Notes, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, split := range splits {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, user_id, paid_amount, owed_amount)
			 VALUES (?, ?, ?, ?)`,
			expense.ID, split.UserID, split.PaidAmount, split.OwedAmount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const expenseColumns = `id, group_id, paid_by, description, total_amount, currency, category,
	date, created_by, split_method, is_settlement, is_multi_payer,
	payer_count, split_count, notes, is_deleted, deleted_by, deleted_at, created_at`

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	e := &models.Expense{}
	var method string
	var settlement, multiPayer, deleted int
	err := row.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Description, &e.TotalAmount,
		&e.Currency, &e.Category, &e.Date, &e.CreatedBy, &method, &settlement,
		&multiPayer, &e.PayerCount, &e.SplitCount, &e.Notes, &deleted,
		&e.DeletedBy, &e.DeletedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.SplitMethod = models.SplitMethod(method)
	e.IsSettlement = settlement != 0
	e.IsMultiPayer = multiPayer != 0
	e.IsDeleted = deleted != 0
	return e, nil
}

// GetExpense retrieves an expense by ID, deleted or not, without splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// GetExpenseSplits retrieves all splits of one expense.
func (s *SQLiteStore) GetExpenseSplits(ctx context.Context, expenseID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, paid_amount, owed_amount
		 FROM expense_splits WHERE expense_id = ? ORDER BY user_id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var sp models.Split
		if err := rows.Scan(&sp.ExpenseID, &sp.UserID, &sp.PaidAmount, &sp.OwedAmount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// MarkExpenseDeleted sets the soft-delete flag, actor and timestamp. Split
// rows stay in place.
func (s *SQLiteStore) MarkExpenseDeleted(ctx context.Context, expenseID, deletedBy string, deletedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET is_deleted = 1, deleted_by = ?, deleted_at = ? WHERE id = ?",
		deletedBy, deletedAt, expenseID)
	if err != nil {
		return fmt.Errorf("failed to mark expense deleted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark expense deleted: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// queryExpenses runs an expense query and attaches splits to every result.
func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, e := range expenses {
		splits, err := s.GetExpenseSplits(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		e.Splits = splits
	}
	return expenses, nil
}

// ListGroupExpenses returns all non-deleted expenses of a group, splits
// attached, newest date first.
func (s *SQLiteStore) ListGroupExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? AND group_id != '' AND is_deleted = 0 ORDER BY date DESC",
		groupID)
}

// ListNonGroupExpensesBetween returns all non-deleted non-group expenses
// where both users hold a split. This walks user1's splits and joins back to
// the expense; there is deliberately no composite index for it.
func (s *SQLiteStore) ListNonGroupExpensesBetween(ctx context.Context, user1, user2 string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE group_id = '' AND is_deleted = 0
		   AND id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?)
		   AND id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?)`,
		user1, user2)
}

// ListSharedExpenses returns all non-deleted expenses in any context where
// both users hold a split, newest date first.
func (s *SQLiteStore) ListSharedExpenses(ctx context.Context, user1, user2 string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE is_deleted = 0
		   AND id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?)
		   AND id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?)
		 ORDER BY date DESC`,
		user1, user2)
}

// ListActiveExpenses returns every non-deleted expense with splits attached.
func (s *SQLiteStore) ListActiveExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE is_deleted = 0")
}
