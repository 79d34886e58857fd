// Package balance maintains the derived balance tables. The expense ledger
// is the ground truth; every mutation triggers a full rescan of the affected
// pair's shared expenses rather than an incremental delta, so a recompute is
// always idempotent and self-healing.
package balance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/igokul95/splitzer/internal/calculator"
	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage"
)

// Engine recomputes pairwise and aggregate balances from the expense ledger.
type Engine struct {
	store  storage.Store
	logger *slog.Logger
}

// NewEngine creates a balance engine backed by the given store.
func NewEngine(store storage.Store, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// UpdateForExpense recomputes balances for every user pair touched by an
// expense mutation (create, delete, or settlement). groupID is the expense's
// context; splits are the expense's split rows, used only to discover the
// affected pairs.
func (e *Engine) UpdateForExpense(ctx context.Context, groupID string, splits []models.Split) error {
	timer := prometheusTimer("expense")
	defer timer()
	expenseUpdates.Inc()

	users := distinctUsers(splits)
	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			u1, u2 := calculator.CanonicalPair(users[i], users[j])
			if err := e.recomputeContext(ctx, u1, u2, groupID); err != nil {
				return err
			}
			if err := e.recomputeAggregate(ctx, u1, u2); err != nil {
				return err
			}
		}
	}

	e.logger.Debug("updated balances for expense",
		"group_id", groupID, "users", len(users))
	return nil
}

// RecalcAll rebuilds every derived balance row from scratch. The set of
// (pair, context) combinations to visit is the union of co-participation in
// active expenses and the contexts that already have rows, so stale rows
// whose expenses were all deleted are zeroed out too. Safe to run on a live
// system.
func (e *Engine) RecalcAll(ctx context.Context) error {
	timer := prometheusTimer("full")
	defer timer()
	fullRecalcs.Inc()

	start := time.Now()

	contexts := make(map[storage.PairContext]struct{})

	expenses, err := e.store.ListActiveExpenses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active expenses: %w", err)
	}
	for _, expense := range expenses {
		users := distinctUsers(expense.Splits)
		for i := 0; i < len(users); i++ {
			for j := i + 1; j < len(users); j++ {
				u1, u2 := calculator.CanonicalPair(users[i], users[j])
				contexts[storage.PairContext{User1: u1, User2: u2, GroupID: expense.GroupID}] = struct{}{}
			}
		}
	}

	existing, err := e.store.ListBalanceContexts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list balance contexts: %w", err)
	}
	for _, pc := range existing {
		contexts[pc] = struct{}{}
	}

	pairs := make(map[[2]string]struct{})
	for pc := range contexts {
		if err := e.recomputeContext(ctx, pc.User1, pc.User2, pc.GroupID); err != nil {
			return err
		}
		pairs[[2]string{pc.User1, pc.User2}] = struct{}{}
	}
	for pair := range pairs {
		if err := e.recomputeAggregate(ctx, pair[0], pair[1]); err != nil {
			return err
		}
	}

	e.logger.Info("recalculated all balances",
		"contexts", len(contexts), "pairs", len(pairs),
		"duration", time.Since(start))
	return nil
}

// recomputeContext rebuilds the per-currency rows for one canonical pair in
// one context. The expense universe is every non-deleted expense of the group
// (or every non-group expense both users hold splits in); each contributes
// its pair flow to a per-currency net. Currencies whose rounded net is
// nonzero get their row upserted; currencies that net to zero or no longer
// appear get their row deleted.
func (e *Engine) recomputeContext(ctx context.Context, u1, u2, groupID string) error {
	var expenses []*models.Expense
	var err error
	if groupID != "" {
		expenses, err = e.store.ListGroupExpenses(ctx, groupID)
	} else {
		expenses, err = e.store.ListNonGroupExpensesBetween(ctx, u1, u2)
	}
	if err != nil {
		return fmt.Errorf("failed to load pair expenses: %w", err)
	}

	nets := make(map[string]float64)
	for _, expense := range expenses {
		nets[expense.Currency] += calculator.PairFlow(expense.Splits, u1, u2)
	}

	existing, err := e.store.ListContextBalances(ctx, u1, u2, groupID)
	if err != nil {
		return fmt.Errorf("failed to load context balances: %w", err)
	}

	now := time.Now().Unix()
	for currency, net := range nets {
		amount := calculator.Round2(net)
		if amount == 0 {
			continue
		}
		err := e.store.UpsertBalance(ctx, &models.Balance{
			User1:     u1,
			User2:     u2,
			GroupID:   groupID,
			Currency:  currency,
			Amount:    amount,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
	}

	for _, row := range existing {
		if calculator.Round2(nets[row.Currency]) != 0 {
			continue
		}
		err := e.store.DeleteBalance(ctx, storage.BalanceKey{
			User1:    u1,
			User2:    u2,
			GroupID:  groupID,
			Currency: row.Currency,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// recomputeAggregate rebuilds the single friend-balance row for a pair from
// its context balance rows. The total is a raw sum across currencies with no
// conversion; it is only meaningful single-currency, and per-currency views
// read the context rows instead. The row is always written, even at zero, so
// the pair's last-activity timestamp stays current.
func (e *Engine) recomputeAggregate(ctx context.Context, u1, u2 string) error {
	rows, err := e.store.ListPairBalances(ctx, u1, u2)
	if err != nil {
		return fmt.Errorf("failed to load pair balances: %w", err)
	}

	total := 0.0
	currency := ""
	for _, row := range rows {
		total += row.Amount
		if currency == "" && row.Amount != 0 {
			currency = row.Currency
		}
	}
	if currency == "" && len(rows) > 0 {
		currency = rows[0].Currency
	}
	if currency == "" {
		currency = "USD"
	}

	return e.store.UpsertFriendBalance(ctx, &models.FriendBalance{
		User1:          u1,
		User2:          u2,
		TotalAmount:    calculator.Round2(total),
		Currency:       currency,
		LastActivityAt: time.Now().Unix(),
	})
}

// distinctUsers returns the unique user IDs across a split set, in first
// appearance order.
func distinctUsers(splits []models.Split) []string {
	seen := make(map[string]struct{}, len(splits))
	var users []string
	for _, s := range splits {
		if _, ok := seen[s.UserID]; ok {
			continue
		}
		seen[s.UserID] = struct{}{}
		users = append(users, s.UserID)
	}
	return users
}

// prometheusTimer starts a duration observation for one recompute kind and
// returns the stop function.
func prometheusTimer(kind string) func() {
	start := time.Now()
	return func() {
		recomputeDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}
