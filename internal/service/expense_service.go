package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/igokul95/splitzer/internal/balance"
	"github.com/igokul95/splitzer/internal/calculator"
	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage"
)

// splitTolerance is how far the split sums may drift from the expense total
// before the expense is rejected. Two cents absorbs the worst-case rounding
// of independently rounded inputs.
const splitTolerance = 0.02

// settledThreshold is the display cutoff below which a net amount counts as
// settled.
const settledThreshold = 0.005

// ExpenseService handles expense mutations and queries. Every mutation
// triggers a balance recompute for the affected pairs; activity records are
// written best-effort and never roll back the mutation they describe.
type ExpenseService struct {
	store  storage.Store
	engine *balance.Engine
	logger *slog.Logger
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, engine *balance.Engine, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{store: store, engine: engine, logger: logger}
}

// AddExpenseInput carries everything needed to record an expense. Exactly
// one of the method-specific fields matching Method is consulted; Payers is
// set only for multi-payer expenses, otherwise PaidBy covers the full total.
type AddExpenseInput struct {
	GroupID     string
	Description string
	TotalAmount float64
	Currency    string
	Category    string
	Date        int64
	Notes       string

	Method models.SplitMethod
	PaidBy string
	Payers []calculator.Payer

	Participants []calculator.Participant
	ExactAmounts []calculator.ExactAmount
	Percentages  []calculator.Percentage
	Shares       []calculator.Shares
}

// AddExpense validates, persists and applies a new expense. The actor must
// be an active member when a group is targeted. Split sums are checked
// against the total within the split tolerance.
func (s *ExpenseService) AddExpense(ctx context.Context, actorID string, in AddExpenseInput) (*models.Expense, error) {
	if in.TotalAmount <= 0 {
		return nil, validationf("total amount must be positive")
	}
	if in.Currency == "" {
		return nil, validationf("currency is required")
	}
	if in.PaidBy == "" && len(in.Payers) == 0 {
		return nil, validationf("a payer is required")
	}
	if err := s.requireActiveMember(ctx, in.GroupID, actorID); err != nil {
		return nil, err
	}

	computed := computeSplits(in)
	if len(computed) == 0 {
		return nil, validationf("split produced no participants")
	}

	userIDs := make([]string, len(computed))
	for i, sp := range computed {
		userIDs[i] = sp.UserID
	}
	if err := s.requireUsersExist(ctx, userIDs); err != nil {
		return nil, err
	}

	sumPaid, sumOwed := 0.0, 0.0
	for _, sp := range computed {
		sumPaid += sp.PaidAmount
		sumOwed += sp.OwedAmount
	}
	if math.Abs(sumPaid-in.TotalAmount) > splitTolerance {
		return nil, validationf("paid amounts sum to %.2f, expected %.2f", sumPaid, in.TotalAmount)
	}
	if math.Abs(sumOwed-in.TotalAmount) > splitTolerance {
		return nil, validationf("owed amounts sum to %.2f, expected %.2f", sumOwed, in.TotalAmount)
	}

	splits := make([]models.Split, len(computed))
	payerCount := 0
	for i, sp := range computed {
		splits[i] = models.Split{
			UserID:     sp.UserID,
			PaidAmount: sp.PaidAmount,
			OwedAmount: sp.OwedAmount,
		}
		if sp.PaidAmount > 0 {
			payerCount++
		}
	}

	paidBy := in.PaidBy
	if paidBy == "" && len(in.Payers) > 0 {
		paidBy = in.Payers[0].UserID
	}
	date := in.Date
	if date == 0 {
		date = time.Now().Unix()
	}

	expense := &models.Expense{
		GroupID:      in.GroupID,
		PaidBy:       paidBy,
		Description:  in.Description,
		TotalAmount:  in.TotalAmount,
		Currency:     in.Currency,
		Category:     in.Category,
		Date:         date,
		CreatedBy:    actorID,
		SplitMethod:  in.Method,
		IsMultiPayer: len(in.Payers) > 1,
		PayerCount:   payerCount,
		SplitCount:   len(splits),
		Notes:        in.Notes,
	}

	if err := s.store.CreateExpense(ctx, expense, splits); err != nil {
		return nil, fmt.Errorf("failed to persist expense: %w", err)
	}
	expense.Splits = splits

	if err := s.engine.UpdateForExpense(ctx, expense.GroupID, splits); err != nil {
		return nil, fmt.Errorf("failed to update balances: %w", err)
	}

	s.recordExpenseActivity(ctx, models.ActivityExpenseAdded, actorID, expense, splits)
	return expense, nil
}

// DeleteExpense soft-deletes an expense and recomputes the affected
// balances, reversing the expense's contribution. Split rows are retained.
func (s *ExpenseService) DeleteExpense(ctx context.Context, actorID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.IsDeleted {
		return validationf("expense %s is already deleted", expenseID)
	}

	if err := s.store.MarkExpenseDeleted(ctx, expenseID, actorID, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	splits, err := s.store.GetExpenseSplits(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to load splits: %w", err)
	}
	if err := s.engine.UpdateForExpense(ctx, expense.GroupID, splits); err != nil {
		return fmt.Errorf("failed to update balances: %w", err)
	}

	s.recordExpenseActivity(ctx, models.ActivityExpenseDeleted, actorID, expense, splits)
	return nil
}

// SettleUpInput describes a direct payment between two users. PayerID
// defaults to the actor; setting it to the other party records a payment the
// actor received.
type SettleUpInput struct {
	PayerID  string
	ToUserID string
	Amount   float64
	Currency string
	GroupID  string
	Notes    string
}

// SettleUp records a payment as a synthetic settlement expense: the payer
// paid the full amount and owes nothing, the payee owes the full amount and
// paid nothing. The balance engine then zeroes the debt like any other
// expense. The actor must be one of the two parties.
func (s *ExpenseService) SettleUp(ctx context.Context, actorID string, in SettleUpInput) (*models.Expense, error) {
	if in.Amount <= 0 {
		return nil, validationf("settlement amount must be positive")
	}
	payerID := in.PayerID
	if payerID == "" {
		payerID = actorID
	}
	if in.ToUserID == "" || in.ToUserID == payerID {
		return nil, validationf("settlement needs a distinct payer and recipient")
	}
	if actorID != payerID && actorID != in.ToUserID {
		return nil, validationf("settlement must involve the acting user")
	}
	if in.Currency == "" {
		return nil, validationf("currency is required")
	}
	if err := s.requireUsersExist(ctx, []string{payerID, in.ToUserID}); err != nil {
		return nil, err
	}
	if err := s.requireActiveMember(ctx, in.GroupID, actorID); err != nil {
		return nil, err
	}

	amount := calculator.Round2(in.Amount)
	splits := []models.Split{
		{UserID: payerID, PaidAmount: amount, OwedAmount: 0},
		{UserID: in.ToUserID, PaidAmount: 0, OwedAmount: amount},
	}

	expense := &models.Expense{
		GroupID:      in.GroupID,
		PaidBy:       payerID,
		Description:  "Payment",
		TotalAmount:  amount,
		Currency:     in.Currency,
		Date:         time.Now().Unix(),
		CreatedBy:    actorID,
		SplitMethod:  models.SplitExact,
		IsSettlement: true,
		PayerCount:   1,
		SplitCount:   2,
		Notes:        in.Notes,
	}

	if err := s.store.CreateExpense(ctx, expense, splits); err != nil {
		return nil, fmt.Errorf("failed to persist settlement: %w", err)
	}
	expense.Splits = splits

	if err := s.engine.UpdateForExpense(ctx, expense.GroupID, splits); err != nil {
		return nil, fmt.Errorf("failed to update balances: %w", err)
	}

	s.recordExpenseActivity(ctx, models.ActivitySettlement, actorID, expense, splits)
	return expense, nil
}

// RecalcAllBalances rebuilds every derived balance row from the ledger.
func (s *ExpenseService) RecalcAllBalances(ctx context.Context) error {
	return s.engine.RecalcAll(ctx)
}

// Involvement classifies the viewer's position on an expense.
type Involvement string

const (
	InvolvementLent       Involvement = "lent"
	InvolvementOwed       Involvement = "owed"
	InvolvementSettled    Involvement = "settled"
	InvolvementUninvolved Involvement = "uninvolved"
)

// ExpenseDetail is an expense together with how the viewer relates to it.
type ExpenseDetail struct {
	Expense     *models.Expense
	ViewerNet   float64
	Involvement Involvement
}

// classifyViewer computes the viewer's net on the expense and buckets it.
func classifyViewer(expense *models.Expense, viewerID string) (float64, Involvement) {
	for _, sp := range expense.Splits {
		if sp.UserID != viewerID {
			continue
		}
		net := calculator.Round2(sp.Net())
		switch {
		case math.Abs(net) < settledThreshold:
			return 0, InvolvementSettled
		case net > 0:
			return net, InvolvementLent
		default:
			return net, InvolvementOwed
		}
	}
	return 0, InvolvementUninvolved
}

// GetExpenseDetail returns one expense with splits and the viewer's
// classification. Deleted expenses are still returned; the flag is on the
// record.
func (s *ExpenseService) GetExpenseDetail(ctx context.Context, viewerID, expenseID string) (*ExpenseDetail, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	splits, err := s.store.GetExpenseSplits(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load splits: %w", err)
	}
	expense.Splits = splits

	net, involvement := classifyViewer(expense, viewerID)
	return &ExpenseDetail{Expense: expense, ViewerNet: net, Involvement: involvement}, nil
}

// GetGroupExpenses lists a group's non-deleted expenses newest first, each
// classified for the viewer. The viewer must be an active member.
func (s *ExpenseService) GetGroupExpenses(ctx context.Context, viewerID, groupID string) ([]*ExpenseDetail, error) {
	if err := s.requireActiveMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListGroupExpenses(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	details := make([]*ExpenseDetail, len(expenses))
	for i, expense := range expenses {
		net, involvement := classifyViewer(expense, viewerID)
		details[i] = &ExpenseDetail{Expense: expense, ViewerNet: net, Involvement: involvement}
	}
	return details, nil
}

// requireActiveMember checks that the user holds a non-"left" membership in
// the group. A missing group or membership both count as forbidden. The
// non-group context (groupID "") needs no membership.
func (s *ExpenseService) requireActiveMember(ctx context.Context, groupID, userID string) error {
	if groupID == "" {
		return nil
	}
	member, err := s.store.GetGroupMember(ctx, groupID, userID)
	if err != nil {
		return forbiddenf("user %s is not a member of group %s", userID, groupID)
	}
	if !member.IsActive() {
		return forbiddenf("user %s has left group %s", userID, groupID)
	}
	return nil
}

// requireUsersExist rejects any reference to an unknown user ID before it
// can reach the ledger or the balance tables.
func (s *ExpenseService) requireUsersExist(ctx context.Context, ids []string) error {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to look up users: %w", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return validationf("user %q not found", id)
		}
	}
	return nil
}

// computeSplits dispatches to the calculator for the requested method.
func computeSplits(in AddExpenseInput) []calculator.SplitInput {
	switch in.Method {
	case models.SplitEqual:
		return calculator.EqualSplit(in.TotalAmount, in.Participants, in.PaidBy, in.Payers)
	case models.SplitExact:
		return calculator.ExactSplit(in.TotalAmount, in.ExactAmounts, in.PaidBy, in.Payers)
	case models.SplitPercentage:
		return calculator.PercentageSplit(in.TotalAmount, in.Percentages, in.PaidBy, in.Payers)
	case models.SplitShares:
		return calculator.SharesSplit(in.TotalAmount, in.Shares, in.PaidBy, in.Payers)
	default:
		return nil
	}
}

// recordExpenseActivity appends a feed event for an expense mutation. A
// failure is logged and swallowed; activities never roll back the ledger.
func (s *ExpenseService) recordExpenseActivity(ctx context.Context, typ models.ActivityType, actorID string, expense *models.Expense, splits []models.Split) {
	involved := make([]string, 0, len(splits))
	summary := make([]models.SplitSummary, 0, len(splits))
	for _, sp := range splits {
		involved = append(involved, sp.UserID)
		summary = append(summary, models.SplitSummary{
			UserID: sp.UserID,
			Amount: calculator.Round2(-sp.Net()),
		})
	}

	metadata := models.ActivityMetadata{
		Description:  expense.Description,
		TotalAmount:  expense.TotalAmount,
		Currency:     expense.Currency,
		PaidByUserID: expense.PaidBy,
		PayerCount:   expense.PayerCount,
		SplitCount:   expense.SplitCount,
	}
	if payer, err := s.store.GetUserByID(ctx, expense.PaidBy); err == nil {
		metadata.PaidByName = payer.Name
	}
	if typ == models.ActivitySettlement && len(splits) == 2 {
		metadata.SettlementToID = splits[1].UserID
		if payee, err := s.store.GetUserByID(ctx, splits[1].UserID); err == nil {
			metadata.SettlementToName = payee.Name
		}
	}

	activity := &models.Activity{
		Type:            typ,
		ActorID:         actorID,
		GroupID:         expense.GroupID,
		ExpenseID:       expense.ID,
		InvolvedUserIDs: involved,
		Metadata:        metadata,
		SplitSummary:    summary,
	}
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			"type", typ, "expense_id", expense.ID, "error", err)
	}
}
