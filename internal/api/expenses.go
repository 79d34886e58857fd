package api

import (
	"net/http"

	"github.com/igokul95/splitzer/internal/calculator"
	"github.com/igokul95/splitzer/internal/middleware"
	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/service"
)

type payerInput struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
}

type participantInput struct {
	UserID   string `json:"user_id"`
	Included bool   `json:"included"`
}

type amountInput struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
}

type addExpenseRequest struct {
	GroupID     string  `json:"group_id"`
	Description string  `json:"description"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Date        int64   `json:"date"`
	Notes       string  `json:"notes"`

	Method string       `json:"split_method"`
	PaidBy string       `json:"paid_by"`
	Payers []payerInput `json:"payers"`

	Participants []participantInput `json:"participants"`
	ExactAmounts []amountInput      `json:"exact_amounts"`
	Percentages  []amountInput      `json:"percentages"`
	Shares       []amountInput      `json:"shares"`
}

type splitResponse struct {
	UserID     string  `json:"user_id"`
	PaidAmount float64 `json:"paid_amount"`
	OwedAmount float64 `json:"owed_amount"`
}

type expenseResponse struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"group_id,omitempty"`
	PaidBy       string          `json:"paid_by"`
	Description  string          `json:"description"`
	TotalAmount  float64         `json:"total_amount"`
	Currency     string          `json:"currency"`
	Category     string          `json:"category,omitempty"`
	Date         int64           `json:"date"`
	SplitMethod  string          `json:"split_method"`
	IsSettlement bool            `json:"is_settlement"`
	IsDeleted    bool            `json:"is_deleted"`
	Notes        string          `json:"notes,omitempty"`
	Splits       []splitResponse `json:"splits,omitempty"`
	ViewerNet    float64         `json:"viewer_net"`
	Involvement  string          `json:"involvement,omitempty"`
}

func toExpenseResponse(expense *models.Expense, viewerNet float64, involvement service.Involvement) expenseResponse {
	resp := expenseResponse{
		ID:           expense.ID,
		GroupID:      expense.GroupID,
		PaidBy:       expense.PaidBy,
		Description:  expense.Description,
		TotalAmount:  expense.TotalAmount,
		Currency:     expense.Currency,
		Category:     expense.Category,
		Date:         expense.Date,
		SplitMethod:  string(expense.SplitMethod),
		IsSettlement: expense.IsSettlement,
		IsDeleted:    expense.IsDeleted,
		Notes:        expense.Notes,
		ViewerNet:    viewerNet,
		Involvement:  string(involvement),
	}
	for _, sp := range expense.Splits {
		resp.Splits = append(resp.Splits, splitResponse{
			UserID:     sp.UserID,
			PaidAmount: sp.PaidAmount,
			OwedAmount: sp.OwedAmount,
		})
	}
	return resp
}

func (api *API) addExpense(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var req addExpenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := service.AddExpenseInput{
		GroupID:     req.GroupID,
		Description: req.Description,
		TotalAmount: req.TotalAmount,
		Currency:    req.Currency,
		Category:    req.Category,
		Date:        req.Date,
		Notes:       req.Notes,
		Method:      models.SplitMethod(req.Method),
		PaidBy:      req.PaidBy,
	}
	for _, p := range req.Payers {
		in.Payers = append(in.Payers, calculator.Payer{UserID: p.UserID, Amount: p.Amount})
	}
	for _, p := range req.Participants {
		in.Participants = append(in.Participants, calculator.Participant{UserID: p.UserID, Included: p.Included})
	}
	for _, a := range req.ExactAmounts {
		in.ExactAmounts = append(in.ExactAmounts, calculator.ExactAmount{UserID: a.UserID, Amount: a.Amount})
	}
	for _, a := range req.Percentages {
		in.Percentages = append(in.Percentages, calculator.Percentage{UserID: a.UserID, Percentage: a.Amount})
	}
	for _, a := range req.Shares {
		in.Shares = append(in.Shares, calculator.Shares{UserID: a.UserID, Shares: a.Amount})
	}

	expense, err := api.expenses.AddExpense(r.Context(), actorID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	net, involvement := 0.0, service.InvolvementUninvolved
	if detail, err := api.expenses.GetExpenseDetail(r.Context(), actorID, expense.ID); err == nil {
		net, involvement = detail.ViewerNet, detail.Involvement
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense, net, involvement))
}

func (api *API) getExpense(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	detail, err := api.expenses.GetExpenseDetail(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(detail.Expense, detail.ViewerNet, detail.Involvement))
}

func (api *API) deleteExpense(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	if err := api.expenses.DeleteExpense(r.Context(), actorID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type settleUpRequest struct {
	PayerID  string  `json:"payer_id"` // defaults to the authenticated user
	ToUserID string  `json:"to_user_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	GroupID  string  `json:"group_id"`
	Notes    string  `json:"notes"`
}

func (api *API) settleUp(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var req settleUpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	expense, err := api.expenses.SettleUp(r.Context(), actorID, service.SettleUpInput{
		PayerID:  req.PayerID,
		ToUserID: req.ToUserID,
		Amount:   req.Amount,
		Currency: req.Currency,
		GroupID:  req.GroupID,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense, 0, service.InvolvementSettled))
}

func (api *API) getGroupExpenses(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	details, err := api.expenses.GetGroupExpenses(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]expenseResponse, len(details))
	for i, d := range details {
		resp[i] = toExpenseResponse(d.Expense, d.ViewerNet, d.Involvement)
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": resp})
}

func (api *API) recalcBalances(w http.ResponseWriter, r *http.Request) {
	if err := api.expenses.RecalcAllBalances(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recalculated"})
}
