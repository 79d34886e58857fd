package api

import (
	"net/http"

	"github.com/igokul95/splitzer/internal/middleware"
	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/service"
)

type currencyTotalResponse struct {
	Currency   string  `json:"currency"`
	YouOwe     float64 `json:"you_owe"`
	YouAreOwed float64 `json:"you_are_owed"`
}

type friendGroupBalanceResponse struct {
	GroupID   string  `json:"group_id"`
	GroupName string  `json:"group_name"`
	Currency  string  `json:"currency"`
	Amount    float64 `json:"amount"`
}

type friendResponse struct {
	UserID         string                       `json:"user_id"`
	Name           string                       `json:"name"`
	NetAmount      float64                      `json:"net_amount"`
	Currency       string                       `json:"currency"`
	Totals         []currencyTotalResponse      `json:"totals"`
	Groups         []friendGroupBalanceResponse `json:"groups,omitempty"`
	LastActivityAt int64                        `json:"last_activity_at,omitempty"`
}

func toFriendResponse(f *service.Friend) friendResponse {
	resp := friendResponse{
		UserID:         f.UserID,
		Name:           f.Name,
		NetAmount:      f.NetAmount,
		Currency:       f.Currency,
		Totals:         []currencyTotalResponse{},
		LastActivityAt: f.LastActivityAt,
	}
	for _, t := range f.Totals {
		resp.Totals = append(resp.Totals, currencyTotalResponse{
			Currency:   t.Currency,
			YouOwe:     t.YouOwe,
			YouAreOwed: t.YouAreOwed,
		})
	}
	for _, g := range f.Groups {
		resp.Groups = append(resp.Groups, friendGroupBalanceResponse{
			GroupID:   g.GroupID,
			GroupName: g.GroupName,
			Currency:  g.Currency,
			Amount:    g.Amount,
		})
	}
	return resp
}

func (api *API) getFriends(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	result, err := api.friends.GetFriends(r.Context(), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	visible := make([]friendResponse, len(result.Visible))
	for i, f := range result.Visible {
		visible[i] = toFriendResponse(f)
	}
	hidden := make([]friendResponse, len(result.Hidden))
	for i, f := range result.Hidden {
		hidden[i] = toFriendResponse(f)
	}
	writeJSON(w, http.StatusOK, map[string]any{"friends": visible, "hidden": hidden})
}

type friendDetailResponse struct {
	Friend         friendResponse    `json:"friend"`
	SharedExpenses []expenseResponse `json:"shared_expenses"`
}

func (api *API) getFriendDetail(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	detail, err := api.friends.GetFriendDetail(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := friendDetailResponse{
		Friend:         toFriendResponse(detail.Friend),
		SharedExpenses: []expenseResponse{},
	}
	for _, d := range detail.SharedExpenses {
		resp.SharedExpenses = append(resp.SharedExpenses, toExpenseResponse(d.Expense, d.ViewerNet, d.Involvement))
	}
	writeJSON(w, http.StatusOK, resp)
}

type activityResponse struct {
	ID           string                  `json:"id"`
	Type         string                  `json:"type"`
	ActorID      string                  `json:"actor_id"`
	GroupID      string                  `json:"group_id,omitempty"`
	ExpenseID    string                  `json:"expense_id,omitempty"`
	Metadata     models.ActivityMetadata `json:"metadata"`
	SplitSummary []models.SplitSummary   `json:"split_summary,omitempty"`
	CreatedAt    int64                   `json:"created_at"`
}

func (api *API) getMyActivities(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	activities, err := api.activities.GetMyActivities(r.Context(), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]activityResponse, len(activities))
	for i, a := range activities {
		resp[i] = activityResponse{
			ID:           a.ID,
			Type:         string(a.Type),
			ActorID:      a.ActorID,
			GroupID:      a.GroupID,
			ExpenseID:    a.ExpenseID,
			Metadata:     a.Metadata,
			SplitSummary: a.SplitSummary,
			CreatedAt:    a.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": resp})
}

// maxReceiptSize caps receipt uploads at 10 MiB.
const maxReceiptSize = 10 << 20

func (api *API) scanReceipt(w http.ResponseWriter, r *http.Request) {
	if !api.scanner.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "receipt scanning is not configured"})
		return
	}

	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		writeError(w, service.ErrValidation)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, service.ErrValidation)
		return
	}
	defer file.Close()

	receipt, err := api.scanner.ScanReceipt(r.Context(), file, header.Filename)
	if err != nil {
		api.logger.Error("receipt scan failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "scan service failed"})
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
