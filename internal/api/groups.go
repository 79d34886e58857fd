package api

import (
	"net/http"

	"github.com/igokul95/splitzer/internal/middleware"
	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/service"
)

type memberInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type createGroupRequest struct {
	Name            string        `json:"name"`
	DefaultCurrency string        `json:"default_currency"`
	Type            string        `json:"type"`
	SimplifyDebts   bool          `json:"simplify_debts"`
	Members         []memberInput `json:"members"`
}

type groupResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CreatedBy       string `json:"created_by"`
	DefaultCurrency string `json:"default_currency"`
	SimplifyDebts   bool   `json:"simplify_debts"`
	Type            string `json:"type,omitempty"`
	CreatedAt       int64  `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:              g.ID,
		Name:            g.Name,
		CreatedBy:       g.CreatedBy,
		DefaultCurrency: g.DefaultCurrency,
		SimplifyDebts:   g.SimplifyDebts,
		Type:            string(g.Type),
		CreatedAt:       g.CreatedAt,
	}
}

func (api *API) createGroup(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var req createGroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := service.CreateGroupInput{
		Name:            req.Name,
		DefaultCurrency: req.DefaultCurrency,
		Type:            models.GroupType(req.Type),
		SimplifyDebts:   req.SimplifyDebts,
	}
	for _, m := range req.Members {
		in.Members = append(in.Members, service.MemberInput{Name: m.Name, Email: m.Email, Phone: m.Phone})
	}

	group, err := api.groups.CreateGroup(r.Context(), actorID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

type memberBalanceResponse struct {
	UserID   string  `json:"user_id"`
	Name     string  `json:"name"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

type groupSummaryResponse struct {
	Group   groupResponse           `json:"group"`
	YourNet map[string]float64      `json:"your_net"`
	Members []memberBalanceResponse `json:"members"`
}

func (api *API) getMyGroups(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	summaries, err := api.groups.GetMyGroups(r.Context(), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]groupSummaryResponse, len(summaries))
	for i, s := range summaries {
		gr := groupSummaryResponse{Group: toGroupResponse(s.Group), YourNet: s.YourNet}
		for _, m := range s.Members {
			gr.Members = append(gr.Members, memberBalanceResponse{
				UserID:   m.UserID,
				Name:     m.Name,
				Currency: m.Currency,
				Amount:   m.Amount,
			})
		}
		resp[i] = gr
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": resp})
}

func (api *API) getGroup(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	group, err := api.groups.GetGroup(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

type updateGroupRequest struct {
	Name            string `json:"name"`
	DefaultCurrency string `json:"default_currency"`
	Type            string `json:"type"`
	SimplifyDebts   bool   `json:"simplify_debts"`
}

func (api *API) updateGroup(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var req updateGroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group := &models.Group{
		ID:              r.PathValue("id"),
		Name:            req.Name,
		DefaultCurrency: req.DefaultCurrency,
		Type:            models.GroupType(req.Type),
		SimplifyDebts:   req.SimplifyDebts,
	}
	if err := api.groups.UpdateGroup(r.Context(), actorID, group); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (api *API) deleteGroup(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	if err := api.groups.DeleteGroup(r.Context(), actorID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type groupMemberResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	JoinedAt int64  `json:"joined_at,omitempty"`
}

func (api *API) getGroupMembers(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	infos, err := api.groups.GetGroupMembers(r.Context(), viewerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]groupMemberResponse, len(infos))
	for i, info := range infos {
		resp[i] = groupMemberResponse{
			UserID:   info.Member.UserID,
			Name:     info.Name,
			Email:    info.Email,
			Role:     string(info.Member.Role),
			Status:   string(info.Member.Status),
			JoinedAt: info.Member.JoinedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": resp})
}

func (api *API) addGroupMember(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	var req memberInput
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	member, err := api.groups.AddMember(r.Context(), actorID, r.PathValue("id"), service.MemberInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupMemberResponse{
		UserID: member.UserID,
		Role:   string(member.Role),
		Status: string(member.Status),
	})
}

func (api *API) removeGroupMember(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	err := api.groups.RemoveMember(r.Context(), actorID, r.PathValue("id"), r.PathValue("userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (api *API) leaveGroup(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	if err := api.groups.LeaveGroup(r.Context(), actorID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}
