// Package api exposes the HTTP REST/JSON surface. Handlers stay thin:
// decode, call the service, map sentinel errors to status codes, encode.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/igokul95/splitzer/internal/auth"
	"github.com/igokul95/splitzer/internal/middleware"
	"github.com/igokul95/splitzer/internal/service"
	"github.com/igokul95/splitzer/internal/storage"
	"github.com/igokul95/splitzer/pkg/ocr"
)

// API holds the service stack behind the HTTP surface.
type API struct {
	auth       *service.AuthService
	expenses   *service.ExpenseService
	groups     *service.GroupService
	friends    *service.FriendService
	activities *service.ActivityService
	scanner    *ocr.Client
	jwt        *auth.JWTManager
	logger     *slog.Logger
}

// New creates the API over the given services. scanner may be nil-configured;
// the scan endpoint then returns 503.
func New(
	authSvc *service.AuthService,
	expenses *service.ExpenseService,
	groups *service.GroupService,
	friends *service.FriendService,
	activities *service.ActivityService,
	scanner *ocr.Client,
	jwtManager *auth.JWTManager,
	logger *slog.Logger,
) *API {
	return &API{
		auth:       authSvc,
		expenses:   expenses,
		groups:     groups,
		friends:    friends,
		activities: activities,
		scanner:    scanner,
		jwt:        jwtManager,
		logger:     logger,
	}
}

// Handler builds the full route table. Everything under /api except auth is
// behind RequireAuth; /metrics and /healthz are open.
func (api *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", api.register)
	mux.HandleFunc("POST /api/auth/login", api.login)

	authed := http.NewServeMux()
	authed.HandleFunc("POST /api/expenses", api.addExpense)
	authed.HandleFunc("GET /api/expenses/{id}", api.getExpense)
	authed.HandleFunc("DELETE /api/expenses/{id}", api.deleteExpense)
	authed.HandleFunc("POST /api/settle", api.settleUp)

	authed.HandleFunc("GET /api/groups", api.getMyGroups)
	authed.HandleFunc("POST /api/groups", api.createGroup)
	authed.HandleFunc("GET /api/groups/{id}", api.getGroup)
	authed.HandleFunc("PUT /api/groups/{id}", api.updateGroup)
	authed.HandleFunc("DELETE /api/groups/{id}", api.deleteGroup)
	authed.HandleFunc("GET /api/groups/{id}/members", api.getGroupMembers)
	authed.HandleFunc("POST /api/groups/{id}/members", api.addGroupMember)
	authed.HandleFunc("DELETE /api/groups/{id}/members/{userID}", api.removeGroupMember)
	authed.HandleFunc("POST /api/groups/{id}/leave", api.leaveGroup)
	authed.HandleFunc("GET /api/groups/{id}/expenses", api.getGroupExpenses)

	authed.HandleFunc("GET /api/friends", api.getFriends)
	authed.HandleFunc("GET /api/friends/{id}", api.getFriendDetail)
	authed.HandleFunc("GET /api/activity", api.getMyActivities)

	authed.HandleFunc("POST /api/receipts/scan", api.scanReceipt)
	authed.HandleFunc("POST /api/maintenance/recalc", api.recalcBalances)

	mux.Handle("/api/", middleware.RequireAuth(api.jwt)(authed))

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return middleware.Logging(mux)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes data with content-type application/json.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// writeError maps service and storage sentinels to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrEmailExists):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode parses a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return service.ErrValidation
	}
	return nil
}
