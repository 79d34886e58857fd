package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/igokul95/splitzer/internal/auth"
	"github.com/igokul95/splitzer/internal/balance"
	"github.com/igokul95/splitzer/internal/service"
	"github.com/igokul95/splitzer/internal/storage/sqlite"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	dir, err := os.MkdirTemp("", "splitzer-api-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := balance.NewEngine(store, logger)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, logger)

	api := New(
		authSvc,
		service.NewExpenseService(store, engine, logger),
		service.NewGroupService(store, logger),
		service.NewFriendService(store, logger),
		service.NewActivityService(store, logger),
		nil, // no scan service configured
		jwtManager,
		logger,
	)
	return api.Handler()
}

// doJSON issues a request with an optional bearer token and JSON body, and
// decodes the response into out when out is non-nil.
func doJSON(t *testing.T, h http.Handler, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, path, err)
		}
	}
	return rec
}

func registerUser(t *testing.T, h http.Handler, email, name string) sessionResponse {
	t.Helper()

	var session sessionResponse
	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", registerRequest{
		Email:    email,
		Name:     name,
		Password: "correct horse battery",
	}, &session)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s returned %d: %s", email, rec.Code, rec.Body.String())
	}
	return session
}

func TestAuthEndpoints(t *testing.T) {
	h := newTestHandler(t)

	session := registerUser(t, h, "alice@example.com", "Alice")
	if session.Token == "" || session.UserID == "" {
		t.Fatalf("expected token and user id, got %+v", session)
	}

	t.Run("login", func(t *testing.T) {
		var got sessionResponse
		rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", loginRequest{
			Email:    "alice@example.com",
			Password: "correct horse battery",
		}, &got)
		if rec.Code != http.StatusOK {
			t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
		}
		if got.UserID != session.UserID {
			t.Errorf("expected user %s, got %s", session.UserID, got.UserID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", loginRequest{
			Email:    "alice@example.com",
			Password: "nope",
		}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", registerRequest{
			Email:    "alice@example.com",
			Name:     "Imposter",
			Password: "another password",
		}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing token rejected", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/groups", "", nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/groups", "not-a-jwt", nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestExpenseLifecycleOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	alice := registerUser(t, h, "alice@example.com", "Alice")
	bob := registerUser(t, h, "bob@example.com", "Bob")

	var group groupResponse
	rec := doJSON(t, h, http.MethodPost, "/api/groups", alice.Token, createGroupRequest{
		Name:            "Trip",
		DefaultCurrency: "USD",
		Members:         []memberInput{{Name: "Bob", Email: "bob@example.com"}},
	}, &group)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group returned %d: %s", rec.Code, rec.Body.String())
	}

	var expense expenseResponse
	rec = doJSON(t, h, http.MethodPost, "/api/expenses", alice.Token, addExpenseRequest{
		GroupID:     group.ID,
		Description: "Hotel",
		TotalAmount: 60,
		Currency:    "USD",
		Method:      "equal",
		PaidBy:      alice.UserID,
		Participants: []participantInput{
			{UserID: alice.UserID, Included: true},
			{UserID: bob.UserID, Included: true},
		},
	}, &expense)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add expense returned %d: %s", rec.Code, rec.Body.String())
	}
	if expense.ViewerNet != 30 || expense.Involvement != "lent" {
		t.Errorf("expected viewer lent 30, got net %.2f involvement %q", expense.ViewerNet, expense.Involvement)
	}

	t.Run("borrower sees the debt", func(t *testing.T) {
		var got expenseResponse
		rec := doJSON(t, h, http.MethodGet, "/api/expenses/"+expense.ID, bob.Token, nil, &got)
		if rec.Code != http.StatusOK {
			t.Fatalf("get expense returned %d: %s", rec.Code, rec.Body.String())
		}
		if got.ViewerNet != -30 || got.Involvement != "owed" {
			t.Errorf("expected viewer owes 30, got net %.2f involvement %q", got.ViewerNet, got.Involvement)
		}
	})

	t.Run("friends list reflects the balance", func(t *testing.T) {
		var got struct {
			Friends []friendResponse `json:"friends"`
		}
		rec := doJSON(t, h, http.MethodGet, "/api/friends", bob.Token, nil, &got)
		if rec.Code != http.StatusOK {
			t.Fatalf("get friends returned %d: %s", rec.Code, rec.Body.String())
		}
		if len(got.Friends) != 1 {
			t.Fatalf("expected 1 friend, got %d", len(got.Friends))
		}
		f := got.Friends[0]
		if f.UserID != alice.UserID || f.NetAmount != -30 {
			t.Errorf("expected to owe %s 30, got %+v", alice.UserID, f)
		}
	})

	t.Run("group summary shows the viewer position", func(t *testing.T) {
		var got struct {
			Groups []groupSummaryResponse `json:"groups"`
		}
		rec := doJSON(t, h, http.MethodGet, "/api/groups", alice.Token, nil, &got)
		if rec.Code != http.StatusOK {
			t.Fatalf("get groups returned %d: %s", rec.Code, rec.Body.String())
		}
		if len(got.Groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(got.Groups))
		}
		if net := got.Groups[0].YourNet["USD"]; net != 30 {
			t.Errorf("expected net 30 USD, got %.2f", net)
		}
	})

	t.Run("settle up clears the debt", func(t *testing.T) {
		// Alice records receiving Bob's payment in cash.
		var settlement expenseResponse
		rec := doJSON(t, h, http.MethodPost, "/api/settle", alice.Token, settleUpRequest{
			GroupID:  group.ID,
			PayerID:  bob.UserID,
			ToUserID: alice.UserID,
			Amount:   30,
			Currency: "USD",
		}, &settlement)
		if rec.Code != http.StatusCreated {
			t.Fatalf("settle returned %d: %s", rec.Code, rec.Body.String())
		}
		if settlement.PaidBy != bob.UserID {
			t.Errorf("expected payer %s, got %s", bob.UserID, settlement.PaidBy)
		}

		var got struct {
			Friends []friendResponse `json:"friends"`
			Hidden  []friendResponse `json:"hidden"`
		}
		doJSON(t, h, http.MethodGet, "/api/friends", bob.Token, nil, &got)
		for _, f := range append(got.Friends, got.Hidden...) {
			if f.UserID == alice.UserID && f.NetAmount != 0 {
				t.Errorf("expected settled balance, got %.2f", f.NetAmount)
			}
		}
	})

	t.Run("activity feed recorded", func(t *testing.T) {
		var got struct {
			Activities []activityResponse `json:"activities"`
		}
		rec := doJSON(t, h, http.MethodGet, "/api/activity", bob.Token, nil, &got)
		if rec.Code != http.StatusOK {
			t.Fatalf("get activity returned %d: %s", rec.Code, rec.Body.String())
		}
		types := make(map[string]bool)
		for _, a := range got.Activities {
			types[a.Type] = true
		}
		for _, want := range []string{"group_created", "expense_added", "settlement"} {
			if !types[want] {
				t.Errorf("expected a %s activity, feed was %v", want, types)
			}
		}
	})
}

func TestErrorMapping(t *testing.T) {
	h := newTestHandler(t)
	alice := registerUser(t, h, "alice@example.com", "Alice")

	t.Run("unknown expense is 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/expenses/no-such-id", alice.Token, nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("invalid expense is 400", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/expenses", alice.Token, addExpenseRequest{
			Description: "bad",
			TotalAmount: -5,
			Currency:    "USD",
			Method:      "equal",
			PaidBy:      alice.UserID,
		}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("foreign group is 403", func(t *testing.T) {
		mallory := registerUser(t, h, "mallory@example.com", "Mallory")

		var group groupResponse
		doJSON(t, h, http.MethodPost, "/api/groups", alice.Token, createGroupRequest{
			Name:            "Private",
			DefaultCurrency: "USD",
		}, &group)

		rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/groups/%s/expenses", group.ID), mallory.Token, nil, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("scan without config is 503", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/receipts/scan", alice.Token, nil, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}
