package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/igokul95/splitzer/internal/balance"
	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage/sqlite"
)

// testServices bundles the full service stack over one temp database.
type testServices struct {
	store      *sqlite.SQLiteStore
	expenses   *ExpenseService
	groups     *GroupService
	friends    *FriendService
	activities *ActivityService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitzer-service-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := balance.NewEngine(store, logger)

	return &testServices{
		store:      store,
		expenses:   NewExpenseService(store, engine, logger),
		groups:     NewGroupService(store, logger),
		friends:    NewFriendService(store, logger),
		activities: NewActivityService(store, logger),
	}
}

// createUser inserts a user with a fixed ID so tests control canonical pair
// ordering.
func (ts *testServices) createUser(t *testing.T, id, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:              id,
		Name:            name,
		Email:           id + "@example.com",
		DefaultCurrency: "USD",
		Status:          models.UserActive,
		CreatedAt:       1,
	}
	if err := ts.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}
