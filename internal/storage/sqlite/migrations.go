package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// group_id is stored as '' (never NULL) for the non-group context so it can
// participate in primary keys and equality filters. Booleans are 0/1
// integers. Balance and friend_balance rows are derived state, fully
// reconstructible from expenses + expense_splits.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL DEFAULT '',
    default_currency TEXT NOT NULL,
    status TEXT NOT NULL,
    invited_by TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_by TEXT NOT NULL,
    default_currency TEXT NOT NULL,
    simplify_debts INTEGER NOT NULL DEFAULT 0,
    type TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL,
    status TEXT NOT NULL,
    invited_by TEXT NOT NULL DEFAULT '',
    joined_at INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (group_id, user_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL DEFAULT '',
    paid_by TEXT NOT NULL,
    description TEXT NOT NULL,
    total_amount REAL NOT NULL,
    currency TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    date INTEGER NOT NULL,
    created_by TEXT NOT NULL,
    split_method TEXT NOT NULL,
    is_settlement INTEGER NOT NULL DEFAULT 0,
    is_multi_payer INTEGER NOT NULL DEFAULT 0,
    payer_count INTEGER NOT NULL DEFAULT 0,
    split_count INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    is_deleted INTEGER NOT NULL DEFAULT 0,
    deleted_by TEXT NOT NULL DEFAULT '',
    deleted_at INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS expense_splits (
    expense_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    paid_amount REAL NOT NULL,
    owed_amount REAL NOT NULL,
    PRIMARY KEY (expense_id, user_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS balances (
    user1 TEXT NOT NULL,
    user2 TEXT NOT NULL,
    group_id TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL,
    amount REAL NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (user1, user2, group_id, currency)
);

CREATE TABLE IF NOT EXISTS friend_balances (
    user1 TEXT NOT NULL,
    user2 TEXT NOT NULL,
    total_amount REAL NOT NULL,
    currency TEXT NOT NULL,
    last_activity_at INTEGER NOT NULL,
    PRIMARY KEY (user1, user2)
);

CREATE TABLE IF NOT EXISTS activities (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    actor_id TEXT NOT NULL,
    group_id TEXT NOT NULL DEFAULT '',
    expense_id TEXT NOT NULL DEFAULT '',
    involved_user_ids TEXT NOT NULL DEFAULT '[]',
    metadata TEXT NOT NULL DEFAULT '{}',
    split_summary TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone);
CREATE INDEX IF NOT EXISTS idx_group_members_user ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_expenses_group ON expenses(group_id);
CREATE INDEX IF NOT EXISTS idx_expenses_paid_by ON expenses(paid_by);
CREATE INDEX IF NOT EXISTS idx_splits_user ON expense_splits(user_id);
CREATE INDEX IF NOT EXISTS idx_balances_group ON balances(group_id);
CREATE INDEX IF NOT EXISTS idx_balances_user2 ON balances(user2);
CREATE INDEX IF NOT EXISTS idx_friend_balances_user2 ON friend_balances(user2);
CREATE INDEX IF NOT EXISTS idx_activities_group_time ON activities(group_id, created_at);
CREATE INDEX IF NOT EXISTS idx_activities_actor ON activities(actor_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
