package repository

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate creates the schema if it does not exist. dialect is "postgres" in
// production; the test suite passes "sqlite". The DDL is shared apart from
// the auto-increment primary key spelling.
func Migrate(db *sql.DB, dialect string) error {
	pk := "BIGSERIAL PRIMARY KEY"
	if dialect == "sqlite" {
		pk = "INTEGER PRIMARY KEY AUTOINCREMENT"
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	schema := strings.ReplaceAll(schemaDDL, "{{pk}}", pk)
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id {{pk}},
	username VARCHAR(80) NOT NULL UNIQUE,
	email VARCHAR(120) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS clients (
	id {{pk}},
	client_id VARCHAR(20) NOT NULL UNIQUE,
	first_name VARCHAR(100) NOT NULL,
	last_name VARCHAR(100) NOT NULL,
	email VARCHAR(120) NOT NULL,
	phone VARCHAR(20) NOT NULL,
	address TEXT NOT NULL,
	date_of_birth TIMESTAMP,
	id_number VARCHAR(50) NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id {{pk}},
	name VARCHAR(100) NOT NULL,
	product_type VARCHAR(20) NOT NULL,
	interest_rate DOUBLE PRECISION NOT NULL,
	min_amount DOUBLE PRECISION NOT NULL,
	max_amount DOUBLE PRECISION NOT NULL,
	min_duration INTEGER NOT NULL,
	max_duration INTEGER NOT NULL,
	description TEXT NOT NULL,
	active BOOLEAN NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS credits (
	id {{pk}},
	credit_number VARCHAR(20) NOT NULL UNIQUE,
	client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	product_id BIGINT NOT NULL REFERENCES products(id),
	amount DOUBLE PRECISION NOT NULL,
	interest_rate DOUBLE PRECISION NOT NULL,
	duration_months INTEGER NOT NULL,
	monthly_payment DOUBLE PRECISION NOT NULL,
	total_amount DOUBLE PRECISION NOT NULL,
	amount_paid DOUBLE PRECISION NOT NULL,
	penalty_amount DOUBLE PRECISION NOT NULL,
	status VARCHAR(20) NOT NULL,
	application_date TIMESTAMP NOT NULL,
	approval_date TIMESTAMP,
	disbursement_date TIMESTAMP,
	notes TEXT NOT NULL,
	collateral TEXT NOT NULL,
	credit_score DOUBLE PRECISION NOT NULL,
	version BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS payment_schedule (
	id {{pk}},
	credit_id BIGINT NOT NULL REFERENCES credits(id) ON DELETE CASCADE,
	installment_number INTEGER NOT NULL,
	due_date TIMESTAMP NOT NULL,
	expected_amount DOUBLE PRECISION NOT NULL,
	paid BOOLEAN NOT NULL,
	paid_date TIMESTAMP,
	paid_amount DOUBLE PRECISION NOT NULL,
	UNIQUE (credit_id, installment_number)
);

CREATE TABLE IF NOT EXISTS credit_payments (
	id {{pk}},
	credit_id BIGINT NOT NULL REFERENCES credits(id) ON DELETE CASCADE,
	amount DOUBLE PRECISION NOT NULL,
	payment_date TIMESTAMP NOT NULL,
	payment_method VARCHAR(50) NOT NULL,
	reference VARCHAR(100) NOT NULL,
	notes TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS savings_accounts (
	id {{pk}},
	account_number VARCHAR(20) NOT NULL UNIQUE,
	client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	product_id BIGINT NOT NULL REFERENCES products(id),
	balance DOUBLE PRECISION NOT NULL,
	interest_rate DOUBLE PRECISION NOT NULL,
	status VARCHAR(20) NOT NULL,
	opening_date TIMESTAMP NOT NULL,
	closing_date TIMESTAMP,
	version BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS savings_transactions (
	id {{pk}},
	account_id BIGINT NOT NULL REFERENCES savings_accounts(id) ON DELETE CASCADE,
	transaction_type VARCHAR(20) NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	transaction_date TIMESTAMP NOT NULL,
	balance_after DOUBLE PRECISION NOT NULL,
	payment_method VARCHAR(50) NOT NULL,
	reference VARCHAR(100) NOT NULL,
	notes TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id {{pk}},
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title VARCHAR(200) NOT NULL,
	message TEXT NOT NULL,
	notification_type VARCHAR(50) NOT NULL,
	related_entity_type VARCHAR(50) NOT NULL,
	related_entity_id BIGINT NOT NULL,
	is_read BOOLEAN NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id {{pk}},
	user_id BIGINT NOT NULL,
	action VARCHAR(100) NOT NULL,
	entity_type VARCHAR(50) NOT NULL,
	entity_id BIGINT NOT NULL,
	details TEXT NOT NULL,
	ip_address VARCHAR(50) NOT NULL,
	timestamp TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_credits_client_id ON credits(client_id);
CREATE INDEX IF NOT EXISTS idx_credits_status ON credits(status);
CREATE INDEX IF NOT EXISTS idx_payment_schedule_credit_id ON payment_schedule(credit_id);
CREATE INDEX IF NOT EXISTS idx_payment_schedule_due ON payment_schedule(paid, due_date);
CREATE INDEX IF NOT EXISTS idx_savings_transactions_account_id ON savings_transactions(account_id);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(notification_type, related_entity_type, related_entity_id, is_read);
`
