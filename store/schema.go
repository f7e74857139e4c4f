package store

import (
	"context"
	"database/sql"
	"fmt"
)

const ticketTable = "Tickets"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS Events (
		event_id VARCHAR(64) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		location VARCHAR(255) NOT NULL,
		starts_at DATETIME(3) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Ticket_Types (
		event_id VARCHAR(64) NOT NULL,
		ticket_type_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		price BIGINT NOT NULL,
		available TINYINT(1) NOT NULL DEFAULT 1,
		position INT NOT NULL DEFAULT 0,
		PRIMARY KEY (event_id, ticket_type_id)
	)`,
	`CREATE TABLE IF NOT EXISTS Tickets (
		ticket_id VARCHAR(96) NOT NULL PRIMARY KEY,
		event_id VARCHAR(64) NOT NULL,
		buyer_id VARCHAR(64) NOT NULL,
		buyer_name VARCHAR(255) NOT NULL,
		buyer_phone VARCHAR(32) NOT NULL,
		ticket_type_id VARCHAR(64) NOT NULL,
		unit_price BIGINT NOT NULL,
		commission_amount BIGINT NOT NULL,
		payment_transaction_id VARCHAR(128) NOT NULL,
		qr_payload TEXT NOT NULL,
		purchased_at DATETIME(3) NOT NULL,
		is_used TINYINT(1) NOT NULL DEFAULT 0,
		used_at DATETIME(3) NULL,
		KEY tickets_event_id (event_id),
		KEY tickets_payment_transaction_id (payment_transaction_id)
	)`,
	`CREATE TABLE IF NOT EXISTS Event_Revenue (
		event_id VARCHAR(64) NOT NULL PRIMARY KEY,
		gross_amount BIGINT NOT NULL DEFAULT 0,
		commission_amount BIGINT NOT NULL DEFAULT 0,
		net_to_venue BIGINT NOT NULL DEFAULT 0
	)`,
}

// Migrate creates the ticketing tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i, err)
		}
	}
	return nil
}
