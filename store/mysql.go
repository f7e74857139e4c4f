package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventers-ticketing/model"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

var ticketCols = []string{
	"ticket_id", "event_id", "buyer_id", "buyer_name", "buyer_phone", "ticket_type_id", "unit_price",
	"commission_amount", "payment_transaction_id", "qr_payload", "purchased_at", "is_used", "used_at",
}

const (
	selectEvent = `SELECT event_id, name, location, starts_at FROM Events WHERE event_id = ?`

	selectTicketTypes = `SELECT ticket_type_id, name, price, available FROM Ticket_Types
		WHERE event_id = ? ORDER BY position, ticket_type_id`

	claimTicket = `UPDATE Tickets SET is_used = 1, used_at = ? WHERE ticket_id = ? AND is_used = 0`

	selectTicketUse = `SELECT is_used, used_at FROM Tickets WHERE ticket_id = ?`

	accumulateRevenue = `INSERT INTO Event_Revenue (event_id, gross_amount, commission_amount, net_to_venue)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			gross_amount = gross_amount + VALUES(gross_amount),
			commission_amount = commission_amount + VALUES(commission_amount),
			net_to_venue = net_to_venue + VALUES(net_to_venue)`

	selectRevenue = `SELECT gross_amount, commission_amount, net_to_venue FROM Event_Revenue WHERE event_id = ?`
)

var selectTicket = fmt.Sprintf(`SELECT %s FROM Tickets WHERE ticket_id = ?`, strings.Join(ticketCols, ", "))

// MySQL stores tickets in MySQL. The DSN must set parseTime=true.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) Event(ctx context.Context, eventID string) (*model.Event, error) {
	st, rows, err := query(ctx, s.db, selectEvent, eventID)
	if err != nil {
		return nil, fmt.Errorf("event: error querying event %s: %w", eventID, err)
	}
	e, ok, err := eventScanner(st, rows)
	if err != nil {
		return nil, fmt.Errorf("event: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("event: %w: %s", ErrEventNotFound, eventID)
	}

	st, rows, err = query(ctx, s.db, selectTicketTypes, eventID)
	if err != nil {
		return nil, fmt.Errorf("event: error querying ticket types of %s: %w", eventID, err)
	}
	e.TicketTypes, err = ticketTypesScanner(st, rows)
	if err != nil {
		return nil, fmt.Errorf("event: %w", err)
	}

	return e, nil
}

func (s *MySQL) AddTicket(ctx context.Context, t *model.Ticket) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("addTicket: error begining db transaction: %w", err)
	}

	values := []interface{}{
		t.TicketID,
		t.EventID,
		t.BuyerID,
		t.BuyerName,
		t.BuyerPhone,
		t.TicketTypeID,
		t.UnitPrice,
		t.CommissionAmount,
		t.PaymentTransactionID,
		t.QRPayload,
		t.PurchasedAt,
		t.IsUsed,
		t.UsedAt,
	}

	_, err = create(ctx, tx, ticketTable, ticketCols, values)
	if err != nil {
		tx.Rollback()
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return "", fmt.Errorf("addTicket: %w: %s", ErrDuplicateTicket, t.TicketID)
		}
		return "", fmt.Errorf("addTicket: error inserting ticket %s: %w", t.TicketID, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("addTicket: error commiting ticket %s: %w", t.TicketID, err)
	}

	return t.TicketID, nil
}

func (s *MySQL) Ticket(ctx context.Context, ticketID string) (*model.Ticket, error) {
	st, rows, err := query(ctx, s.db, selectTicket, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket: error querying ticket %s: %w", ticketID, err)
	}
	t, ok, err := ticketScanner(st, rows)
	if err != nil {
		return nil, fmt.Errorf("ticket: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("ticket: %w: %s", ErrTicketNotFound, ticketID)
	}
	return t, nil
}

// ClaimTicketUse flips is_used with a single conditional UPDATE. Only when no row changed does
// it read the ticket back, to tell a used ticket from an unknown one.
func (s *MySQL) ClaimTicketUse(ctx context.Context, ticketID string, at time.Time) (Claim, error) {
	stmt, err := s.db.PrepareContext(ctx, claimTicket)
	if err != nil {
		return Claim{}, fmt.Errorf("claimTicketUse: error preparing sql query: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, at, ticketID)
	if err != nil {
		return Claim{}, fmt.Errorf("claimTicketUse: unable to update ticket %s: %w", ticketID, err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return Claim{}, fmt.Errorf("claimTicketUse: unable to get rows affected: %w", err)
	}
	if updated == 1 {
		return Claim{Claimed: true}, nil
	}

	st, rows, err := query(ctx, s.db, selectTicketUse, ticketID)
	if err != nil {
		return Claim{}, fmt.Errorf("claimTicketUse: error reading ticket %s: %w", ticketID, err)
	}
	defer st.Close()
	defer rows.Close()

	if !rows.Next() {
		return Claim{}, fmt.Errorf("claimTicketUse: %w: %s", ErrTicketNotFound, ticketID)
	}

	var used bool
	var usedAt sql.NullTime
	if err := rows.Scan(&used, &usedAt); err != nil {
		return Claim{}, fmt.Errorf("claimTicketUse: error while scanning row: %w", err)
	}
	if !used {
		return Claim{}, fmt.Errorf("claimTicketUse: ticket %s not updated but still unused", ticketID)
	}

	c := Claim{}
	if usedAt.Valid {
		t := usedAt.Time
		c.PriorUsedAt = &t
	}
	return c, nil
}

func (s *MySQL) AccumulateEventRevenue(ctx context.Context, eventID string, r model.Revenue) error {
	stmt, err := s.db.PrepareContext(ctx, accumulateRevenue)
	if err != nil {
		return fmt.Errorf("accumulateEventRevenue: error preparing sql query: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, eventID, r.Gross, r.Commission, r.Net); err != nil {
		return fmt.Errorf("accumulateEventRevenue: unable to upsert revenue for %s: %w", eventID, err)
	}
	return nil
}

// EventRevenue returns the accumulated record, zero valued when nothing was sold yet.
func (s *MySQL) EventRevenue(ctx context.Context, eventID string) (*model.RevenueRecord, error) {
	st, rows, err := query(ctx, s.db, selectRevenue, eventID)
	if err != nil {
		return nil, fmt.Errorf("eventRevenue: error querying revenue of %s: %w", eventID, err)
	}
	defer st.Close()
	defer rows.Close()

	rec := &model.RevenueRecord{EventID: eventID}
	if rows.Next() {
		if err := rows.Scan(&rec.Gross, &rec.Commission, &rec.Net); err != nil {
			return nil, fmt.Errorf("eventRevenue: error while scanning row: %w", err)
		}
	}
	return rec, nil
}

func eventScanner(st *sql.Stmt, rows *sql.Rows) (*model.Event, bool, error) {
	defer st.Close()
	defer rows.Close()

	if !rows.Next() {
		return nil, false, nil
	}
	e := model.Event{}
	err := rows.Scan(
		&e.EventID,
		&e.Name,
		&e.Location,
		&e.StartsAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("eventScanner: error scanning event: %w", err)
	}
	return &e, true, nil
}

func ticketTypesScanner(st *sql.Stmt, rows *sql.Rows) ([]model.TicketType, error) {
	defer st.Close()
	defer rows.Close()

	var tts []model.TicketType
	for rows.Next() {
		tt := model.TicketType{}
		err := rows.Scan(
			&tt.TicketTypeID,
			&tt.Name,
			&tt.Price,
			&tt.Available,
		)
		if err != nil {
			return nil, fmt.Errorf("ticketTypesScanner: error scanning ticket types: %w", err)
		}
		tts = append(tts, tt)
	}
	return tts, rows.Err()
}

func ticketScanner(st *sql.Stmt, rows *sql.Rows) (*model.Ticket, bool, error) {
	defer st.Close()
	defer rows.Close()

	if !rows.Next() {
		return nil, false, nil
	}
	t := model.Ticket{}
	var usedAt sql.NullTime
	err := rows.Scan(
		&t.TicketID,
		&t.EventID,
		&t.BuyerID,
		&t.BuyerName,
		&t.BuyerPhone,
		&t.TicketTypeID,
		&t.UnitPrice,
		&t.CommissionAmount,
		&t.PaymentTransactionID,
		&t.QRPayload,
		&t.PurchasedAt,
		&t.IsUsed,
		&usedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("ticketScanner: error scanning ticket: %w", err)
	}
	if usedAt.Valid {
		at := usedAt.Time
		t.UsedAt = &at
	}
	return &t, true, nil
}

func create(ctx context.Context, tx *sql.Tx, table string, cols []string, values []interface{}) (int64, error) {
	var params []string
	for range cols {
		params = append(params, "?")
	}

	tsql := fmt.Sprintf(`INSERT INTO %s(%s) VALUES (%s);`, table, strings.Join(cols, ", "), strings.Join(params, ", "))

	stmt, err := tx.PrepareContext(ctx, tsql)
	if err != nil {
		return -1, fmt.Errorf("create: error preparing sql query: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, values...)
	if err != nil {
		return -1, fmt.Errorf("create: unable to insert record in %s: %w", table, err)
	}

	return result.RowsAffected()
}

func query(ctx context.Context, db *sql.DB, query string, args ...interface{}) (*sql.Stmt, *sql.Rows, error) {
	st, err := db.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: unable to prepare query: %w", err)
	}

	rows, err := st.QueryContext(ctx, args...)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("query: error querying db: %w", err)
	}

	return st, rows, nil
}
