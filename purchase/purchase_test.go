package purchase

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"os"
	"testing"
	"time"

	"eventers-ticketing/clock"
	"eventers-ticketing/codec"
	"eventers-ticketing/commission"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"eventers-ticketing/payment"
	"eventers-ticketing/store"
	"eventers-ticketing/ticketid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

var concert = model.Event{
	EventID:  "e-1",
	Name:     "Nyege Nyege",
	Location: "Jinja",
	StartsAt: now.Add(48 * time.Hour),
	TicketTypes: []model.TicketType{
		{TicketTypeID: "regular", Name: "Regular", Price: 10000, Available: true},
		{TicketTypeID: "vip", Name: "VIP", Price: 50000, Available: false},
	},
}

type fakeGateway struct {
	intentErr  error
	listErr    error
	processErr error
	result     *payment.Result
	methods    []payment.Method

	intentAmounts []int64
	processed     []payment.Method
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		result:  &payment.Result{Success: true, TransactionID: "tx-1"},
		methods: []payment.Method{{ID: "pm_mtn", Provider: "MTN"}, {ID: "pm_airtel", Provider: "AIRTEL"}},
	}
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, _, _ string) (*payment.Intent, error) {
	g.intentAmounts = append(g.intentAmounts, amount)
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	return &payment.Intent{IntentID: "pi-1"}, nil
}

func (g *fakeGateway) ListMethods(context.Context) ([]payment.Method, error) {
	return g.methods, g.listErr
}

func (g *fakeGateway) ProcessPayment(_ context.Context, _ string, m payment.Method, _ int64, _ string) (*payment.Result, error) {
	g.processed = append(g.processed, m)
	if g.processErr != nil {
		return nil, g.processErr
	}
	return g.result, nil
}

type flakyStore struct {
	*store.Memory
	failOnAdd  int
	adds       int
	revenueErr error
}

func (s *flakyStore) AddTicket(ctx context.Context, t *model.Ticket) (string, error) {
	s.adds++
	if s.adds == s.failOnAdd {
		return "", errors.New("connection reset")
	}
	return s.Memory.AddTicket(ctx, t)
}

func (s *flakyStore) AccumulateEventRevenue(ctx context.Context, eventID string, r model.Revenue) error {
	if s.revenueErr != nil {
		return s.revenueErr
	}
	return s.Memory.AccumulateEventRevenue(ctx, eventID, r)
}

type fakeNotifier struct {
	phone   string
	tickets []model.Ticket
}

func (n *fakeNotifier) TicketsIssued(_ context.Context, phone string, tickets []model.Ticket) error {
	n.phone, n.tickets = phone, tickets
	return nil
}

func (n *fakeNotifier) TicketAdmitted(context.Context, model.Ticket, time.Time) error { return nil }

type fixture struct {
	store    *flakyStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	codec    *codec.Codec
	orch     *Orchestrator
}

func newFixture(t *testing.T, idOpts ...ticketid.Option) *fixture {
	qr, err := codec.New([]byte("secret"))
	require.Nil(t, err)
	calc, err := commission.New(commission.DefaultRateBPS)
	require.Nil(t, err)

	f := &fixture{
		store:    &flakyStore{Memory: store.NewMemory(concert)},
		gateway:  newFakeGateway(),
		notifier: &fakeNotifier{},
		codec:    qr,
	}
	f.orch = New(f.store, f.gateway, ticketid.New("EVT", idOpts...), qr, calc,
		WithNotifier(f.notifier), WithClock(clock.NewFixed(now)))
	return f
}

func request(phone string, qty int) model.Purchase {
	return model.Purchase{
		EventID:      "e-1",
		TicketTypeID: "regular",
		Quantity:     qty,
		BuyerID:      "b-1",
		BuyerName:    "Amina",
		BuyerPhone:   phone,
	}
}

func requireReason(t *testing.T, err error, want Reason) *Error {
	var pe *Error
	require.True(t, errors.As(err, &pe), "expected *purchase.Error, got %v", err)
	require.Equal(t, want, pe.Reason, pe.Error())
	return pe
}

func TestPurchaseIssuesOneTicketPerSeat(t *testing.T) {
	f := newFixture(t)

	res, err := f.orch.Purchase(context.Background(), request("0771234567", 2))
	require.Nil(t, err)

	assert.Equal(t, StateComplete, res.State)
	assert.Equal(t, "tx-1", res.TransactionID)
	assert.Equal(t, commission.Split{Gross: 20000, Commission: 1000, Net: 19000}, res.Split)
	assert.Equal(t, []int64{20000}, f.gateway.intentAmounts)
	assert.Equal(t, "pm_mtn", f.gateway.processed[0].ID)
	assert.Equal(t, "MTN", res.Payment.Network)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Tickets, 2)
	assert.NotEqual(t, res.Tickets[0].TicketID, res.Tickets[1].TicketID)
	assert.Equal(t, res.Tickets[0].TicketID+"_2", res.Tickets[1].TicketID)
	assert.Equal(t, res.Tickets[0].TicketID, res.OrderID)

	var commissionSum int64
	for _, tk := range res.Tickets {
		assert.Equal(t, int64(10000), tk.UnitPrice)
		assert.Equal(t, "tx-1", tk.PaymentTransactionID)
		assert.Equal(t, now, tk.PurchasedAt)
		assert.False(t, tk.IsUsed)
		commissionSum += tk.CommissionAmount

		claims, err := f.codec.Decode(tk.QRPayload)
		require.Nil(t, err)
		assert.Equal(t, codec.Claims{TicketID: tk.TicketID, EventID: "e-1", BuyerID: "b-1", TicketTypeID: "regular"}, claims)

		stored, err := f.store.Ticket(context.Background(), tk.TicketID)
		require.Nil(t, err)
		assert.Equal(t, tk, *stored)
	}
	assert.Equal(t, int64(1000), commissionSum)

	rec, err := f.store.EventRevenue(context.Background(), "e-1")
	require.Nil(t, err)
	assert.Equal(t, model.Revenue{Gross: 20000, Commission: 1000, Net: 19000}, rec.Revenue)

	assert.Equal(t, "0771234567", f.notifier.phone)
	assert.Len(t, f.notifier.tickets, 2)
}

func TestPurchaseQuantityYieldsDistinctIDs(t *testing.T) {
	f := newFixture(t)

	res, err := f.orch.Purchase(context.Background(), request("0771234567", 7))
	require.Nil(t, err)

	ids := map[string]bool{}
	for _, tk := range res.Tickets {
		ids[tk.TicketID] = true
	}
	assert.Len(t, ids, 7)
	assert.Len(t, f.store.Tickets("e-1"), 7)
}

func TestPurchaseDetectsAirtel(t *testing.T) {
	f := newFixture(t)

	res, err := f.orch.Purchase(context.Background(), request("0701234567", 1))
	require.Nil(t, err)
	assert.Equal(t, "AIRTEL", res.Payment.Network)
	assert.Equal(t, "pm_airtel", f.gateway.processed[0].ID)
}

func TestPurchaseRejectsUnknownPrefix(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Purchase(context.Background(), request("0991234567", 1))
	pe := requireReason(t, err, ReasonInvalidPhone)
	assert.Equal(t, StateIdle, pe.From)
	assert.Empty(t, f.gateway.intentAmounts)
}

func TestPurchaseValidatesAgainstSelectedMethod(t *testing.T) {
	f := newFixture(t)
	req := request("0701234567", 1)
	req.PaymentMethod = "mtn"

	_, err := f.orch.Purchase(context.Background(), req)
	requireReason(t, err, ReasonInvalidPhone)
	assert.Empty(t, f.gateway.intentAmounts)
}

func TestPurchaseRejectsInvalidInput(t *testing.T) {
	cases := map[string]func(*model.Purchase){
		"zero quantity":       func(r *model.Purchase) { r.Quantity = 0 },
		"too many":            func(r *model.Purchase) { r.Quantity = DefaultMaxQuantity + 1 },
		"no ticket type":      func(r *model.Purchase) { r.TicketTypeID = "" },
		"unknown ticket type": func(r *model.Purchase) { r.TicketTypeID = "balcony" },
		"unavailable":         func(r *model.Purchase) { r.TicketTypeID = "vip" },
		"unknown event":       func(r *model.Purchase) { r.EventID = "e-404" },
		"unknown method":      func(r *model.Purchase) { r.PaymentMethod = "card" },
		"missing buyer":       func(r *model.Purchase) { r.BuyerID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			req := request("0771234567", 1)
			mutate(&req)

			_, err := f.orch.Purchase(context.Background(), req)
			requireReason(t, err, ReasonInvalidInput)
			assert.Empty(t, f.gateway.intentAmounts)
		})
	}
}

func TestPurchaseProcessingThrows(t *testing.T) {
	f := newFixture(t)
	f.gateway.processErr = errors.New("network timeout talking to MTN")

	res, err := f.orch.Purchase(context.Background(), request("0771234567", 2))
	assert.Nil(t, res)
	pe := requireReason(t, err, ReasonPaymentDeclined)
	assert.Equal(t, StateInputValidated, pe.From)
	assert.Equal(t, "network timeout talking to MTN", pe.Message)
	assert.False(t, pe.PaymentCaptured())

	assert.Empty(t, f.store.Tickets("e-1"))
	rec, _ := f.store.EventRevenue(context.Background(), "e-1")
	assert.Equal(t, model.Revenue{}, rec.Revenue)
}

func TestPurchaseProviderDeclines(t *testing.T) {
	f := newFixture(t)
	f.gateway.result = &payment.Result{Success: false, Error: "insufficient balance"}

	_, err := f.orch.Purchase(context.Background(), request("0771234567", 1))
	pe := requireReason(t, err, ReasonPaymentDeclined)
	assert.Equal(t, "insufficient balance", pe.Message)
	assert.Empty(t, f.store.Tickets("e-1"))
}

func TestPurchaseIntentFails(t *testing.T) {
	f := newFixture(t)
	f.gateway.intentErr = errors.New("provider unavailable")

	_, err := f.orch.Purchase(context.Background(), request("0771234567", 1))
	requireReason(t, err, ReasonPaymentDeclined)
	assert.Empty(t, f.gateway.processed)
}

func TestPurchaseNoMethodForNetwork(t *testing.T) {
	f := newFixture(t)
	f.gateway.methods = []payment.Method{{ID: "pm_mtn", Provider: "MTN"}}

	_, err := f.orch.Purchase(context.Background(), request("0751234567", 1))
	requireReason(t, err, ReasonPaymentDeclined)
	assert.Empty(t, f.gateway.processed)
}

func TestPurchaseCancelledBeforePayment(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orch.Purchase(ctx, request("0771234567", 1))
	requireReason(t, err, ReasonCancelled)
	assert.Empty(t, f.gateway.intentAmounts)
}

func TestPurchasePersistFailureEscalates(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	f := newFixture(t)
	f.store.failOnAdd = 2

	_, err := f.orch.Purchase(context.Background(), request("0771234567", 3))
	pe := requireReason(t, err, ReasonPersistError)
	assert.Equal(t, StatePaymentAuthorized, pe.From)
	assert.Equal(t, "tx-1", pe.TransactionID)
	assert.True(t, pe.PaymentCaptured())
	require.Len(t, pe.PersistedTicketIDs, 1)

	assert.Contains(t, buf.String(), "manual reconciliation required")
	assert.Contains(t, buf.String(), "transaction_id=tx-1")
	assert.Contains(t, buf.String(), "order_id="+pe.PersistedTicketIDs[0])
	assert.Contains(t, buf.String(), "buyer_id=b-1")

	rec, _ := f.store.EventRevenue(context.Background(), "e-1")
	assert.Equal(t, model.Revenue{}, rec.Revenue)
}

func TestPurchaseIDFailureFailsClosed(t *testing.T) {
	f := newFixture(t, ticketid.WithHash(crypto.MD4))

	_, err := f.orch.Purchase(context.Background(), request("0771234567", 2))
	pe := requireReason(t, err, ReasonIssuanceFailed)
	assert.True(t, errors.Is(err, ticketid.ErrDigestUnavailable))
	assert.True(t, pe.PaymentCaptured())
	assert.Empty(t, f.store.Tickets("e-1"))
}

func TestPurchaseRevenueFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	f.store.revenueErr = errors.New("deadlock")

	res, err := f.orch.Purchase(context.Background(), request("0771234567", 1))
	require.Nil(t, err)
	assert.Equal(t, StateComplete, res.State)
	assert.Len(t, res.Tickets, 1)
	assert.Len(t, res.Warnings, 1)
	assert.Len(t, f.store.Tickets("e-1"), 1)
}

func TestPurchaseFallsBackToIntentReference(t *testing.T) {
	f := newFixture(t)
	f.gateway.result = &payment.Result{Success: true}

	res, err := f.orch.Purchase(context.Background(), request("0771234567", 1))
	require.Nil(t, err)
	assert.Equal(t, "pi-1", res.TransactionID)
	assert.Equal(t, "pi-1", res.Tickets[0].PaymentTransactionID)
	assert.Len(t, res.Warnings, 1)
}
