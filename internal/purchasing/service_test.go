package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

type memRepo struct {
	orders   map[int64]Order
	payments map[int64]Payment
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[int64]Order{}, payments: map[int64]Payment{}, nextID: 1}
}

func (m *memRepo) GetOrder(_ context.Context, id int64) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (m *memRepo) CreateOrder(_ context.Context, in Order) (Order, error) {
	in.ID = m.nextID
	m.nextID++
	if in.Status == "" {
		in.Status = OrderStatusDraft
	}
	if in.AccountingStatus == "" {
		in.AccountingStatus = AccountingStatusDraft
	}
	m.orders[in.ID] = in
	return in, nil
}

func (m *memRepo) ApproveOrder(_ context.Context, id int64) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = OrderStatusApproved
	o.AccountingStatus = AccountingStatusReady
	m.orders[id] = o
	return nil
}

func (m *memRepo) MarkOrderPosted(_ context.Context, id int64, at time.Time) error {
	o := m.orders[id]
	o.Posted = true
	o.PostedAt = &at
	o.AccountingStatus = AccountingStatusPosted
	m.orders[id] = o
	return nil
}

func (m *memRepo) ResetOrderPosted(_ context.Context, id int64) error {
	o := m.orders[id]
	o.Posted = false
	o.AccountingStatus = AccountingStatusReady
	m.orders[id] = o
	return nil
}

func (m *memRepo) GetPayment(_ context.Context, id int64) (Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (m *memRepo) CreatePayment(_ context.Context, in Payment) (Payment, error) {
	in.ID = m.nextID
	m.nextID++
	m.payments[in.ID] = in
	return in, nil
}

func (m *memRepo) MarkPaymentPosted(_ context.Context, id int64, at time.Time) error {
	p := m.payments[id]
	p.Posted = true
	p.PostedAt = &at
	m.payments[id] = p
	return nil
}

func (m *memRepo) ResetPaymentPosted(_ context.Context, id int64) error {
	p := m.payments[id]
	p.Posted = false
	m.payments[id] = p
	return nil
}

type stubPoster struct {
	purchaseCalls []int64
	paymentCalls  []int64
}

func (s *stubPoster) PostPurchase(_ context.Context, id int64) (journal.Entry, error) {
	s.purchaseCalls = append(s.purchaseCalls, id)
	return journal.Entry{ID: 200, Source: shared.SourceRef{Kind: shared.DocTypePurchase, ID: id}}, nil
}

func (s *stubPoster) PostOutgoingPayment(_ context.Context, id int64) (journal.Entry, error) {
	s.paymentCalls = append(s.paymentCalls, id)
	return journal.Entry{ID: 201, Source: shared.SourceRef{Kind: shared.DocTypePaymentOut, ID: id}}, nil
}

func TestCreateOrderValidatesTotals(t *testing.T) {
	svc := NewService(newMemRepo(), &stubPoster{})
	_, err := svc.CreateOrder(context.Background(), Order{
		CompanyID: 1,
		Subtotal:  decimal.NewFromInt(200),
		Tax:       decimal.NewFromInt(10),
		Total:     decimal.NewFromInt(205),
	})
	require.ErrorIs(t, err, shared.ErrPrecondition)
}

func TestApproveAndPostApprovesDraftOrder(t *testing.T) {
	repo := newMemRepo()
	poster := &stubPoster{}
	svc := NewService(repo, poster)

	order, err := svc.CreateOrder(context.Background(), Order{
		CompanyID: 1, SupplierID: 9, Number: "PO-1",
		Subtotal: decimal.NewFromInt(200), Total: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	entry, err := svc.ApproveAndPost(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(200), entry.ID)
	require.Equal(t, OrderStatusApproved, repo.orders[order.ID].Status)
	require.Equal(t, AccountingStatusReady, repo.orders[order.ID].AccountingStatus)
	require.Equal(t, []int64{order.ID}, poster.purchaseCalls)
}

func TestApproveAndPostApprovesStaleAccountingStatus(t *testing.T) {
	repo := newMemRepo()
	poster := &stubPoster{}
	svc := NewService(repo, poster)

	// Operationally approved long ago, but the ledger-side flag was never
	// advanced past DRAFT.
	repo.orders[7] = Order{ID: 7, CompanyID: 1, Status: OrderStatusApproved, AccountingStatus: AccountingStatusDraft}

	_, err := svc.ApproveAndPost(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, AccountingStatusReady, repo.orders[7].AccountingStatus)
	require.Equal(t, []int64{7}, poster.purchaseCalls)
}

func TestSendPaymentRejectsNonPositive(t *testing.T) {
	svc := NewService(newMemRepo(), &stubPoster{})
	_, _, err := svc.SendPayment(context.Background(), Payment{Amount: decimal.Zero})
	require.ErrorIs(t, err, shared.ErrPrecondition)
}

func TestSendPaymentCreatesAndPosts(t *testing.T) {
	repo := newMemRepo()
	poster := &stubPoster{}
	svc := NewService(repo, poster)

	payment, entry, err := svc.SendPayment(context.Background(), Payment{
		CompanyID: 1, Number: "PMT-1", Amount: decimal.NewFromInt(75),
	})
	require.NoError(t, err)
	require.NotZero(t, payment.ID)
	require.Equal(t, int64(201), entry.ID)
	require.Equal(t, []int64{payment.ID}, poster.paymentCalls)
}
