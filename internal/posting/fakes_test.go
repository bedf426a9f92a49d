package posting

import (
	"context"
	"fmt"
	"time"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/rules"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/banking"
	"github.com/dentex-erp/dentex-erp/internal/expenses"
	"github.com/dentex-erp/dentex-erp/internal/purchasing"
	"github.com/dentex-erp/dentex-erp/internal/sales"
)

// passTx satisfies TxRunner without a database; everything runs in one scope
// so the service-level transaction semantics are exercised elsewhere.
type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeLedger struct {
	entries map[int64]journal.Entry
	nextID  int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: map[int64]journal.Entry{}, nextID: 1}
}

func (l *fakeLedger) Post(_ context.Context, input journal.EntryInput) (journal.Entry, error) {
	if err := input.Validate(); err != nil {
		return journal.Entry{}, err
	}
	for _, e := range l.entries {
		if e.Source == input.Source {
			return e, nil
		}
	}
	entry := journal.Entry{
		ID:         l.nextID,
		CompanyID:  input.CompanyID,
		Date:       input.Date,
		Memo:       input.Memo,
		CustomerID: input.CustomerID,
		SupplierID: input.SupplierID,
		Posted:     true,
		Source:     input.Source,
	}
	for _, in := range input.Lines {
		entry.Lines = append(entry.Lines, journal.Line{
			EntryID:     entry.ID,
			AccountID:   in.AccountID,
			Debit:       in.Debit,
			Credit:      in.Credit,
			Description: in.Description,
		})
	}
	l.entries[entry.ID] = entry
	l.nextID++
	return entry, nil
}

func (l *fakeLedger) FindBySource(_ context.Context, source shared.SourceRef) (journal.Entry, bool, error) {
	for _, e := range l.entries {
		if e.Source == source {
			return e, true, nil
		}
	}
	return journal.Entry{}, false, nil
}

func (l *fakeLedger) GetWithLines(_ context.Context, entryID int64) (journal.Entry, error) {
	e, ok := l.entries[entryID]
	if !ok {
		return journal.Entry{}, shared.ErrJournalNotFound
	}
	return e, nil
}

func (l *fakeLedger) Delete(_ context.Context, entryID int64) (journal.Entry, error) {
	e, ok := l.entries[entryID]
	if !ok {
		return journal.Entry{}, shared.ErrJournalNotFound
	}
	delete(l.entries, entryID)
	return e, nil
}

// racingLedger simulates losing the source unique-index race: the first Post
// reports a conflict while the concurrent winner's entry lands in the store,
// where only lookups made after the failed transaction can see it.
type racingLedger struct {
	*fakeLedger
	winner journal.Entry
	raced  bool
}

func (l *racingLedger) Post(ctx context.Context, input journal.EntryInput) (journal.Entry, error) {
	if !l.raced {
		l.raced = true
		l.entries[l.winner.ID] = l.winner
		return journal.Entry{}, shared.ErrSourceConflict
	}
	return l.fakeLedger.Post(ctx, input)
}

type fakeRules struct {
	byKey map[string]rules.Rule
}

func newFakeRules() *fakeRules {
	return &fakeRules{byKey: map[string]rules.Rule{}}
}

func ruleKey(companyID int64, docType shared.DocType) string {
	return fmt.Sprintf("%d:%s", companyID, docType)
}

func (r *fakeRules) set(rule rules.Rule) {
	r.byKey[ruleKey(rule.CompanyID, rule.DocType)] = rule
}

func (r *fakeRules) Get(_ context.Context, companyID int64, docType shared.DocType) (rules.Rule, error) {
	rule, ok := r.byKey[ruleKey(companyID, docType)]
	if !ok {
		return rules.Rule{}, shared.MissingRule(companyID, docType)
	}
	return rule, nil
}

type fakeAccounts struct {
	byID   map[int64]accounts.Account
	nextID int64
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[int64]accounts.Account{}, nextID: 1}
}

func (a *fakeAccounts) add(companyID int64, seed accounts.Seed) accounts.Account {
	account := accounts.Account{
		ID:        a.nextID,
		CompanyID: companyID,
		Code:      seed.Code,
		Name:      seed.Name,
		Type:      seed.Type,
		IsActive:  true,
	}
	a.byID[account.ID] = account
	a.nextID++
	return account
}

func (a *fakeAccounts) GetByID(_ context.Context, id int64) (accounts.Account, error) {
	account, ok := a.byID[id]
	if !ok {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return account, nil
}

func (a *fakeAccounts) GetByCode(_ context.Context, companyID int64, code string) (accounts.Account, error) {
	for _, account := range a.byID {
		if account.CompanyID == companyID && account.Code == code {
			return account, nil
		}
	}
	return accounts.Account{}, shared.MissingAccount(companyID, code)
}

func (a *fakeAccounts) Ensure(ctx context.Context, companyID int64, seed accounts.Seed) (accounts.Account, error) {
	if account, err := a.GetByCode(ctx, companyID, seed.Code); err == nil {
		return account, nil
	}
	return a.add(companyID, seed), nil
}

type fakeSales struct {
	invoices map[int64]sales.Invoice
	payments map[int64]sales.Payment
}

func newFakeSales() *fakeSales {
	return &fakeSales{invoices: map[int64]sales.Invoice{}, payments: map[int64]sales.Payment{}}
}

func (f *fakeSales) GetInvoice(_ context.Context, id int64) (sales.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return sales.Invoice{}, sales.ErrInvoiceNotFound
	}
	return inv, nil
}

func (f *fakeSales) CreateInvoice(_ context.Context, in sales.Invoice) (sales.Invoice, error) {
	f.invoices[in.ID] = in
	return in, nil
}

func (f *fakeSales) SetInvoiceStatus(_ context.Context, id int64, status sales.InvoiceStatus) error {
	inv, ok := f.invoices[id]
	if !ok {
		return sales.ErrInvoiceNotFound
	}
	inv.Status = status
	f.invoices[id] = inv
	return nil
}

func (f *fakeSales) MarkInvoicePosted(_ context.Context, id int64, at time.Time) error {
	inv, ok := f.invoices[id]
	if !ok {
		return sales.ErrInvoiceNotFound
	}
	inv.Posted = true
	inv.PostedAt = &at
	inv.Status = sales.InvoiceStatusCompleted
	f.invoices[id] = inv
	return nil
}

func (f *fakeSales) ResetInvoicePosted(_ context.Context, id int64) error {
	inv, ok := f.invoices[id]
	if !ok {
		return sales.ErrInvoiceNotFound
	}
	inv.Posted = false
	inv.PostedAt = nil
	inv.Status = sales.InvoiceStatusApproved
	f.invoices[id] = inv
	return nil
}

func (f *fakeSales) GetPayment(_ context.Context, id int64) (sales.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return sales.Payment{}, sales.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakeSales) CreatePayment(_ context.Context, in sales.Payment) (sales.Payment, error) {
	f.payments[in.ID] = in
	return in, nil
}

func (f *fakeSales) MarkPaymentPosted(_ context.Context, id int64, at time.Time) error {
	p, ok := f.payments[id]
	if !ok {
		return sales.ErrPaymentNotFound
	}
	p.Posted = true
	p.PostedAt = &at
	if p.Status == sales.PaymentStatusPending || p.Status == sales.PaymentStatusProcessing {
		p.Status = sales.PaymentStatusCompleted
	}
	f.payments[id] = p
	return nil
}

func (f *fakeSales) ResetPaymentPosted(_ context.Context, id int64) error {
	p, ok := f.payments[id]
	if !ok {
		return sales.ErrPaymentNotFound
	}
	p.Posted = false
	p.PostedAt = nil
	if p.Status == sales.PaymentStatusCompleted {
		p.Status = sales.PaymentStatusPending
	}
	f.payments[id] = p
	return nil
}

type fakePurchasing struct {
	orders   map[int64]purchasing.Order
	payments map[int64]purchasing.Payment
}

func newFakePurchasing() *fakePurchasing {
	return &fakePurchasing{orders: map[int64]purchasing.Order{}, payments: map[int64]purchasing.Payment{}}
}

func (f *fakePurchasing) GetOrder(_ context.Context, id int64) (purchasing.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return purchasing.Order{}, purchasing.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakePurchasing) CreateOrder(_ context.Context, in purchasing.Order) (purchasing.Order, error) {
	f.orders[in.ID] = in
	return in, nil
}

func (f *fakePurchasing) ApproveOrder(_ context.Context, id int64) error {
	o, ok := f.orders[id]
	if !ok {
		return purchasing.ErrOrderNotFound
	}
	o.Status = purchasing.OrderStatusApproved
	o.AccountingStatus = purchasing.AccountingStatusReady
	f.orders[id] = o
	return nil
}

func (f *fakePurchasing) MarkOrderPosted(_ context.Context, id int64, at time.Time) error {
	o, ok := f.orders[id]
	if !ok {
		return purchasing.ErrOrderNotFound
	}
	o.Posted = true
	o.PostedAt = &at
	o.AccountingStatus = purchasing.AccountingStatusPosted
	f.orders[id] = o
	return nil
}

func (f *fakePurchasing) ResetOrderPosted(_ context.Context, id int64) error {
	o, ok := f.orders[id]
	if !ok {
		return purchasing.ErrOrderNotFound
	}
	o.Posted = false
	o.PostedAt = nil
	o.AccountingStatus = purchasing.AccountingStatusReady
	f.orders[id] = o
	return nil
}

func (f *fakePurchasing) GetPayment(_ context.Context, id int64) (purchasing.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return purchasing.Payment{}, purchasing.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePurchasing) CreatePayment(_ context.Context, in purchasing.Payment) (purchasing.Payment, error) {
	f.payments[in.ID] = in
	return in, nil
}

func (f *fakePurchasing) MarkPaymentPosted(_ context.Context, id int64, at time.Time) error {
	p, ok := f.payments[id]
	if !ok {
		return purchasing.ErrPaymentNotFound
	}
	p.Posted = true
	p.PostedAt = &at
	f.payments[id] = p
	return nil
}

func (f *fakePurchasing) ResetPaymentPosted(_ context.Context, id int64) error {
	p, ok := f.payments[id]
	if !ok {
		return purchasing.ErrPaymentNotFound
	}
	p.Posted = false
	p.PostedAt = nil
	f.payments[id] = p
	return nil
}

type fakeExpenses struct {
	items map[int64]expenses.Expense
}

func newFakeExpenses() *fakeExpenses {
	return &fakeExpenses{items: map[int64]expenses.Expense{}}
}

func (f *fakeExpenses) Get(_ context.Context, id int64) (expenses.Expense, error) {
	e, ok := f.items[id]
	if !ok {
		return expenses.Expense{}, expenses.ErrExpenseNotFound
	}
	return e, nil
}

func (f *fakeExpenses) Create(_ context.Context, in expenses.Expense) (expenses.Expense, error) {
	f.items[in.ID] = in
	return in, nil
}

func (f *fakeExpenses) MarkPosted(_ context.Context, id int64, at time.Time) error {
	e, ok := f.items[id]
	if !ok {
		return expenses.ErrExpenseNotFound
	}
	e.Posted = true
	e.PostedAt = &at
	e.Status = expenses.ExpenseStatusCompleted
	f.items[id] = e
	return nil
}

func (f *fakeExpenses) ResetPosted(_ context.Context, id int64) error {
	e, ok := f.items[id]
	if !ok {
		return expenses.ErrExpenseNotFound
	}
	e.Posted = false
	e.PostedAt = nil
	e.Status = expenses.ExpenseStatusPending
	f.items[id] = e
	return nil
}

type fakeBanking struct {
	accounts map[int64]banking.FinancialAccount
}

func newFakeBanking() *fakeBanking {
	return &fakeBanking{accounts: map[int64]banking.FinancialAccount{}}
}

func (f *fakeBanking) Get(_ context.Context, id int64) (banking.FinancialAccount, error) {
	a, ok := f.accounts[id]
	if !ok {
		return banking.FinancialAccount{}, banking.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeBanking) List(_ context.Context, companyID int64) ([]banking.FinancialAccount, error) {
	var out []banking.FinancialAccount
	for _, a := range f.accounts {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}
