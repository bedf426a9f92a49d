package posting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/rules"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/banking"
	"github.com/dentex-erp/dentex-erp/internal/expenses"
	"github.com/dentex-erp/dentex-erp/internal/purchasing"
	"github.com/dentex-erp/dentex-erp/internal/sales"
)

const testCompany = int64(1)

type env struct {
	svc        *Service
	ledger     *fakeLedger
	rules      *fakeRules
	accounts   *fakeAccounts
	sales      *fakeSales
	purchasing *fakePurchasing
	expenses   *fakeExpenses
	banking    *fakeBanking

	bank, ar, revenue, taxPayable, cogs, ap, advances accounts.Account
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		ledger:     newFakeLedger(),
		rules:      newFakeRules(),
		accounts:   newFakeAccounts(),
		sales:      newFakeSales(),
		purchasing: newFakePurchasing(),
		expenses:   newFakeExpenses(),
		banking:    newFakeBanking(),
	}
	e.bank = e.accounts.add(testCompany, accounts.Seed{Code: accounts.CodeBankChecking, Name: "Bank - Checking", Type: accounts.AccountTypeAsset})
	e.ar = e.accounts.add(testCompany, accounts.Seed{Code: accounts.CodeAR, Name: "Accounts Receivable", Type: accounts.AccountTypeAsset})
	e.revenue = e.accounts.add(testCompany, accounts.Seed{Code: accounts.CodeSalesRevenue, Name: "Sales Revenue", Type: accounts.AccountTypeRevenue})
	e.taxPayable = e.accounts.add(testCompany, accounts.Seed{Code: accounts.CodeSalesTaxPayable, Name: "Sales Tax Payable", Type: accounts.AccountTypeLiability})
	e.cogs = e.accounts.add(testCompany, accounts.Seed{Code: "5000", Name: "Cost of Goods Sold", Type: accounts.AccountTypeExpense})
	e.ap = e.accounts.add(testCompany, accounts.Seed{Code: accounts.CodeAP, Name: "Accounts Payable", Type: accounts.AccountTypeLiability})
	e.advances = e.accounts.add(testCompany, accounts.Seed{Code: accounts.CodeVendorAdvances, Name: "Vendor Advances", Type: accounts.AccountTypeAsset})

	tax := e.taxPayable
	e.rules.set(rules.Rule{CompanyID: testCompany, DocType: shared.DocTypeSale,
		DebitAccount: e.ar, CreditAccount: e.revenue, TaxAccount: &tax})
	e.rules.set(rules.Rule{CompanyID: testCompany, DocType: shared.DocTypePurchase,
		DebitAccount: e.cogs, CreditAccount: e.ap})
	e.rules.set(rules.Rule{CompanyID: testCompany, DocType: shared.DocTypePaymentIn,
		DebitAccount: e.bank, CreditAccount: e.ar})
	e.rules.set(rules.Rule{CompanyID: testCompany, DocType: shared.DocTypePaymentOut,
		DebitAccount: e.ap, CreditAccount: e.bank})
	e.rules.set(rules.Rule{CompanyID: testCompany, DocType: shared.DocTypeExpense,
		DebitAccount: e.cogs, CreditAccount: e.ap})

	e.svc = NewService(Deps{
		Tx:         passTx{},
		Rules:      e.rules,
		Accounts:   e.accounts,
		Ledger:     e.ledger,
		Sales:      e.sales,
		Purchasing: e.purchasing,
		Expenses:   e.expenses,
		Banking:    e.banking,
	})
	e.svc.WithNow(func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) })
	return e
}

func money(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func requireBalanced(t *testing.T, entry journal.Entry) {
	t.Helper()
	require.True(t, entry.DebitTotal().Equal(entry.CreditTotal()),
		"entry %d unbalanced: debit=%s credit=%s", entry.ID, entry.DebitTotal(), entry.CreditTotal())
}

func TestPostSaleCashWithTax(t *testing.T) {
	e := newEnv(t)
	e.sales.invoices[10] = sales.Invoice{
		ID: 10, CompanyID: testCompany, CustomerID: 77, Number: "INV-10",
		Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Subtotal: money(100), Tax: money(7.5), Total: money(107.5),
		IsCash: true, Status: sales.InvoiceStatusApproved,
	}

	entry, err := e.svc.PostSale(context.Background(), 10)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Len(t, entry.Lines, 3)

	// Cash sale debits the bank account, not receivables.
	require.Equal(t, e.bank.ID, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].Debit.Equal(money(107.5)))
	require.Equal(t, e.revenue.ID, entry.Lines[1].AccountID)
	require.True(t, entry.Lines[1].Credit.Equal(money(100)))
	require.Equal(t, e.taxPayable.ID, entry.Lines[2].AccountID)
	require.True(t, entry.Lines[2].Credit.Equal(money(7.5)))

	require.NotNil(t, entry.CustomerID)
	require.Equal(t, int64(77), *entry.CustomerID)
	require.True(t, e.sales.invoices[10].Posted)
	require.Equal(t, sales.InvoiceStatusCompleted, e.sales.invoices[10].Status)
}

func TestPostSaleOnAccountNoTax(t *testing.T) {
	e := newEnv(t)
	e.sales.invoices[11] = sales.Invoice{
		ID: 11, CompanyID: testCompany, CustomerID: 77, Number: "INV-11",
		Subtotal: money(250), Tax: decimal.Zero, Total: money(250),
		Status: sales.InvoiceStatusApproved,
	}

	entry, err := e.svc.PostSale(context.Background(), 11)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Len(t, entry.Lines, 2)
	require.Equal(t, e.ar.ID, entry.Lines[0].AccountID)
}

func TestPostSaleIdempotent(t *testing.T) {
	e := newEnv(t)
	e.sales.invoices[12] = sales.Invoice{
		ID: 12, CompanyID: testCompany, CustomerID: 1, Number: "INV-12",
		Subtotal: money(50), Total: money(50), Status: sales.InvoiceStatusApproved,
	}

	first, err := e.svc.PostSale(context.Background(), 12)
	require.NoError(t, err)
	second, err := e.svc.PostSale(context.Background(), 12)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, e.ledger.entries, 1)
}

func TestPostSaleSyncsStaleFlag(t *testing.T) {
	e := newEnv(t)
	e.sales.invoices[13] = sales.Invoice{
		ID: 13, CompanyID: testCompany, CustomerID: 1, Number: "INV-13",
		Subtotal: money(50), Total: money(50), Status: sales.InvoiceStatusApproved,
	}
	_, err := e.svc.PostSale(context.Background(), 13)
	require.NoError(t, err)

	// Someone flipped the flag back without touching the journal.
	inv := e.sales.invoices[13]
	inv.Posted = false
	e.sales.invoices[13] = inv

	_, err = e.svc.PostSale(context.Background(), 13)
	require.NoError(t, err)
	require.True(t, e.sales.invoices[13].Posted)
	require.Len(t, e.ledger.entries, 1)
}

func TestPostSaleMissingRule(t *testing.T) {
	e := newEnv(t)
	e.rules.byKey = map[string]rules.Rule{}
	e.sales.invoices[14] = sales.Invoice{
		ID: 14, CompanyID: testCompany, CustomerID: 1, Number: "INV-14",
		Subtotal: money(50), Total: money(50),
	}
	_, err := e.svc.PostSale(context.Background(), 14)
	require.ErrorIs(t, err, shared.ErrRuleNotFound)
	require.Empty(t, e.ledger.entries)
}

func TestPostSaleConvergesAfterLosingInsertRace(t *testing.T) {
	e := newEnv(t)
	e.sales.invoices[15] = sales.Invoice{
		ID: 15, CompanyID: testCompany, CustomerID: 1, Number: "INV-15",
		Subtotal: money(80), Total: money(80), Status: sales.InvoiceStatusApproved,
	}

	source := shared.SourceRef{Kind: shared.DocTypeSale, ID: 15}
	winner := journal.Entry{ID: 900, CompanyID: testCompany, Posted: true, Source: source}
	e.svc = NewService(Deps{
		Tx:         passTx{},
		Rules:      e.rules,
		Accounts:   e.accounts,
		Ledger:     &racingLedger{fakeLedger: e.ledger, winner: winner},
		Sales:      e.sales,
		Purchasing: e.purchasing,
		Expenses:   e.expenses,
		Banking:    e.banking,
	})

	// The insert loses the unique-index race; the caller still gets the
	// winner's entry and the invoice flag ends up set.
	entry, err := e.svc.PostSale(context.Background(), 15)
	require.NoError(t, err)
	require.Equal(t, winner.ID, entry.ID)
	require.True(t, e.sales.invoices[15].Posted)
	require.Len(t, e.ledger.entries, 1)
}

func TestPostPurchaseRejectsDraft(t *testing.T) {
	e := newEnv(t)
	e.purchasing.orders[20] = purchasing.Order{
		ID: 20, CompanyID: testCompany, SupplierID: 5, Number: "PO-20",
		Subtotal: money(100), Total: money(100),
		Status: purchasing.OrderStatusDraft, AccountingStatus: purchasing.AccountingStatusDraft,
	}
	_, err := e.svc.PostPurchase(context.Background(), 20)
	require.ErrorIs(t, err, shared.ErrPrecondition)
	require.Empty(t, e.ledger.entries)
	require.False(t, e.purchasing.orders[20].Posted)
}

func TestPostPurchaseTaxFoldedIntoDebit(t *testing.T) {
	e := newEnv(t)
	e.purchasing.orders[21] = purchasing.Order{
		ID: 21, CompanyID: testCompany, SupplierID: 5, Number: "PO-21",
		Date:     time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Subtotal: money(200), Tax: money(16), Total: money(216),
		Status: purchasing.OrderStatusApproved, AccountingStatus: purchasing.AccountingStatusReady,
	}

	entry, err := e.svc.PostPurchase(context.Background(), 21)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Len(t, entry.Lines, 3)

	// Goods and tax both land on the rule's debit account; the credit side
	// carries the full total.
	require.Equal(t, e.cogs.ID, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].Debit.Equal(money(200)))
	require.Equal(t, e.cogs.ID, entry.Lines[1].AccountID)
	require.True(t, entry.Lines[1].Debit.Equal(money(16)))
	require.Equal(t, e.ap.ID, entry.Lines[2].AccountID)
	require.True(t, entry.Lines[2].Credit.Equal(money(216)))

	require.Equal(t, purchasing.AccountingStatusPosted, e.purchasing.orders[21].AccountingStatus)
}

func TestPostPurchaseCashCreditsBank(t *testing.T) {
	e := newEnv(t)
	e.purchasing.orders[22] = purchasing.Order{
		ID: 22, CompanyID: testCompany, SupplierID: 5, Number: "PO-22",
		Subtotal: money(80), Total: money(80), IsCash: true,
		Status: purchasing.OrderStatusApproved, AccountingStatus: purchasing.AccountingStatusReady,
	}
	entry, err := e.svc.PostPurchase(context.Background(), 22)
	require.NoError(t, err)
	require.Equal(t, e.bank.ID, entry.Lines[len(entry.Lines)-1].AccountID)
}

func TestPostIncomingPaymentUsesLedgerLink(t *testing.T) {
	e := newEnv(t)
	savings := e.accounts.add(testCompany, accounts.Seed{Code: accounts.CodeBankSavings, Name: "Bank - Savings", Type: accounts.AccountTypeAsset})
	linked := savings.ID
	e.banking.accounts[3] = banking.FinancialAccount{
		ID: 3, CompanyID: testCompany, Name: "Savings", AccountType: "savings", LedgerAccountID: &linked,
	}
	faID := int64(3)
	e.sales.payments[30] = sales.Payment{
		ID: 30, CompanyID: testCompany, Number: "RCPT-30",
		Amount: money(120), ReceivedAt: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		Status: sales.PaymentStatusPending, FinancialAccountID: &faID,
	}

	entry, err := e.svc.PostIncomingPayment(context.Background(), 30)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Equal(t, savings.ID, entry.Lines[0].AccountID)
	require.Equal(t, e.ar.ID, entry.Lines[1].AccountID)
	require.Equal(t, sales.PaymentStatusCompleted, e.sales.payments[30].Status)
}

func TestPostIncomingPaymentResolvesCompanyFromInvoice(t *testing.T) {
	e := newEnv(t)
	e.sales.invoices[10] = sales.Invoice{
		ID: 10, CompanyID: testCompany, CustomerID: 99, Number: "INV-10",
		Subtotal: money(100), Total: money(100),
	}
	invoiceID := int64(10)
	e.sales.payments[31] = sales.Payment{
		ID: 31, Number: "RCPT-31", InvoiceID: &invoiceID,
		Amount: money(100), Status: sales.PaymentStatusPending,
	}

	entry, err := e.svc.PostIncomingPayment(context.Background(), 31)
	require.NoError(t, err)
	require.Equal(t, testCompany, entry.CompanyID)
	require.NotNil(t, entry.CustomerID)
	require.Equal(t, int64(99), *entry.CustomerID)
}

func TestPostIncomingPaymentRejectsNonPositive(t *testing.T) {
	e := newEnv(t)
	e.sales.payments[32] = sales.Payment{
		ID: 32, CompanyID: testCompany, Number: "RCPT-32", Amount: decimal.Zero,
	}
	_, err := e.svc.PostIncomingPayment(context.Background(), 32)
	require.ErrorIs(t, err, shared.ErrPrecondition)
}

func TestPostOutgoingPaymentAdvance(t *testing.T) {
	e := newEnv(t)
	e.purchasing.payments[40] = purchasing.Payment{
		ID: 40, CompanyID: testCompany, Number: "PAY-40",
		Amount: money(500), PaidAt: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		IsAdvance: true,
	}

	entry, err := e.svc.PostOutgoingPayment(context.Background(), 40)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Equal(t, e.advances.ID, entry.Lines[0].AccountID)
	require.Equal(t, e.bank.ID, entry.Lines[1].AccountID)
}

func TestPostOutgoingPaymentAdvanceFallsBackWithoutAdvancesAccount(t *testing.T) {
	e := newEnv(t)
	delete(e.accounts.byID, e.advances.ID)
	e.purchasing.payments[41] = purchasing.Payment{
		ID: 41, CompanyID: testCompany, Number: "PAY-41",
		Amount: money(500), IsAdvance: true,
	}

	entry, err := e.svc.PostOutgoingPayment(context.Background(), 41)
	require.NoError(t, err)
	require.Equal(t, e.ap.ID, entry.Lines[0].AccountID)
}

func TestPostOutgoingPaymentUnbilledOrderIsAdvance(t *testing.T) {
	e := newEnv(t)
	e.purchasing.orders[21] = purchasing.Order{
		ID: 21, CompanyID: testCompany, SupplierID: 8, Number: "PO-21",
		Subtotal: money(300), Total: money(300), Billed: false,
		Status: purchasing.OrderStatusApproved, AccountingStatus: purchasing.AccountingStatusReady,
	}
	orderID := int64(21)
	e.purchasing.payments[42] = purchasing.Payment{
		ID: 42, Number: "PAY-42", OrderID: &orderID, Amount: money(150),
	}

	entry, err := e.svc.PostOutgoingPayment(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, e.advances.ID, entry.Lines[0].AccountID)
	require.NotNil(t, entry.SupplierID)
	require.Equal(t, int64(8), *entry.SupplierID)
}

func TestPostOutgoingPaymentMissingBankFails(t *testing.T) {
	e := newEnv(t)
	e.purchasing.payments[43] = purchasing.Payment{
		ID: 43, CompanyID: testCompany, Number: "PAY-43",
		Amount: money(100), BankAccountCode: "1099",
	}
	_, err := e.svc.PostOutgoingPayment(context.Background(), 43)
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
	require.Empty(t, e.ledger.entries)
}

func TestPostExpenseUnpaidAutoCreatesAccounts(t *testing.T) {
	e := newEnv(t)
	delete(e.accounts.byID, e.ap.ID)
	vendor := int64(9)
	e.expenses.items[50] = expenses.Expense{
		ID: 50, CompanyID: testCompany, VendorID: &vendor, Number: "EXP-50",
		Date:     time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		Category: "rent", Paid: false,
		TaxAmount: decimal.Zero, TotalAmount: money(1200),
	}

	entry, err := e.svc.PostExpense(context.Background(), 50)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Len(t, entry.Lines, 2)

	rent, err := e.accounts.GetByCode(context.Background(), testCompany, "5100")
	require.NoError(t, err)
	ap, err := e.accounts.GetByCode(context.Background(), testCompany, accounts.CodeAP)
	require.NoError(t, err)
	require.Equal(t, rent.ID, entry.Lines[0].AccountID)
	require.Equal(t, ap.ID, entry.Lines[1].AccountID)
	require.NotNil(t, entry.SupplierID)
	require.Equal(t, vendor, *entry.SupplierID)
	require.True(t, e.expenses.items[50].Posted)
}

func TestPostExpensePaidWithTax(t *testing.T) {
	e := newEnv(t)
	e.expenses.items[51] = expenses.Expense{
		ID: 51, CompanyID: testCompany, Number: "EXP-51",
		Category: "software", Paid: true,
		TaxAmount: money(8), TotalAmount: money(108),
	}

	entry, err := e.svc.PostExpense(context.Background(), 51)
	require.NoError(t, err)
	requireBalanced(t, entry)
	require.Len(t, entry.Lines, 3)

	software, err := e.accounts.GetByCode(context.Background(), testCompany, "6100")
	require.NoError(t, err)
	taxExpense, err := e.accounts.GetByCode(context.Background(), testCompany, accounts.CodeSalesTaxExpense)
	require.NoError(t, err)

	require.Equal(t, software.ID, entry.Lines[0].AccountID)
	require.True(t, entry.Lines[0].Debit.Equal(money(100)))
	require.Equal(t, taxExpense.ID, entry.Lines[1].AccountID)
	require.True(t, entry.Lines[1].Debit.Equal(money(8)))
	require.Equal(t, e.bank.ID, entry.Lines[2].AccountID)
	require.True(t, entry.Lines[2].Credit.Equal(money(108)))
}

func TestPostExpenseUnknownCategoryFallsBack(t *testing.T) {
	e := newEnv(t)
	e.expenses.items[52] = expenses.Expense{
		ID: 52, CompanyID: testCompany, Number: "EXP-52",
		Category: "unmapped-category", Paid: true, TotalAmount: money(10),
	}
	entry, err := e.svc.PostExpense(context.Background(), 52)
	require.NoError(t, err)

	other, err := e.accounts.GetByCode(context.Background(), testCompany, "6900")
	require.NoError(t, err)
	require.Equal(t, other.ID, entry.Lines[0].AccountID)
}

func TestRollbackResetsSourceAndDeletesEntry(t *testing.T) {
	e := newEnv(t)
	e.sales.invoices[10] = sales.Invoice{
		ID: 10, CompanyID: testCompany, CustomerID: 1, Number: "INV-10",
		Subtotal: money(100), Total: money(100), Status: sales.InvoiceStatusApproved,
	}
	entry, err := e.svc.PostSale(context.Background(), 10)
	require.NoError(t, err)
	require.True(t, e.sales.invoices[10].Posted)

	result, err := e.svc.Rollback(context.Background(), entry.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.True(t, result.SourceUpdated)
	require.Empty(t, e.ledger.entries)
	require.False(t, e.sales.invoices[10].Posted)
	require.Equal(t, sales.InvoiceStatusApproved, e.sales.invoices[10].Status)

	// The document can be posted again afterwards.
	again, err := e.svc.PostSale(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, e.ledger.entries, 1)
	requireBalanced(t, again)
}

func TestRollbackVanishedSource(t *testing.T) {
	e := newEnv(t)
	e.sales.invoices[10] = sales.Invoice{
		ID: 10, CompanyID: testCompany, CustomerID: 1, Number: "INV-10",
		Subtotal: money(100), Total: money(100),
	}
	entry, err := e.svc.PostSale(context.Background(), 10)
	require.NoError(t, err)

	delete(e.sales.invoices, 10)

	result, err := e.svc.Rollback(context.Background(), entry.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.False(t, result.SourceUpdated)
	require.Empty(t, e.ledger.entries)
}

func TestRollbackUnknownEntry(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Rollback(context.Background(), 999)
	require.ErrorIs(t, err, shared.ErrJournalNotFound)
}
