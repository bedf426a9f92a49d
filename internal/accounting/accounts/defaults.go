package accounts

import "sort"

// Well-known account codes referenced by the posting engine.
const (
	CodeBankChecking    = "1010"
	CodeBankSavings     = "1020"
	CodeAR              = "1200"
	CodeVendorAdvances  = "1310"
	CodeAP              = "2000"
	CodeCreditCard      = "2100"
	CodeLineOfCredit    = "2200"
	CodeSalesTaxPayable = "2300"
	CodeSalesRevenue    = "4000"
	CodeSalesTaxExpense = "5050"
)

// Seed describes one default chart entry.
type Seed struct {
	Code string
	Name string
	Type AccountType
}

// DefaultChart returns the chart of accounts provisioned for a new company.
func DefaultChart() []Seed {
	chart := []Seed{
		{Code: CodeBankChecking, Name: "Bank - Checking", Type: AccountTypeAsset},
		{Code: CodeBankSavings, Name: "Bank - Savings", Type: AccountTypeAsset},
		{Code: CodeAR, Name: "Accounts Receivable", Type: AccountTypeAsset},
		{Code: CodeVendorAdvances, Name: "Vendor Advances", Type: AccountTypeAsset},
		{Code: CodeAP, Name: "Accounts Payable", Type: AccountTypeLiability},
		{Code: CodeCreditCard, Name: "Credit Card", Type: AccountTypeLiability},
		{Code: CodeLineOfCredit, Name: "Line of Credit", Type: AccountTypeLiability},
		{Code: CodeSalesTaxPayable, Name: "Sales Tax Payable", Type: AccountTypeLiability},
		{Code: "3000", Name: "Owner's Equity", Type: AccountTypeEquity},
		{Code: CodeSalesRevenue, Name: "Sales Revenue", Type: AccountTypeRevenue},
		{Code: CodeSalesTaxExpense, Name: "Sales Tax Expense", Type: AccountTypeExpense},
		{Code: "5000", Name: "Cost of Goods Sold", Type: AccountTypeExpense},
	}
	for _, seed := range ExpenseCategorySeeds() {
		chart = append(chart, seed)
	}
	return chart
}

// expenseCategories maps expense document categories to their default expense
// accounts. The codes 5100-6900 mirror the numbering used on historical data.
var expenseCategories = map[string]Seed{
	"rent":                  {Code: "5100", Name: "Rent Expense", Type: AccountTypeExpense},
	"utilities":             {Code: "5200", Name: "Utilities Expense", Type: AccountTypeExpense},
	"office_supplies":       {Code: "5300", Name: "Office Supplies Expense", Type: AccountTypeExpense},
	"travel":                {Code: "5400", Name: "Travel Expense", Type: AccountTypeExpense},
	"meals":                 {Code: "5500", Name: "Meals & Entertainment", Type: AccountTypeExpense},
	"marketing":             {Code: "5600", Name: "Marketing Expense", Type: AccountTypeExpense},
	"insurance":             {Code: "5700", Name: "Insurance Expense", Type: AccountTypeExpense},
	"professional_services": {Code: "5800", Name: "Professional Services", Type: AccountTypeExpense},
	"repairs":               {Code: "5900", Name: "Repairs & Maintenance", Type: AccountTypeExpense},
	"software":              {Code: "6100", Name: "Software & Subscriptions", Type: AccountTypeExpense},
	"salaries":              {Code: "6300", Name: "Salaries & Wages", Type: AccountTypeExpense},
	"taxes_licenses":        {Code: "6500", Name: "Taxes & Licenses", Type: AccountTypeExpense},
	"other":                 {Code: "6900", Name: "Other Expense", Type: AccountTypeExpense},
}

// ExpenseCategorySeed resolves the default account for an expense category.
// Unknown categories fall back to the catch-all account.
func ExpenseCategorySeed(category string) Seed {
	if seed, ok := expenseCategories[category]; ok {
		return seed
	}
	return expenseCategories["other"]
}

// ExpenseCategorySeeds returns every category default, ordered by code.
func ExpenseCategorySeeds() []Seed {
	out := make([]Seed, 0, len(expenseCategories))
	for _, seed := range expenseCategories {
		out = append(out, seed)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// DefaultCodeForFinancialAccount maps a financial account type to the ledger
// code used when the account has no explicit ledger link.
func DefaultCodeForFinancialAccount(accountType string) string {
	switch accountType {
	case "checking":
		return CodeBankChecking
	case "savings":
		return CodeBankSavings
	case "credit_card":
		return CodeCreditCard
	case "line_of_credit":
		return CodeLineOfCredit
	}
	return ""
}
