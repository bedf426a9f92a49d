package rules

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/platform/db"
)

// Repository resolves posting rules with their accounts preloaded.
type Repository interface {
	Get(ctx context.Context, companyID int64, docType shared.DocType) (Rule, error)
	Upsert(ctx context.Context, in UpsertInput) (Rule, error)
}

type repository struct {
	db *db.Runner
}

func NewRepository(runner *db.Runner) Repository {
	return &repository{db: runner}
}

const ruleQuery = `
SELECT r.id, r.company_id, r.doc_type, r.created_at, r.updated_at,
       d.id, d.company_id, d.code, d.name, d.type, d.is_active, d.created_at, d.updated_at,
       c.id, c.company_id, c.code, c.name, c.type, c.is_active, c.created_at, c.updated_at,
       t.id, t.company_id, t.code, t.name, t.type, t.is_active, t.created_at, t.updated_at
FROM posting_rules r
JOIN gl_accounts d ON d.id = r.debit_account_id
JOIN gl_accounts c ON c.id = r.credit_account_id
LEFT JOIN gl_accounts t ON t.id = r.tax_account_id
WHERE r.company_id=$1 AND r.doc_type=$2`

func (r *repository) Get(ctx context.Context, companyID int64, docType shared.DocType) (Rule, error) {
	row := r.db.Querier(ctx).QueryRow(ctx, ruleQuery, companyID, docType)
	var rule Rule
	var debit, credit accounts.Account
	var taxID *int64
	var taxCompany *int64
	var taxCode, taxName *string
	var taxType *accounts.AccountType
	var taxActive *bool
	var taxCreated, taxUpdated *time.Time
	err := row.Scan(
		&rule.ID, &rule.CompanyID, &rule.DocType, &rule.CreatedAt, &rule.UpdatedAt,
		&debit.ID, &debit.CompanyID, &debit.Code, &debit.Name, &debit.Type, &debit.IsActive, &debit.CreatedAt, &debit.UpdatedAt,
		&credit.ID, &credit.CompanyID, &credit.Code, &credit.Name, &credit.Type, &credit.IsActive, &credit.CreatedAt, &credit.UpdatedAt,
		&taxID, &taxCompany, &taxCode, &taxName, &taxType, &taxActive, &taxCreated, &taxUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, shared.MissingRule(companyID, docType)
		}
		return Rule{}, err
	}
	rule.DebitAccount = debit
	rule.CreditAccount = credit
	if taxID != nil {
		tax := accounts.Account{
			ID:        *taxID,
			CompanyID: *taxCompany,
			Code:      *taxCode,
			Name:      *taxName,
			Type:      *taxType,
			IsActive:  *taxActive,
		}
		if taxCreated != nil {
			tax.CreatedAt = *taxCreated
		}
		if taxUpdated != nil {
			tax.UpdatedAt = *taxUpdated
		}
		rule.TaxAccount = &tax
	}
	return rule, nil
}

func (r *repository) Upsert(ctx context.Context, in UpsertInput) (Rule, error) {
	_, err := r.db.Querier(ctx).Exec(ctx,
		`INSERT INTO posting_rules (company_id, doc_type, debit_account_id, credit_account_id, tax_account_id)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (company_id, doc_type) DO UPDATE
SET debit_account_id=EXCLUDED.debit_account_id,
    credit_account_id=EXCLUDED.credit_account_id,
    tax_account_id=EXCLUDED.tax_account_id,
    updated_at=NOW()`,
		in.CompanyID, in.DocType, in.DebitAccountID, in.CreditAccountID, in.TaxAccountID)
	if err != nil {
		return Rule{}, err
	}
	return r.Get(ctx, in.CompanyID, in.DocType)
}
