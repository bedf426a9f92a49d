package companies

import "time"

// Company is a tenant; every ledger account, rule and document hangs off one.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput is the payload for registering a company.
type CreateInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}
