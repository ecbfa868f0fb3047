package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,max=20"`
	Name            string             `json:"name" binding:"required"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	SubType         string             `json:"subType"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	Description     string             `json:"description"`
	IsSystem        bool               `json:"isSystem"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name            *string             `json:"name"`
	Description     *string             `json:"description"`
	IsActive        *bool               `json:"isActive"`
	ParentAccountID *string             `json:"parentAccountID"`
	ClearParent     bool                `json:"clearParent"` // Detach from parent; ParentAccountID is ignored
	Code            *string             `json:"code"`        // Only honoured while the account has no activity
	SubType         *string             `json:"subType"`     // Only honoured while the account has no activity
	AccountType     *domain.AccountType `json:"accountType"` // Always rejected when it differs
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID           string             `json:"accountID"`
	Code                string             `json:"code"`
	Name                string             `json:"name"`
	AccountType         domain.AccountType `json:"accountType"`
	SubType             string             `json:"subType"`
	ParentAccountID     string             `json:"parentAccountID"` // Note: Empty string if null in DB
	Description         string             `json:"description"`
	IsActive            bool               `json:"isActive"`
	IsSystem            bool               `json:"isSystem"`
	Balance             decimal.Decimal    `json:"balance"`
	LastTransactionDate *time.Time         `json:"lastTransactionDate,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	CreatedBy           string             `json:"createdBy"`
	LastUpdatedAt       time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy       string             `json:"lastUpdatedBy"`
}

// UpdateAccountResponse carries the updated account and any ignored-field warnings.
type UpdateAccountResponse struct {
	Account  AccountResponse `json:"account"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	res := AccountResponse{
		AccountID:           acc.AccountID,
		Code:                acc.Code,
		Name:                acc.Name,
		AccountType:         acc.AccountType,
		SubType:             acc.SubType,
		Description:         acc.Description,
		IsActive:            acc.IsActive,
		IsSystem:            acc.IsSystem,
		Balance:             acc.Balance,
		LastTransactionDate: acc.LastTransactionDate,
		CreatedAt:           acc.CreatedAt,
		CreatedBy:           acc.CreatedBy,
		LastUpdatedAt:       acc.LastUpdatedAt,
		LastUpdatedBy:       acc.LastUpdatedBy,
	}
	if acc.ParentAccountID != nil {
		res.ParentAccountID = *acc.ParentAccountID
	}
	return res
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ToUpdateAccountResponse converts an update result.
func ToUpdateAccountResponse(result *domain.AccountUpdateResult) UpdateAccountResponse {
	return UpdateAccountResponse{
		Account:  ToAccountResponse(result.Account),
		Warnings: result.Warnings,
	}
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	ActiveOnly  bool   `form:"activeOnly"`
	AccountType string `form:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	SubType     string `form:"subType"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListAccountsParams) ToFilter() domain.AccountFilter {
	return domain.AccountFilter{
		ActiveOnly:  p.ActiveOnly,
		AccountType: domain.AccountType(p.AccountType),
		SubType:     p.SubType,
	}
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// SeedChartResponse reports how many default accounts were installed.
type SeedChartResponse struct {
	Created int `json:"created"`
}
