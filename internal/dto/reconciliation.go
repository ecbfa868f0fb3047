package dto

import "encoding/json"

// RegisterSourceRequest registers a domain event snapshot for journal generation.
type RegisterSourceRequest struct {
	SourceType string          `json:"sourceType" binding:"required,oneof=SALE PURCHASE PRODUCTION EXPENSE_PAYMENT INVENTORY_ADJUSTMENT"`
	SourceID   string          `json:"sourceID" binding:"required"`
	Reference  string          `json:"reference"`
	Payload    json.RawMessage `json:"payload" binding:"required"`
	// GenerateNow posts the journal immediately instead of waiting for the sweep.
	GenerateNow bool `json:"generateNow"`
}

// RegisterSourceResponse reports the registered document and, when generated, its journal.
type RegisterSourceResponse struct {
	SourceType        string `json:"sourceType"`
	SourceID          string `json:"sourceID"`
	TransactionNumber string `json:"transactionNumber,omitempty"`
}
