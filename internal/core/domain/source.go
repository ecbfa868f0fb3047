package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SourceType identifies the kind of domain event a journal is generated from.
type SourceType string

const (
	SourceSale                SourceType = "SALE"
	SourcePurchase            SourceType = "PURCHASE"
	SourceProduction          SourceType = "PRODUCTION"
	SourceExpensePayment      SourceType = "EXPENSE_PAYMENT"
	SourceInventoryAdjustment SourceType = "INVENTORY_ADJUSTMENT"
)

// Valid reports whether t is a known source type.
func (t SourceType) Valid() bool {
	switch t {
	case SourceSale, SourcePurchase, SourceProduction, SourceExpensePayment, SourceInventoryAdjustment:
		return true
	}
	return false
}

// Label is the human-readable noun used when describing entries of this source.
func (t SourceType) Label() string {
	switch t {
	case SourceSale:
		return "Sale"
	case SourcePurchase:
		return "Purchase"
	case SourceProduction:
		return "Production"
	case SourceExpensePayment:
		return "Expense payment"
	case SourceInventoryAdjustment:
		return "Inventory adjustment"
	}
	return string(t)
}

// PaymentCredit marks a sale or purchase settled on account rather than paid.
const PaymentCredit = "CREDIT"

// SourceDocument is a domain event snapshot registered by a collaborator.
// JournalGenerated is the caller-owned marker the reconciliation sweep keys off.
type SourceDocument struct {
	SourceType        SourceType      `json:"sourceType"`
	SourceID          string          `json:"sourceID"`
	Reference         string          `json:"reference"`
	Payload           json.RawMessage `json:"payload"`
	JournalGenerated  bool            `json:"journalGenerated"`
	TransactionNumber string          `json:"transactionNumber,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	GeneratedAt       *time.Time      `json:"generatedAt,omitempty"`
}

// SaleLine is one sold item. Cost is the pre-computed cost of goods for the line.
type SaleLine struct {
	ItemCode     string          `json:"itemCode"`
	MaterialType string          `json:"materialType"`
	Amount       decimal.Decimal `json:"amount"`
	Cost         decimal.Decimal `json:"cost"`
}

// SaleSnapshot is what the sales service hands the ledger.
type SaleSnapshot struct {
	SaleID        string          `json:"saleID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Date          time.Time       `json:"date"`
	CustomerName  string          `json:"customerName"`
	PaymentMethod string          `json:"paymentMethod"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Lines         []SaleLine      `json:"lines"`
}

// PurchaseLine is one purchased material.
type PurchaseLine struct {
	MaterialType string          `json:"materialType"`
	Amount       decimal.Decimal `json:"amount"`
}

// PurchaseSnapshot is what the purchasing service hands the ledger.
type PurchaseSnapshot struct {
	PurchaseID    string          `json:"purchaseID"`
	BillNumber    string          `json:"billNumber"`
	Date          time.Time       `json:"date"`
	SupplierName  string          `json:"supplierName"`
	PaymentMethod string          `json:"paymentMethod"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Lines         []PurchaseLine  `json:"lines"`
}

// MaterialConsumption is material drawn from inventory by a production run.
type MaterialConsumption struct {
	MaterialType string          `json:"materialType"`
	Cost         decimal.Decimal `json:"cost"`
}

// ProductionSnapshot is what the production service hands the ledger.
type ProductionSnapshot struct {
	ProductionID      string                `json:"productionID"`
	BatchNumber       string                `json:"batchNumber"`
	Date              time.Time             `json:"date"`
	FinishedGoodsCost decimal.Decimal       `json:"finishedGoodsCost"`
	Materials         []MaterialConsumption `json:"materials"`
	LaborCost         decimal.Decimal       `json:"laborCost"`
	OverheadCost      decimal.Decimal       `json:"overheadCost"`
}

// ExpensePaymentSnapshot is what the expense service hands the ledger.
type ExpensePaymentSnapshot struct {
	PaymentID     string          `json:"paymentID"`
	Reference     string          `json:"reference"`
	Date          time.Time       `json:"date"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"paymentMethod"`
	Payee         string          `json:"payee"`
	Amount        decimal.Decimal `json:"amount"`
}

// InventoryAdjustmentSnapshot carries the pre-computed value of a stock count
// difference. Negative values are shrinkage, positive values are gains.
type InventoryAdjustmentSnapshot struct {
	AdjustmentID string          `json:"adjustmentID"`
	Reference    string          `json:"reference"`
	Date         time.Time       `json:"date"`
	MaterialType string          `json:"materialType"`
	Value        decimal.Decimal `json:"value"`
	Reason       string          `json:"reason"`
}

// ReconciledItem is a source document the sweep posted successfully.
type ReconciledItem struct {
	SourceType        SourceType `json:"sourceType"`
	SourceID          string     `json:"sourceID"`
	TransactionNumber string     `json:"transactionNumber"`
}

// FailedItem is a source document the sweep could not post.
type FailedItem struct {
	SourceType SourceType `json:"sourceType"`
	SourceID   string     `json:"sourceID"`
	Reason     string     `json:"reason"`
}

// ReconciliationReport summarises one sweep over ungenerated source documents.
type ReconciliationReport struct {
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Succeeded  []ReconciledItem `json:"succeeded"`
	Failed     []FailedItem     `json:"failed"`
}
