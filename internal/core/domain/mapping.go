package domain

import "strings"

// MappingType groups account mapping rules.
type MappingType string

const (
	MappingExpenseCategory MappingType = "EXPENSE_CATEGORY"
	MappingMaterialType    MappingType = "MATERIAL_TYPE"
	MappingPaymentMethod   MappingType = "PAYMENT_METHOD"
	MappingControl         MappingType = "CONTROL"
)

// Control keys name the fixed roles generators post against.
const (
	ControlAccountsReceivable        = "ACCOUNTS_RECEIVABLE"
	ControlAccountsPayable           = "ACCOUNTS_PAYABLE"
	ControlSalesRevenue              = "SALES_REVENUE"
	ControlSalesTaxPayable           = "SALES_TAX_PAYABLE"
	ControlPurchaseTaxReceivable     = "PURCHASE_TAX_RECEIVABLE"
	ControlCostOfGoodsSold           = "COST_OF_GOODS_SOLD"
	ControlFinishedGoods             = "FINISHED_GOODS"
	ControlProductionLaborApplied    = "PRODUCTION_LABOR_APPLIED"
	ControlProductionOverheadApplied = "PRODUCTION_OVERHEAD_APPLIED"
	ControlInventoryShrinkage        = "INVENTORY_SHRINKAGE"
	ControlInventoryGain             = "INVENTORY_GAIN"
)

// AccountMapping maps a domain category to the code of the account it posts to.
type AccountMapping struct {
	MappingType MappingType `json:"mappingType"`
	Key         string      `json:"key"`
	AccountCode string      `json:"accountCode"`
}

// NormalizeMappingKey canonicalises category keys so "Office supplies" and
// "OFFICE_SUPPLIES" resolve alike.
func NormalizeMappingKey(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(key)
}
