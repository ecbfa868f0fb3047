package domain

// DefaultAccount is an entry of the seed chart of accounts.
type DefaultAccount struct {
	Code        string
	Name        string
	Type        AccountType
	SubType     string
	ParentCode  string
	IsSystem    bool
	Description string
}

// DefaultChart returns the chart installed by a fresh seed, parents before children.
func DefaultChart() []DefaultAccount {
	return []DefaultAccount{
		{Code: "1000", Name: "Cash on Hand", Type: Asset, SubType: SubTypeCash, IsSystem: true},
		{Code: "1010", Name: "Bank Account", Type: Asset, SubType: SubTypeBank, IsSystem: true},
		{Code: "1100", Name: "Accounts Receivable", Type: Asset, SubType: SubTypeReceivable, IsSystem: true},
		{Code: "1200", Name: "Inventory", Type: Asset, SubType: SubTypeInventory, Description: "Inventory control"},
		{Code: "1210", Name: "Raw Materials Inventory", Type: Asset, SubType: SubTypeInventory, ParentCode: "1200"},
		{Code: "1220", Name: "Packaging Inventory", Type: Asset, SubType: SubTypeInventory, ParentCode: "1200"},
		{Code: "1230", Name: "Finished Goods Inventory", Type: Asset, SubType: SubTypeInventory, ParentCode: "1200", IsSystem: true},
		{Code: "1300", Name: "Purchase Tax Receivable", Type: Asset, SubType: SubTypeTax},
		{Code: "1500", Name: "Fixed Assets", Type: Asset, SubType: SubTypeFixedAsset},
		{Code: "1510", Name: "Equipment", Type: Asset, SubType: SubTypeFixedAsset, ParentCode: "1500"},
		{Code: "2000", Name: "Accounts Payable", Type: Liability, SubType: SubTypePayable, IsSystem: true},
		{Code: "2100", Name: "Sales Tax Payable", Type: Liability, SubType: SubTypeTax, IsSystem: true},
		{Code: "2500", Name: "Long-term Loans", Type: Liability},
		{Code: "3000", Name: "Owner's Capital", Type: Equity},
		{Code: "3200", Name: "Retained Earnings", Type: Equity, SubType: SubTypeRetained, IsSystem: true},
		{Code: "4000", Name: "Sales Revenue", Type: Revenue, IsSystem: true},
		{Code: "4100", Name: "Inventory Gains", Type: Revenue},
		{Code: "5000", Name: "Cost of Goods Sold", Type: Expense, SubType: SubTypeCostOfSales, IsSystem: true},
		{Code: "5100", Name: "Direct Labor", Type: Expense, SubType: SubTypeCostOfSales},
		{Code: "5150", Name: "Manufacturing Overhead", Type: Expense, SubType: SubTypeCostOfSales},
		{Code: "6000", Name: "Operating Expenses", Type: Expense, SubType: SubTypeOperating},
		{Code: "6100", Name: "Rent", Type: Expense, SubType: SubTypeOperating, ParentCode: "6000"},
		{Code: "6200", Name: "Utilities", Type: Expense, SubType: SubTypeOperating, ParentCode: "6000"},
		{Code: "6300", Name: "Salaries", Type: Expense, SubType: SubTypeOperating, ParentCode: "6000"},
		{Code: "6400", Name: "Office Supplies", Type: Expense, SubType: SubTypeOperating, ParentCode: "6000"},
		{Code: "6500", Name: "Transport", Type: Expense, SubType: SubTypeOperating, ParentCode: "6000"},
		{Code: "6800", Name: "Inventory Shrinkage", Type: Expense, SubType: SubTypeOperating, ParentCode: "6000"},
		{Code: "6900", Name: "Miscellaneous Expenses", Type: Expense, SubType: SubTypeOperating, ParentCode: "6000"},
	}
}

// DefaultAccountMappings returns the generator lookup table matching DefaultChart.
func DefaultAccountMappings() []AccountMapping {
	return []AccountMapping{
		{MappingExpenseCategory, "RENT", "6100"},
		{MappingExpenseCategory, "UTILITIES", "6200"},
		{MappingExpenseCategory, "SALARIES", "6300"},
		{MappingExpenseCategory, "OFFICE_SUPPLIES", "6400"},
		{MappingExpenseCategory, "TRANSPORT", "6500"},
		{MappingExpenseCategory, "MISCELLANEOUS", "6900"},
		{MappingMaterialType, "RAW_MATERIAL", "1210"},
		{MappingMaterialType, "PACKAGING", "1220"},
		{MappingMaterialType, "FINISHED_GOOD", "1230"},
		{MappingPaymentMethod, "CASH", "1000"},
		{MappingPaymentMethod, "BANK_TRANSFER", "1010"},
		{MappingPaymentMethod, "CARD", "1010"},
		{MappingPaymentMethod, "CHEQUE", "1010"},
		{MappingControl, ControlAccountsReceivable, "1100"},
		{MappingControl, ControlAccountsPayable, "2000"},
		{MappingControl, ControlSalesRevenue, "4000"},
		{MappingControl, ControlSalesTaxPayable, "2100"},
		{MappingControl, ControlPurchaseTaxReceivable, "1300"},
		{MappingControl, ControlCostOfGoodsSold, "5000"},
		{MappingControl, ControlFinishedGoods, "1230"},
		{MappingControl, ControlProductionLaborApplied, "5100"},
		{MappingControl, ControlProductionOverheadApplied, "5150"},
		{MappingControl, ControlInventoryShrinkage, "6800"},
		{MappingControl, ControlInventoryGain, "4100"},
	}
}
