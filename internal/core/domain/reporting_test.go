package domain_test

import (
	"testing"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsCashAccount(t *testing.T) {
	tests := []struct {
		code    string
		subType string
		want    bool
	}{
		{"1000", "", true},
		{"1099", "", true},
		{"1100", "", false},
		{"1150", "bank", true},
		{"9999", domain.SubTypeCashEquivalent, true},
		{"CASH-A", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.subType, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsCashAccount(tt.code, tt.subType))
		})
	}
}

func TestClassifyCashFlow(t *testing.T) {
	assert.Equal(t, domain.CashFlowInvesting, domain.ClassifyCashFlow("1510"))
	assert.Equal(t, domain.CashFlowFinancing, domain.ClassifyCashFlow("2500"))
	assert.Equal(t, domain.CashFlowFinancing, domain.ClassifyCashFlow("3000"))
	assert.Equal(t, domain.CashFlowOperating, domain.ClassifyCashFlow("2000"))
	assert.Equal(t, domain.CashFlowOperating, domain.ClassifyCashFlow("4000"))
	assert.Equal(t, domain.CashFlowOperating, domain.ClassifyCashFlow("misc"))
}

func TestAccountAggregate_NormalBalance(t *testing.T) {
	rev := domain.AccountAggregate{AccountType: domain.Revenue, TotalDebit: decimal.NewFromInt(20), TotalCredit: decimal.NewFromInt(500)}
	assert.True(t, rev.NormalBalance().Equal(decimal.NewFromInt(480)))
	cash := domain.AccountAggregate{AccountType: domain.Asset, TotalDebit: decimal.NewFromInt(20), TotalCredit: decimal.NewFromInt(500)}
	assert.True(t, cash.NormalBalance().Equal(decimal.NewFromInt(-480)))
}
