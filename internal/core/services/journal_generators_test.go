package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/core/services"
)

// tableResolver resolves from the default mapping table without any storage.
type tableResolver map[string]string

func newTableResolver() tableResolver {
	r := tableResolver{}
	for _, m := range domain.DefaultAccountMappings() {
		r[string(m.MappingType)+"/"+m.Key] = m.AccountCode
	}
	return r
}

func (r tableResolver) ResolveAccountCode(_ context.Context, t domain.MappingType, key string) (string, error) {
	code, ok := r[string(t)+"/"+domain.NormalizeMappingKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s %s", apperrors.ErrAccountMappingMissing, t, key)
	}
	return code, nil
}

var _ services.AccountResolver = tableResolver{}

type side struct {
	code   string
	debit  string
	credit string
}

func sides(lines []domain.JournalLine) []side {
	out := make([]side, len(lines))
	for i, l := range lines {
		out[i] = side{code: l.AccountCode, debit: l.Debit.StringFixed(2), credit: l.Credit.StringFixed(2)}
	}
	return out
}

func assertBalanced(t *testing.T, lines []domain.JournalLine) {
	t.Helper()
	dr, cr := domain.JournalTotals(lines)
	assert.True(t, dr.Equal(cr), "debits %s != credits %s", dr, cr)
}

func TestBuildSaleLines(t *testing.T) {
	ctx := context.Background()
	sale := domain.SaleSnapshot{
		SaleID:        "s1",
		InvoiceNumber: "INV-1021",
		PaymentMethod: "credit",
		Subtotal:      money("1000.00"),
		Tax:           money("150.00"),
		Total:         money("1150.00"),
		Lines: []domain.SaleLine{
			{ItemCode: "A", MaterialType: "FINISHED_GOOD", Amount: money("600"), Cost: money("300.00")},
			{ItemCode: "B", MaterialType: "finished good", Amount: money("400"), Cost: money("100.00")},
			{ItemCode: "C", MaterialType: "FINISHED_GOOD", Amount: money("0"), Cost: money("0")},
		},
	}

	lines, err := services.BuildSaleLines(ctx, newTableResolver(), sale)
	require.NoError(t, err)
	assertBalanced(t, lines)
	assert.Equal(t, []side{
		{"1100", "1150.00", "0.00"},
		{"4000", "0.00", "1000.00"},
		{"2100", "0.00", "150.00"},
		{"5000", "400.00", "0.00"},
		{"1230", "0.00", "400.00"},
	}, sides(lines))
	assert.Equal(t, "Cost of Sale INV-1021", lines[3].Description)

	sale.PaymentMethod = "Cash"
	sale.Tax = money("0")
	sale.Total = money("1000.00")
	sale.Lines = nil
	lines, err = services.BuildSaleLines(ctx, newTableResolver(), sale)
	require.NoError(t, err)
	assert.Equal(t, []side{{"1000", "1000.00", "0.00"}, {"4000", "0.00", "1000.00"}}, sides(lines))
}

func TestBuildPurchaseLines(t *testing.T) {
	lines, err := services.BuildPurchaseLines(context.Background(), newTableResolver(), domain.PurchaseSnapshot{
		PurchaseID:    "p1",
		BillNumber:    "BILL-9",
		PaymentMethod: "BANK_TRANSFER",
		Tax:           money("20.00"),
		Total:         money("220.00"),
		Lines: []domain.PurchaseLine{
			{MaterialType: "RAW_MATERIAL", Amount: money("150.00")},
			{MaterialType: "PACKAGING", Amount: money("50.00")},
		},
	})
	require.NoError(t, err)
	assertBalanced(t, lines)
	assert.Equal(t, []side{
		{"1210", "150.00", "0.00"},
		{"1220", "50.00", "0.00"},
		{"1300", "20.00", "0.00"},
		{"1010", "0.00", "220.00"},
	}, sides(lines))
}

func TestBuildProductionLines(t *testing.T) {
	lines, err := services.BuildProductionLines(context.Background(), newTableResolver(), domain.ProductionSnapshot{
		ProductionID:      "b1",
		BatchNumber:       "BATCH-3",
		FinishedGoodsCost: money("500.00"),
		Materials: []domain.MaterialConsumption{
			{MaterialType: "RAW_MATERIAL", Cost: money("300.00")},
			{MaterialType: "PACKAGING", Cost: money("50.00")},
		},
		LaborCost:    money("100.00"),
		OverheadCost: money("50.00"),
	})
	require.NoError(t, err)
	assertBalanced(t, lines)
	assert.Len(t, lines, 5)
	assert.Equal(t, side{"1230", "500.00", "0.00"}, sides(lines)[0])
}

func TestBuildExpensePaymentLines(t *testing.T) {
	r := newTableResolver()
	lines, err := services.BuildExpensePaymentLines(context.Background(), r, domain.ExpensePaymentSnapshot{
		PaymentID:     "e1",
		Category:      "Office supplies",
		PaymentMethod: "cash",
		Amount:        money("42.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, []side{{"6400", "42.50", "0.00"}, {"1000", "0.00", "42.50"}}, sides(lines))

	_, err = services.BuildExpensePaymentLines(context.Background(), r, domain.ExpensePaymentSnapshot{
		PaymentID: "e2", Category: "Yachts", PaymentMethod: "cash", Amount: money("1"),
	})
	assert.ErrorIs(t, err, apperrors.ErrAccountMappingMissing)
}

func TestBuildInventoryAdjustmentLines(t *testing.T) {
	r := newTableResolver()
	tests := []struct {
		name  string
		value string
		want  []side
		err   error
	}{
		{"shrinkage", "-25.00", []side{{"6800", "25.00", "0.00"}, {"1210", "0.00", "25.00"}}, nil},
		{"gain", "10.00", []side{{"1210", "10.00", "0.00"}, {"4100", "0.00", "10.00"}}, nil},
		{"zero", "0", nil, apperrors.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lines, err := services.BuildInventoryAdjustmentLines(context.Background(), r, domain.InventoryAdjustmentSnapshot{
				AdjustmentID: "a1",
				MaterialType: "RAW_MATERIAL",
				Value:        money(tc.value),
			})
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, sides(lines))
		})
	}
}

func TestBuildSaleLines_NegativeAmountRejected(t *testing.T) {
	_, err := services.BuildSaleLines(context.Background(), newTableResolver(), domain.SaleSnapshot{
		SaleID:   "s1",
		Subtotal: money("-10"),
		Total:    money("-10"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
