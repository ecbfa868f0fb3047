package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// AccountResolver maps a domain category onto the code of the account it posts to.
type AccountResolver interface {
	ResolveAccountCode(ctx context.Context, mappingType domain.MappingType, key string) (string, error)
}

type mappingResolver struct {
	repo portsrepo.AccountMappingRepository
}

// NewMappingResolver resolves categories through the account mapping table.
func NewMappingResolver(repo portsrepo.AccountMappingRepository) AccountResolver {
	return &mappingResolver{repo: repo}
}

func (r *mappingResolver) ResolveAccountCode(ctx context.Context, mappingType domain.MappingType, key string) (string, error) {
	norm := domain.NormalizeMappingKey(key)
	if norm == "" {
		return "", fmt.Errorf("%w: empty %s key", apperrors.ErrAccountMappingMissing, mappingType)
	}
	m, err := r.repo.FindMapping(ctx, mappingType, norm)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: %s %s", apperrors.ErrAccountMappingMissing, mappingType, norm)
		}
		return "", err
	}
	return m.AccountCode, nil
}

// lineBuilder accumulates code-addressed lines, merging repeats of the same
// account and side. Zero amounts are dropped; negative amounts are an error.
type lineBuilder struct {
	lines []domain.JournalLine
	index map[string]int
	err   error
}

func newLineBuilder() *lineBuilder {
	return &lineBuilder{index: map[string]int{}}
}

func (b *lineBuilder) add(code string, debit bool, amount decimal.Decimal, desc string) {
	if b.err != nil || amount.IsZero() {
		return
	}
	if amount.IsNegative() {
		b.err = fmt.Errorf("%w: negative amount %s for account %s", apperrors.ErrValidation, amount.String(), code)
		return
	}
	key := code + "/C"
	if debit {
		key = code + "/D"
	}
	if i, ok := b.index[key]; ok {
		if debit {
			b.lines[i].Debit = b.lines[i].Debit.Add(amount)
		} else {
			b.lines[i].Credit = b.lines[i].Credit.Add(amount)
		}
		return
	}
	line := domain.JournalLine{AccountCode: code, Description: desc}
	if debit {
		line.Debit = amount
	} else {
		line.Credit = amount
	}
	b.index[key] = len(b.lines)
	b.lines = append(b.lines, line)
}

func (b *lineBuilder) debit(code string, amount decimal.Decimal, desc string) {
	b.add(code, true, amount, desc)
}

func (b *lineBuilder) credit(code string, amount decimal.Decimal, desc string) {
	b.add(code, false, amount, desc)
}

func (b *lineBuilder) result() ([]domain.JournalLine, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.lines, nil
}

// settlementAccount is the account a document is settled through: the mapped
// payment method account, or the given control account when sold or bought on credit.
func settlementAccount(ctx context.Context, r AccountResolver, method, controlKey string) (string, error) {
	norm := domain.NormalizeMappingKey(method)
	if norm == "" || norm == domain.PaymentCredit {
		return r.ResolveAccountCode(ctx, domain.MappingControl, controlKey)
	}
	return r.ResolveAccountCode(ctx, domain.MappingPaymentMethod, norm)
}

// BuildSaleLines maps a sale onto: Dr receivable or cash for the total, Cr revenue
// for the subtotal, Cr tax payable for the tax, and Dr cost of goods sold against
// Cr inventory for every costed line.
func BuildSaleLines(ctx context.Context, r AccountResolver, sale domain.SaleSnapshot) ([]domain.JournalLine, error) {
	desc := describe("Sale", sale.InvoiceNumber, "")
	b := newLineBuilder()

	settle, err := settlementAccount(ctx, r, sale.PaymentMethod, domain.ControlAccountsReceivable)
	if err != nil {
		return nil, err
	}
	revenue, err := r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlSalesRevenue)
	if err != nil {
		return nil, err
	}
	b.debit(settle, sale.Total, desc)
	b.credit(revenue, sale.Subtotal, desc)

	if !sale.Tax.IsZero() {
		tax, err := r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlSalesTaxPayable)
		if err != nil {
			return nil, err
		}
		b.credit(tax, sale.Tax, desc)
	}

	var cogs string
	for _, line := range sale.Lines {
		if line.Cost.IsZero() {
			continue
		}
		if cogs == "" {
			if cogs, err = r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlCostOfGoodsSold); err != nil {
				return nil, err
			}
		}
		inventory, err := r.ResolveAccountCode(ctx, domain.MappingMaterialType, line.MaterialType)
		if err != nil {
			return nil, err
		}
		b.debit(cogs, line.Cost, "Cost of "+desc)
		b.credit(inventory, line.Cost, "Cost of "+desc)
	}
	return b.result()
}

// BuildPurchaseLines maps a purchase onto: Dr inventory per material, Dr tax
// receivable, Cr payable or cash for the total.
func BuildPurchaseLines(ctx context.Context, r AccountResolver, purchase domain.PurchaseSnapshot) ([]domain.JournalLine, error) {
	desc := describe("Purchase", purchase.BillNumber, "")
	b := newLineBuilder()

	for _, line := range purchase.Lines {
		if line.Amount.IsZero() {
			continue
		}
		inventory, err := r.ResolveAccountCode(ctx, domain.MappingMaterialType, line.MaterialType)
		if err != nil {
			return nil, err
		}
		b.debit(inventory, line.Amount, desc)
	}
	if !purchase.Tax.IsZero() {
		tax, err := r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlPurchaseTaxReceivable)
		if err != nil {
			return nil, err
		}
		b.debit(tax, purchase.Tax, desc)
	}
	settle, err := settlementAccount(ctx, r, purchase.PaymentMethod, domain.ControlAccountsPayable)
	if err != nil {
		return nil, err
	}
	b.credit(settle, purchase.Total, desc)
	return b.result()
}

// BuildProductionLines maps a production run onto: Dr finished goods, Cr each
// consumed material, Cr applied labour and applied overhead.
func BuildProductionLines(ctx context.Context, r AccountResolver, production domain.ProductionSnapshot) ([]domain.JournalLine, error) {
	desc := describe("Production", production.BatchNumber, "")
	b := newLineBuilder()

	finished, err := r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlFinishedGoods)
	if err != nil {
		return nil, err
	}
	b.debit(finished, production.FinishedGoodsCost, desc)

	for _, m := range production.Materials {
		if m.Cost.IsZero() {
			continue
		}
		material, err := r.ResolveAccountCode(ctx, domain.MappingMaterialType, m.MaterialType)
		if err != nil {
			return nil, err
		}
		b.credit(material, m.Cost, desc)
	}
	if !production.LaborCost.IsZero() {
		labor, err := r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlProductionLaborApplied)
		if err != nil {
			return nil, err
		}
		b.credit(labor, production.LaborCost, desc)
	}
	if !production.OverheadCost.IsZero() {
		overhead, err := r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlProductionOverheadApplied)
		if err != nil {
			return nil, err
		}
		b.credit(overhead, production.OverheadCost, desc)
	}
	return b.result()
}

// BuildExpensePaymentLines maps an expense payment onto Dr the category's expense
// account and Cr the payment method's account.
func BuildExpensePaymentLines(ctx context.Context, r AccountResolver, payment domain.ExpensePaymentSnapshot) ([]domain.JournalLine, error) {
	desc := describe("Expense payment", payment.Reference, payment.Payee)
	expense, err := r.ResolveAccountCode(ctx, domain.MappingExpenseCategory, payment.Category)
	if err != nil {
		return nil, err
	}
	settle, err := settlementAccount(ctx, r, payment.PaymentMethod, domain.ControlAccountsPayable)
	if err != nil {
		return nil, err
	}
	b := newLineBuilder()
	b.debit(expense, payment.Amount, desc)
	b.credit(settle, payment.Amount, desc)
	return b.result()
}

// BuildInventoryAdjustmentLines maps a stock count difference onto shrinkage
// (negative value) or gain (positive value) against the material's inventory.
func BuildInventoryAdjustmentLines(ctx context.Context, r AccountResolver, adj domain.InventoryAdjustmentSnapshot) ([]domain.JournalLine, error) {
	if adj.Value.IsZero() {
		return nil, fmt.Errorf("%w: adjustment value is zero", apperrors.ErrValidation)
	}
	desc := describe("Inventory adjustment", adj.Reference, adj.Reason)
	inventory, err := r.ResolveAccountCode(ctx, domain.MappingMaterialType, adj.MaterialType)
	if err != nil {
		return nil, err
	}
	b := newLineBuilder()
	amount := adj.Value.Abs()
	if adj.Value.IsNegative() {
		shrinkage, err := r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlInventoryShrinkage)
		if err != nil {
			return nil, err
		}
		b.debit(shrinkage, amount, desc)
		b.credit(inventory, amount, desc)
	} else {
		gain, err := r.ResolveAccountCode(ctx, domain.MappingControl, domain.ControlInventoryGain)
		if err != nil {
			return nil, err
		}
		b.debit(inventory, amount, desc)
		b.credit(gain, amount, desc)
	}
	return b.result()
}
