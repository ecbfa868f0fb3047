package services_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
)

type ReconciliationServiceTestSuite struct {
	LedgerSuite
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

// Same behaviour with the sweep fanned out over a worker pool.
func TestReconciliationServiceTestSuite_Workers(t *testing.T) {
	s := new(ReconciliationServiceTestSuite)
	s.workers = 4
	suite.Run(t, s)
}

func (s *ReconciliationServiceTestSuite) SetupTest() {
	s.LedgerSuite.SetupTest()
	s.seedChart()
}

func (s *ReconciliationServiceTestSuite) register(t domain.SourceType, id string, payload any) {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	_, err = s.svc.Reconciliation.RegisterSource(s.ctx, domain.SourceDocument{SourceType: t, SourceID: id, Payload: raw})
	s.Require().NoError(err)
}

func (s *ReconciliationServiceTestSuite) sale(id, invoice, total string) domain.SaleSnapshot {
	return domain.SaleSnapshot{
		SaleID:        id,
		InvoiceNumber: invoice,
		Date:          day("2024-06-01"),
		PaymentMethod: "CASH",
		Subtotal:      money(total),
		Total:         money(total),
	}
}

func (s *ReconciliationServiceTestSuite) TestRegisterSource() {
	raw, _ := json.Marshal(s.sale("s1", "INV-1", "10"))
	doc, err := s.svc.Reconciliation.RegisterSource(s.ctx, domain.SourceDocument{SourceType: domain.SourceSale, SourceID: "s1", Payload: raw})
	s.Require().NoError(err)
	s.Equal("INV-1", doc.Reference)
	s.False(doc.JournalGenerated)

	_, err = s.svc.Reconciliation.RegisterSource(s.ctx, domain.SourceDocument{SourceType: domain.SourceSale, SourceID: "s1", Payload: raw})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.svc.Reconciliation.RegisterSource(s.ctx, domain.SourceDocument{SourceType: "REFUND", SourceID: "r1", Payload: raw})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Reconciliation.RegisterSource(s.ctx, domain.SourceDocument{SourceType: domain.SourceSale, SourceID: "s2", Payload: json.RawMessage(`{"total":`)})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReconciliationServiceTestSuite) TestGenerateForSource_MarksOnce() {
	s.register(domain.SourceSale, "s1", s.sale("s1", "INV-1", "250.00"))

	number, err := s.svc.Reconciliation.GenerateForSource(s.ctx, domain.SourceSale, "s1", testUser)
	s.Require().NoError(err)
	s.Equal("JE-SAL-0001", number)

	doc, err := s.repos.SourceRepo.FindSource(s.ctx, domain.SourceSale, "s1")
	s.Require().NoError(err)
	s.True(doc.JournalGenerated)
	s.Equal(number, doc.TransactionNumber)

	_, err = s.svc.Reconciliation.GenerateForSource(s.ctx, domain.SourceSale, "s1", testUser)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.assertAmount("250.00", s.account("1000").Balance)
}

func (s *ReconciliationServiceTestSuite) TestGenerateForAllUngenerated_ContinuesPastFailures() {
	s.register(domain.SourceSale, "s1", s.sale("s1", "INV-1", "100.00"))
	s.register(domain.SourceExpensePayment, "e1", domain.ExpensePaymentSnapshot{
		PaymentID: "e1", Reference: "EXP-1", Date: day("2024-06-02"),
		Category: "Unmapped category", PaymentMethod: "CASH", Amount: money("20.00"),
	})
	s.register(domain.SourcePurchase, "p1", domain.PurchaseSnapshot{
		PurchaseID: "p1", BillNumber: "BILL-1", Date: day("2024-06-03"), PaymentMethod: "CREDIT",
		Total: money("80.00"), Lines: []domain.PurchaseLine{{MaterialType: "RAW_MATERIAL", Amount: money("80.00")}},
	})
	s.register(domain.SourceInventoryAdjustment, "a1", domain.InventoryAdjustmentSnapshot{
		AdjustmentID: "a1", Reference: "CNT-1", Date: day("2024-06-04"), MaterialType: "RAW_MATERIAL", Value: money("-5.00"),
	})

	report, err := s.svc.Reconciliation.GenerateForAllUngenerated(s.ctx, testUser)
	s.Require().NoError(err)
	s.Len(report.Succeeded, 3)
	s.Require().Len(report.Failed, 1)
	s.Equal("e1", report.Failed[0].SourceID)
	s.Contains(report.Failed[0].Reason, "no account mapped")

	again, err := s.svc.Reconciliation.GenerateForAllUngenerated(s.ctx, testUser)
	s.Require().NoError(err)
	s.Empty(again.Succeeded)
	s.Len(again.Failed, 1, "only the failed document is retried")

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, fixedToday)
	s.Require().NoError(err)
	s.True(tb.IsBalanced)
	s.assertAmount("100.00", s.account("1000").Balance)
	s.assertAmount("80.00", s.account("2000").Balance)
	s.assertAmount("75.00", s.account("1210").Balance)
	s.assertAmount("5.00", s.account("6800").Balance)
}

func (s *ReconciliationServiceTestSuite) TestGeneralLedgerDescribesSources() {
	s.register(domain.SourceSale, "s1", s.sale("s1", "INV-1021", "100.00"))
	_, err := s.svc.Reconciliation.GenerateForSource(s.ctx, domain.SourceSale, "s1", testUser)
	s.Require().NoError(err)

	// A generator call without a registered document still posts; its lines
	// simply carry no source description.
	_, err = s.svc.Journal.GenerateForSale(s.ctx, s.sale("s-unregistered", "INV-9", "5.00"), testUser)
	s.Require().NoError(err)

	gl, err := s.svc.Reporting.GeneralLedger(s.ctx, domain.GeneralLedgerFilter{AccountCode: "4000"})
	s.Require().NoError(err)
	s.Require().Len(gl.Lines, 2)
	descriptions := map[string]string{}
	for _, l := range gl.Lines {
		s.Equal("4000", l.AccountCode)
		descriptions[l.ReferenceID] = l.SourceDescription
	}
	s.Equal("Sale INV-1021", descriptions["s1"])
	s.Empty(descriptions["s-unregistered"])
}
