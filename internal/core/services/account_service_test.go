package services_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

type AccountServiceTestSuite struct {
	LedgerSuite
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func ptr[T any](v T) *T { return &v }

func (s *AccountServiceTestSuite) TestCreateAccount() {
	acc, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code:        " 1100 ",
		Name:        "Accounts Receivable",
		AccountType: "asset",
		SubType:     "receivable",
	}, testUser)
	s.Require().NoError(err)
	s.Equal("1100", acc.Code)
	s.Equal(domain.Asset, acc.AccountType)
	s.Equal("RECEIVABLE", acc.SubType)
	s.True(acc.IsActive)
	s.True(acc.Balance.IsZero())
	s.Equal(fixedToday, acc.CreatedAt)

	_, err = s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "1100", Name: "Again", AccountType: domain.Asset}, testUser)
	s.ErrorIs(err, apperrors.ErrDuplicateAccountCode)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "1200", Name: "Bad", AccountType: "CASH"}, testUser)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code: "1200", Name: "Orphan", AccountType: domain.Asset, ParentAccountID: ptr("nope"),
	}, testUser)
	s.ErrorIs(err, apperrors.ErrInvalidParentAccount)
}

func (s *AccountServiceTestSuite) TestCreateAccount_DuplicateCodeCreatesNothing() {
	s.createAccount("1000", "Cash", domain.Asset)
	before, err := s.svc.Account.ListAccounts(s.ctx, domain.AccountFilter{})
	s.Require().NoError(err)

	_, err = s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "1000", Name: "Cash again", AccountType: domain.Asset}, testUser)
	s.ErrorIs(err, apperrors.ErrDuplicateAccountCode)

	after, err := s.svc.Account.ListAccounts(s.ctx, domain.AccountFilter{})
	s.Require().NoError(err)
	s.Len(after, len(before))
	s.Equal("Cash", s.account("1000").Name)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_CodeCollision() {
	s.createAccount("1000", "Cash", domain.Asset)
	bank := s.createAccount("1010", "Bank", domain.Asset)

	_, err := s.svc.Account.UpdateAccount(s.ctx, bank.AccountID, dto.UpdateAccountRequest{Code: ptr("1000"), Name: ptr("Main bank")}, testUser)
	s.ErrorIs(err, apperrors.ErrDuplicateAccountCode)

	unchanged := s.account("1010")
	s.Equal(bank.AccountID, unchanged.AccountID)
	s.Equal("Bank", unchanged.Name)
	s.Equal("Cash", s.account("1000").Name)

	// Re-submitting its own code is not a collision.
	res, err := s.svc.Account.UpdateAccount(s.ctx, bank.AccountID, dto.UpdateAccountRequest{Code: ptr("1010")}, testUser)
	s.Require().NoError(err)
	s.Equal("1010", res.Account.Code)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_ParentCycleRejected() {
	root := s.createAccount("1000", "Root", domain.Asset)
	child, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code: "1010", Name: "Child", AccountType: domain.Asset, ParentAccountID: &root.AccountID,
	}, testUser)
	s.Require().NoError(err)
	grandchild, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code: "1011", Name: "Grandchild", AccountType: domain.Asset, ParentAccountID: &child.AccountID,
	}, testUser)
	s.Require().NoError(err)

	_, err = s.svc.Account.UpdateAccount(s.ctx, root.AccountID, dto.UpdateAccountRequest{ParentAccountID: &grandchild.AccountID}, testUser)
	s.ErrorIs(err, apperrors.ErrInvalidParentAccount)

	_, err = s.svc.Account.UpdateAccount(s.ctx, root.AccountID, dto.UpdateAccountRequest{ParentAccountID: &root.AccountID}, testUser)
	s.ErrorIs(err, apperrors.ErrInvalidParentAccount)

	candidates, err := s.svc.Account.ListParentCandidates(s.ctx, root.AccountID)
	s.Require().NoError(err)
	s.Empty(candidates)

	candidates, err = s.svc.Account.ListParentCandidates(s.ctx, grandchild.AccountID)
	s.Require().NoError(err)
	s.Len(candidates, 2)

	res, err := s.svc.Account.UpdateAccount(s.ctx, grandchild.AccountID, dto.UpdateAccountRequest{ClearParent: true}, testUser)
	s.Require().NoError(err)
	s.Nil(res.Account.ParentAccountID)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_TypeIsImmutable() {
	acc := s.createAccount("1000", "Cash", domain.Asset)
	_, err := s.svc.Account.UpdateAccount(s.ctx, acc.AccountID, dto.UpdateAccountRequest{AccountType: ptr(domain.Liability)}, testUser)
	s.ErrorIs(err, apperrors.ErrAccountTypeImmutable)

	_, err = s.svc.Account.UpdateAccount(s.ctx, acc.AccountID, dto.UpdateAccountRequest{AccountType: ptr(domain.Asset), Name: ptr("Petty cash")}, testUser)
	s.NoError(err)
}

func (s *AccountServiceTestSuite) TestUpdateAccount_CodeFrozenOnceUsed() {
	cash := s.createAccount("1000", "Cash", domain.Asset)
	s.createAccount("3000", "Capital", domain.Equity)

	res, err := s.svc.Account.UpdateAccount(s.ctx, cash.AccountID, dto.UpdateAccountRequest{Code: ptr("1001")}, testUser)
	s.Require().NoError(err)
	s.Empty(res.Warnings)
	s.Equal("1001", res.Account.Code)

	s.post(day("2024-06-01"), debit("1001", "100"), credit("3000", "100"))
	active, err := s.svc.Account.HasActivity(s.ctx, cash.AccountID)
	s.Require().NoError(err)
	s.True(active)

	res, err = s.svc.Account.UpdateAccount(s.ctx, cash.AccountID, dto.UpdateAccountRequest{
		Code:    ptr("1002"),
		SubType: ptr("BANK"),
		Name:    ptr("Cash drawer"),
	}, testUser)
	s.Require().NoError(err)
	s.Len(res.Warnings, 2)
	s.Equal("1001", res.Account.Code)
	s.Equal("Cash drawer", res.Account.Name)

	stored := s.account("1001")
	s.assertAmount("100", stored.Balance, "balance must survive an update")
}

func (s *AccountServiceTestSuite) TestSystemAccountsAreProtected() {
	s.seedChart()
	ar := s.account("1100")
	s.True(ar.IsSystem)

	err := s.svc.Account.DeactivateAccount(s.ctx, ar.AccountID, testUser)
	s.ErrorIs(err, apperrors.ErrSystemAccountProtected)
	s.ErrorIs(err, apperrors.ErrForbidden)

	res, err := s.svc.Account.UpdateAccount(s.ctx, ar.AccountID, dto.UpdateAccountRequest{IsActive: ptr(false), Code: ptr("1199")}, testUser)
	s.Require().NoError(err)
	s.Len(res.Warnings, 2)
	s.True(res.Account.IsActive)
	s.Equal("1100", res.Account.Code)

	rent := s.account("6100")
	s.Require().NoError(s.svc.Account.DeactivateAccount(s.ctx, rent.AccountID, testUser))
	s.False(s.account("6100").IsActive)
}

func (s *AccountServiceTestSuite) TestSeedDefaultChart_Idempotent() {
	created, err := s.svc.Account.SeedDefaultChart(s.ctx, testUser)
	s.Require().NoError(err)
	s.Equal(len(domain.DefaultChart()), created)

	again, err := s.svc.Account.SeedDefaultChart(s.ctx, testUser)
	s.Require().NoError(err)
	s.Zero(again)

	rent := s.account("6100")
	s.Require().NotNil(rent.ParentAccountID)
	s.Equal(s.account("6000").AccountID, *rent.ParentAccountID)

	mappings, err := s.repos.MappingRepo.ListMappings(s.ctx)
	s.Require().NoError(err)
	s.Len(mappings, len(domain.DefaultAccountMappings()))
}

func (s *AccountServiceTestSuite) TestListAccounts_Filters() {
	s.seedChart()
	assets, err := s.svc.Account.ListAccounts(s.ctx, domain.AccountFilter{AccountType: domain.Asset})
	s.Require().NoError(err)
	for _, a := range assets {
		s.Equal(domain.Asset, a.AccountType)
	}
	s.Equal("1000", assets[0].Code)

	inventory, err := s.svc.Account.ListAccounts(s.ctx, domain.AccountFilter{SubType: "inventory"})
	s.Require().NoError(err)
	s.Len(inventory, 4)
}
