package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
	mappingRepo portsrepo.AccountMappingRepository
}

// NewAccountService creates a new account service.
func NewAccountService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerRepo portsrepo.LedgerReader,
	mappingRepo portsrepo.AccountMappingRepository,
	opts ...Option,
) portssvc.AccountSvcFacade {
	svc := &accountService{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		mappingRepo: mappingRepo,
	}
	svc.apply(opts)
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code and name are required", apperrors.ErrValidation)
	}
	accountType, err := domain.ParseAccountType(string(req.AccountType))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.ensureCodeFree(ctx, code); err != nil {
		return nil, err
	}

	var parentID *string
	if req.ParentAccountID != nil && strings.TrimSpace(*req.ParentAccountID) != "" {
		pid := strings.TrimSpace(*req.ParentAccountID)
		if _, err := s.accountRepo.FindAccountByID(ctx, pid); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent %s does not exist", apperrors.ErrInvalidParentAccount, pid)
			}
			return nil, err
		}
		parentID = &pid
	}

	now := s.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            code,
		Name:            name,
		Description:     req.Description,
		AccountType:     accountType,
		SubType:         strings.ToUpper(strings.TrimSpace(req.SubType)),
		ParentAccountID: parentID,
		IsActive:        true,
		IsSystem:        req.IsSystem,
		Balance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_code", account.Code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("account_code", account.Code))
	return &account, nil
}

func (s *accountService) ensureCodeFree(ctx context.Context, code string) error {
	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err == nil && existing != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateAccountCode, code)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code", slog.String("account_code", code))
		return err
	}
	return nil
}

// validateParent walks up from parentID and fails if it reaches accountID or a
// missing account.
func (s *accountService) validateParent(ctx context.Context, accountID, parentID string) error {
	if parentID == accountID {
		return fmt.Errorf("%w: an account cannot be its own parent", apperrors.ErrInvalidParentAccount)
	}
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == accountID {
			return fmt.Errorf("%w: %s is a descendant of the account", apperrors.ErrInvalidParentAccount, parentID)
		}
		if seen[cur] {
			return fmt.Errorf("%w: existing hierarchy above %s is cyclic", apperrors.ErrInvalidParentAccount, parentID)
		}
		seen[cur] = true
		acc, err := s.accountRepo.FindAccountByID(ctx, cur)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: parent %s does not exist", apperrors.ErrInvalidParentAccount, cur)
			}
			return err
		}
		cur = ""
		if acc.ParentAccountID != nil {
			cur = *acc.ParentAccountID
		}
	}
	return nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID",
				slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code",
				slog.String("account_code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) ListParentCandidates(ctx context.Context, excludeAccountID string) ([]domain.Account, error) {
	accounts, err := s.ListAccounts(ctx, domain.AccountFilter{})
	if err != nil {
		return nil, err
	}
	if excludeAccountID == "" {
		return accounts, nil
	}
	blocked := domain.Descendants(accounts, excludeAccountID)
	blocked[excludeAccountID] = true
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if !blocked[a.AccountID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *accountService) HasActivity(ctx context.Context, accountID string) (bool, error) {
	return s.ledgerRepo.HasActivity(ctx, accountID)
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.AccountUpdateResult, error) {
	var result *domain.AccountUpdateResult
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}

		if req.AccountType != nil && domain.AccountType(strings.ToUpper(string(*req.AccountType))) != account.AccountType {
			return fmt.Errorf("%w: %s stays %s", apperrors.ErrAccountTypeImmutable, account.Code, account.AccountType)
		}

		var warnings []string

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
			}
			account.Name = name
		}
		if req.Description != nil {
			account.Description = *req.Description
		}

		switch {
		case req.ClearParent:
			account.ParentAccountID = nil
		case req.ParentAccountID != nil:
			pid := strings.TrimSpace(*req.ParentAccountID)
			if pid == "" {
				account.ParentAccountID = nil
				break
			}
			if err := s.validateParent(ctx, account.AccountID, pid); err != nil {
				return err
			}
			account.ParentAccountID = &pid
		}

		codeChange := req.Code != nil && strings.TrimSpace(*req.Code) != account.Code
		subTypeChange := req.SubType != nil && !strings.EqualFold(strings.TrimSpace(*req.SubType), account.SubType)
		if codeChange || subTypeChange {
			locked, reason, err := s.structureLocked(ctx, account)
			if err != nil {
				return err
			}
			if locked {
				if codeChange {
					warnings = append(warnings, fmt.Sprintf("code change ignored: %s", reason))
				}
				if subTypeChange {
					warnings = append(warnings, fmt.Sprintf("sub-type change ignored: %s", reason))
				}
			} else {
				if codeChange {
					code := strings.TrimSpace(*req.Code)
					if code == "" {
						return fmt.Errorf("%w: code cannot be empty", apperrors.ErrValidation)
					}
					if err := s.ensureCodeFree(ctx, code); err != nil {
						return err
					}
					account.Code = code
				}
				if subTypeChange {
					account.SubType = strings.ToUpper(strings.TrimSpace(*req.SubType))
				}
			}
		}

		if req.IsActive != nil && *req.IsActive != account.IsActive {
			if !*req.IsActive && account.IsSystem {
				warnings = append(warnings, "deactivation ignored: system account")
			} else {
				account.IsActive = *req.IsActive
			}
		}

		account.LastUpdatedAt = s.Now()
		account.LastUpdatedBy = userID
		if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
			return err
		}
		result = &domain.AccountUpdateResult{Account: account, Warnings: warnings}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		}
		return nil, err
	}

	for _, w := range result.Warnings {
		s.LogWarn(ctx, "Account update partially applied",
			slog.String("account_id", accountID),
			slog.String("warning", w))
	}
	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return result, nil
}

// structureLocked reports whether the code and sub-type of an account are frozen.
func (s *accountService) structureLocked(ctx context.Context, account *domain.Account) (bool, string, error) {
	if account.IsSystem {
		return true, "system account", nil
	}
	active, err := s.ledgerRepo.HasActivity(ctx, account.AccountID)
	if err != nil {
		return false, "", err
	}
	if active {
		return true, "account has ledger activity", nil
	}
	return false, "", nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account.IsSystem {
			return fmt.Errorf("%w: %s", apperrors.ErrSystemAccountProtected, account.Code)
		}
		if !account.IsActive {
			return nil
		}
		account.IsActive = false
		account.LastUpdatedAt = s.Now()
		account.LastUpdatedBy = userID
		if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
			return err
		}
		s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
		return nil
	})
}

func (s *accountService) CalculateAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *accountService) SeedDefaultChart(ctx context.Context, userID string) (int, error) {
	created := 0
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		chart := domain.DefaultChart()
		codes := make([]string, len(chart))
		for i, d := range chart {
			codes[i] = d.Code
		}
		existing, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
		if err != nil {
			return err
		}
		ids := make(map[string]string, len(chart))
		for code, a := range existing {
			ids[code] = a.AccountID
		}

		now := s.Now()
		for _, d := range chart {
			if _, ok := ids[d.Code]; ok {
				continue
			}
			account := domain.Account{
				AccountID:   uuid.NewString(),
				Code:        d.Code,
				Name:        d.Name,
				Description: d.Description,
				AccountType: d.Type,
				SubType:     d.SubType,
				IsActive:    true,
				IsSystem:    d.IsSystem,
				Balance:     decimal.Zero,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
			if d.ParentCode != "" {
				if pid, ok := ids[d.ParentCode]; ok {
					account.ParentAccountID = &pid
				}
			}
			if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
				return fmt.Errorf("seeding %s: %w", d.Code, err)
			}
			ids[d.Code] = account.AccountID
			created++
		}

		for _, m := range domain.DefaultAccountMappings() {
			_, err := s.mappingRepo.FindMapping(ctx, m.MappingType, m.Key)
			if err == nil {
				continue
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if err := s.mappingRepo.SaveMapping(ctx, m); err != nil {
				return fmt.Errorf("seeding mapping %s/%s: %w", m.MappingType, m.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to seed default chart")
		return 0, err
	}
	s.LogInfo(ctx, "Default chart seeded", slog.Int("created", created))
	return created, nil
}
