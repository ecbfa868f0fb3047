package services_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

type SettingsServiceTestSuite struct {
	LedgerSuite
}

func TestSettingsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettingsServiceTestSuite))
}

func (s *SettingsServiceTestSuite) TestDefaultsUntilSaved() {
	settings, err := s.svc.Settings.GetSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.DefaultCompanySettings(), *settings)
}

func (s *SettingsServiceTestSuite) TestUpdateSettings() {
	s.seedChart()

	updated, err := s.svc.Settings.UpdateSettings(s.ctx, dto.UpdateSettingsRequest{
		FiscalYearStartMonth:   7,
		FiscalYearStartDay:     1,
		DefaultReportingPeriod: string(domain.NamedCalendarYear),
	}, testUser)
	s.Require().NoError(err)
	s.Equal(domain.DefaultRetainedEarningsCode, updated.RetainedEarningsAccountCode)
	s.Equal(testUser, updated.UpdatedBy)

	r, err := s.svc.Period.GetCurrentFiscalYearRange(s.ctx)
	s.Require().NoError(err)
	s.Equal(day("2023-07-01"), r.Start)
	s.Equal(day("2024-06-30"), r.End)

	def, err := s.svc.Period.ResolveNamedRange(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(day("2024-01-01"), def.Start)
}

func (s *SettingsServiceTestSuite) TestUpdateSettings_Rejections() {
	s.seedChart()
	tests := []struct {
		name string
		req  dto.UpdateSettingsRequest
	}{
		{"february 29", dto.UpdateSettingsRequest{FiscalYearStartMonth: 2, FiscalYearStartDay: 29}},
		{"month 13", dto.UpdateSettingsRequest{FiscalYearStartMonth: 13, FiscalYearStartDay: 1}},
		{"unknown retained earnings", dto.UpdateSettingsRequest{FiscalYearStartMonth: 1, FiscalYearStartDay: 1, RetainedEarningsAccountCode: "3999"}},
		{"retained earnings not equity", dto.UpdateSettingsRequest{FiscalYearStartMonth: 1, FiscalYearStartDay: 1, RetainedEarningsAccountCode: "1000"}},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			_, err := s.svc.Settings.UpdateSettings(s.ctx, tc.req, testUser)
			s.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}
