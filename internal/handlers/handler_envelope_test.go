package handlers_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type EnvelopeHandlerTestSuite struct {
	handlerSuite
}

func sampleEnvelope() *domain.Envelope {
	return &domain.Envelope{
		EnvelopeID:      "env-1",
		BudgetID:        "budget-1",
		CategoryID:      "equipment",
		Name:            "Equipment",
		CapAmount:       dec("1000"),
		PeriodType:      domain.PeriodMonthly,
		VendorMatchType: domain.VendorAny,
		IsActive:        true,
	}
}

func (s *EnvelopeHandlerTestSuite) TestCreateEnvelope_Success() {
	s.envelopes.On("CreateEnvelope",
		mock.AnythingOfType("*context.valueCtx"),
		"budget-1",
		mock.MatchedBy(func(req dto.CreateEnvelopeRequest) bool {
			return req.CapAmount.Equal(dec("1000")) && req.PeriodType == "MONTHLY"
		}),
		testUserID,
	).Return(sampleEnvelope(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/budgets/budget-1/envelopes", gin.H{
		"categoryID":      "equipment",
		"name":            "Equipment",
		"capAmount":       "1000",
		"periodType":      "MONTHLY",
		"vendorMatchType": "ANY",
	})

	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.EnvelopeResponse
	s.decode(w, &resp)
	s.Equal("env-1", resp.EnvelopeID)
	s.True(resp.IsActive)
}

func (s *EnvelopeHandlerTestSuite) TestCreateEnvelope_UnknownPeriod() {
	w := s.do(http.MethodPost, "/api/v1/budgets/budget-1/envelopes", gin.H{
		"categoryID":      "equipment",
		"name":            "Equipment",
		"capAmount":       "1000",
		"periodType":      "WEEKLY",
		"vendorMatchType": "ANY",
	})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *EnvelopeHandlerTestSuite) TestListEnvelopes() {
	s.envelopes.On("ListEnvelopes", mock.AnythingOfType("*context.valueCtx"), "budget-1", testUserID).
		Return([]domain.Envelope{*sampleEnvelope()}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/budgets/budget-1/envelopes", nil)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ListEnvelopesResponse
	s.decode(w, &resp)
	s.Len(resp.Envelopes, 1)
}

func (s *EnvelopeHandlerTestSuite) TestDeactivateEnvelope() {
	s.envelopes.On("DeactivateEnvelope", mock.AnythingOfType("*context.valueCtx"), "env-1", testUserID).Return(nil).Once()

	w := s.do(http.MethodDelete, "/api/v1/envelopes/env-1", nil)

	s.Equal(http.StatusNoContent, w.Code)
}

func (s *EnvelopeHandlerTestSuite) TestDeactivateEnvelope_NotFound() {
	s.envelopes.On("DeactivateEnvelope", mock.Anything, "env-404", testUserID).
		Return(apperrors.NewNotFoundError("envelope env-404")).Once()

	w := s.do(http.MethodDelete, "/api/v1/envelopes/env-404", nil)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *EnvelopeHandlerTestSuite) TestSpendingSummary_UsesAsOfDate() {
	asOf := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	summary := domain.NewEnvelopeSpendingSummary(*sampleEnvelope(), dec("250"), 3)
	s.envelopes.On("SpendingSummary", mock.AnythingOfType("*context.valueCtx"), "env-1", asOf, testUserID).
		Return(&summary, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/envelopes/env-1/summary?asOf=2025-03-15", nil)

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp domain.EnvelopeSpendingSummary
	s.decode(w, &resp)
	s.True(resp.Remaining.Equal(dec("750")))
	s.Equal(3, resp.TransactionCount)
}

func (s *EnvelopeHandlerTestSuite) TestSpendingSummary_BadDate() {
	w := s.do(http.MethodGet, "/api/v1/envelopes/env-1/summary?asOf=15/03/2025", nil)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(s.errorMessage(w), "YYYY-MM-DD")
}

func (s *EnvelopeHandlerTestSuite) TestExportEnvelopes_WritesWorkbook() {
	asOf := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	s.envelopes.On("ExportSpendingSummary", mock.AnythingOfType("*context.valueCtx"), "budget-1", asOf, testUserID, mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(4).(io.Writer)
			_, _ = w.Write([]byte("PK-workbook"))
		}).
		Return(nil).Once()

	w := s.do(http.MethodGet, "/api/v1/budgets/budget-1/envelopes/export?asOf=2025-03-31", nil)

	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "envelopes-budget-1-2025-03-31.xlsx")
	s.Equal("PK-workbook", w.Body.String())
}

func (s *EnvelopeHandlerTestSuite) TestExportEnvelopes_ForbiddenReturnsJSON() {
	s.envelopes.On("ExportSpendingSummary", mock.Anything, "budget-1", mock.Anything, testUserID, mock.Anything).
		Return(apperrors.ErrForbidden).Once()

	w := s.do(http.MethodGet, "/api/v1/budgets/budget-1/envelopes/export", nil)

	s.Equal(http.StatusForbidden, w.Code)
	s.NotEmpty(s.errorMessage(w))
}

func TestEnvelopeHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(EnvelopeHandlerTestSuite))
}
