package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/SscSPs/team_finance_engine/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type FeedHandlerTestSuite struct {
	handlerSuite
}

func (s *FeedHandlerTestSuite) postFeed(token string, body any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feed/teams/team-1/transactions/import", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.FeedTokenHeader, token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func feedBatch() gin.H {
	return gin.H{
		"seasonLabel": "2025",
		"transactions": []gin.H{
			{"type": "EXPENSE", "amount": "42.10", "vendor": "Referee Association", "transactionDate": "2025-03-01T00:00:00Z", "externalID": "bank-1"},
			{"type": "EXPENSE", "amount": "18.00", "vendor": "Gas Station", "transactionDate": "2025-03-02T00:00:00Z", "pending": true, "externalID": "bank-2"},
		},
	}
}

func (s *FeedHandlerTestSuite) TestImport_Success() {
	s.transactions.On("ImportTransactions",
		mock.Anything,
		"team-1",
		mock.MatchedBy(func(req dto.ImportTransactionsRequest) bool {
			return req.SeasonLabel == "2025" && len(req.Transactions) == 2 && req.Transactions[1].Pending
		}),
	).Return(&dto.ImportTransactionsResponse{Imported: 2, Skipped: 0, Transactions: []dto.TransactionResponse{}}, nil).Once()

	w := s.postFeed(testFeedToken, feedBatch())

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ImportTransactionsResponse
	s.decode(w, &resp)
	s.Equal(2, resp.Imported)
}

func (s *FeedHandlerTestSuite) TestImport_DoesNotAcceptJWT() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feed/teams/team-1/transactions/import", nil)
	req.Header.Set("Authorization", "Bearer "+s.generateTestToken(testUserID))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *FeedHandlerTestSuite) TestImport_WrongToken() {
	w := s.postFeed("not-the-token", feedBatch())

	s.Equal(http.StatusUnauthorized, w.Code)
	s.transactions.AssertNotCalled(s.T(), "ImportTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (s *FeedHandlerTestSuite) TestImport_EmptyBatch() {
	w := s.postFeed(testFeedToken, gin.H{"seasonLabel": "2025", "transactions": []gin.H{}})

	s.Equal(http.StatusBadRequest, w.Code)
}

func TestFeedHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(FeedHandlerTestSuite))
}
