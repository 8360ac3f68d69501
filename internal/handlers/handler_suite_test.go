package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/handlers"
	"github.com/SscSPs/team_finance_engine/internal/platform/config"
	"github.com/SscSPs/team_finance_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	testJWTSecret = "test-secret-key-that-is-long-enough"
	testFeedToken = "feed-token-for-tests"
	testUserID    = "user-1"
)

// handlerSuite wires the real router against mocked services.
type handlerSuite struct {
	suite.Suite
	router        *gin.Engine
	feedTokenHash string

	transactions *MockTransactionService
	exceptions   *MockExceptionService
	budgets      *MockBudgetService
	association  *MockAssociationService
	envelopes    *MockEnvelopeService
	teamSeasons  *MockTeamSeasonService
}

func (s *handlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(handlers.RegisterValidators())

	hash, err := utils.HashToken(testFeedToken)
	s.Require().NoError(err)
	s.feedTokenHash = hash
}

func (s *handlerSuite) SetupTest() {
	s.transactions = new(MockTransactionService)
	s.exceptions = new(MockExceptionService)
	s.budgets = new(MockBudgetService)
	s.association = new(MockAssociationService)
	s.envelopes = new(MockEnvelopeService)
	s.teamSeasons = new(MockTeamSeasonService)

	cfg := &config.Config{
		JWTSecret:     testJWTSecret,
		IsProduction:  true,
		FeedTokenHash: s.feedTokenHash,
	}
	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, &portssvc.ServiceContainer{
		Transaction: s.transactions,
		Exception:   s.exceptions,
		Budget:      s.budgets,
		Association: s.association,
		Envelope:    s.envelopes,
		TeamSeason:  s.teamSeasons,
	}, nil)
}

func (s *handlerSuite) TearDownTest() {
	s.transactions.AssertExpectations(s.T())
	s.exceptions.AssertExpectations(s.T())
	s.budgets.AssertExpectations(s.T())
	s.association.AssertExpectations(s.T())
	s.envelopes.AssertExpectations(s.T())
	s.teamSeasons.AssertExpectations(s.T())
}

// generateTestToken creates a signed JWT for userID.
func (s *handlerSuite) generateTestToken(userID string) string {
	token, err := utils.GenerateJWT(userID, testJWTSecret, time.Hour, "tfe-test")
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

// do sends an authenticated request. A nil body sends no payload.
func (s *handlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.generateTestToken(testUserID))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *handlerSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *handlerSuite) errorMessage(w *httptest.ResponseRecorder) string {
	var body map[string]string
	s.decode(w, &body)
	return body["error"]
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func strPtr(v string) *string {
	return &v
}


func (s *handlerSuite) doWithoutAuth(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
