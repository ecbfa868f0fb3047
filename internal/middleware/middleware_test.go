package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret"

type MiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *MiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.router.GET("/whoami", middleware.AuthMiddleware(testSecret, "bizledger"), func(c *gin.Context) {
		userID, ok := middleware.GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		ctxUser, _ := middleware.UserIDFromCtx(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user": userID, "ctxUser": ctxUser})
	})
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func signToken(t *testing.T, claims jwt.RegisteredClaims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (s *MiddlewareTestSuite) do(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *MiddlewareTestSuite) TestValidToken() {
	token := signToken(s.T(), jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "bizledger",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, jwt.SigningMethodHS256)

	w := s.do("Bearer " + token)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"user":"user-1"`)
	s.Contains(w.Body.String(), `"ctxUser":"user-1"`)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *MiddlewareTestSuite) TestIssuedTokenIsAccepted() {
	token, err := middleware.IssueToken("cli-user", testSecret, "bizledger", time.Minute)
	s.Require().NoError(err)

	w := s.do("Bearer " + token)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"user":"cli-user"`)
}

func (s *MiddlewareTestSuite) TestRejectsBadRequests() {
	expired := signToken(s.T(), jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "bizledger",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}, jwt.SigningMethodHS256)
	wrongIssuer := signToken(s.T(), jwt.RegisteredClaims{Subject: "user-1", Issuer: "someone-else"}, jwt.SigningMethodHS256)
	noSubject := signToken(s.T(), jwt.RegisteredClaims{Issuer: "bizledger"}, jwt.SigningMethodHS256)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-token",
		"expired":        "Bearer " + expired,
		"wrong issuer":   "Bearer " + wrongIssuer,
		"no subject":     "Bearer " + noSubject,
	}
	for name, header := range cases {
		s.Run(name, func() {
			s.Equal(http.StatusUnauthorized, s.do(header).Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim, err := middleware.NewRateLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RateLimit(lim))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}
