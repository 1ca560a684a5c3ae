package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	authHTTP "github.com/allisson/authgate/internal/auth/http"
	"github.com/allisson/authgate/internal/auth/http/dto"
	authService "github.com/allisson/authgate/internal/auth/service"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
	usecaseMocks "github.com/allisson/authgate/internal/auth/usecase/mocks"
	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/metrics"
	"github.com/allisson/authgate/internal/testutil"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestServer creates a test server without dependencies.
func createTestServer() *Server {
	return NewServer(nil, nil, "localhost", 8080, discardLogger())
}

// createMinimalRouter creates a router with only health endpoints.
func createMinimalRouter(server *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(server.logger))

	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)

	return router
}

func readiness(t *testing.T, server *Server) (int, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	createMinimalRouter(server).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	t.Run("no dependencies", func(t *testing.T) {
		code, response := readiness(t, createTestServer())

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "not_ready", response["status"])

		components, ok := response["components"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "error", components["database"])
		assert.Equal(t, "error", components["session_store"])
	})

	t.Run("all dependencies up", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		sqlMock.ExpectPing()

		server := NewServer(db, stubPinger{}, "localhost", 8080, discardLogger())
		code, response := readiness(t, server)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", response["status"])
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("session store down", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		sqlMock.ExpectPing()

		server := NewServer(db, stubPinger{err: errors.New("connection refused")}, "localhost", 8080, discardLogger())
		code, response := readiness(t, server)

		assert.Equal(t, http.StatusServiceUnavailable, code)
		components := response["components"].(map[string]any)
		assert.Equal(t, "ok", components["database"])
		assert.Equal(t, "error", components["session_store"])
	})

	t.Run("real session store", func(t *testing.T) {
		store, _ := testutil.NewSessionStore(t)
		db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		sqlMock.ExpectPing()

		code, _ := readiness(t, NewServer(db, store, "localhost", 8080, discardLogger()))
		assert.Equal(t, http.StatusOK, code)
	})
}

func TestCustomLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string { return "req-1" })))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?password=hunter2", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "/test", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouter_NotFoundEndpoint(t *testing.T) {
	router := createMinimalRouter(createTestServer())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_StartWithoutRouter(t *testing.T) {
	assert.Error(t, createTestServer().Start(context.Background()))
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := NewServer(nil, nil, "127.0.0.1", 0, discardLogger())
	server.router = createMinimalRouter(server)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRequestIDMiddleware_HeaderPresent(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	requestID := w.Header().Get("X-Request-Id")
	parsed, err := uuid.Parse(requestID)
	require.NoError(t, err, "X-Request-Id should be a valid UUID")
	assert.NotEqual(t, uuid.Nil, parsed)
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), provider)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsServer_WithoutProvider(t *testing.T) {
	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), nil)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// apiHarness wires the real codec, gate and use case over miniredis behind the full router.
type apiHarness struct {
	router *gin.Engine
	users  *usecaseMocks.MockUserUseCase
}

func newAPIHarness(t *testing.T, cfg *config.Config) *apiHarness {
	t.Helper()

	store, _ := testutil.NewSessionStore(t)
	codec := authService.NewTokenCodec(testutil.KeyPair(t), authService.WithIssuer(cfg.AuthTokenIssuer))
	users := &usecaseMocks.MockUserUseCase{}

	authUC := authUseCase.NewAuthUseCase(cfg, users, codec, store)
	gate := authUseCase.NewAuthenticationGate(codec, store)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := NewServer(nil, store, "localhost", 8080, discardLogger())
	server.SetupRouter(ctx, cfg, authHTTP.NewAuthHandler(authUC, discardLogger()), gate, nil)

	return &apiHarness{router: server.router, users: users}
}

func (h *apiHarness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:            "info",
		AuthTokenExpiration: time.Hour,
		AuthTokenIssuer:     "authgate",
		MetricsNamespace:    "authgate",
	}
}

func TestRouter_AuthLifecycle(t *testing.T) {
	h := newAPIHarness(t, testConfig())

	principal := authDomain.NewPrincipal("alice", authDomain.RoleOperator,
		[]authDomain.Permission{authDomain.AccountReadPermission})
	h.users.On("Authenticate", mock.Anything, &authDomain.LoginInput{Username: "alice", Password: "correct"}).
		Return(&principal, nil)
	h.users.On("Authenticate", mock.Anything, mock.Anything).Return(nil, authDomain.ErrInvalidCredentials)

	w := h.do(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_credentials")

	w = h.do(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{Username: "alice", Password: "correct"})
	require.Equal(t, http.StatusOK, w.Code)

	var issued dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.Equal(t, int64(3600), issued.ExpiresIn)

	w = h.do(http.MethodGet, "/v1/auth/me", issued.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.PrincipalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Subject)
	assert.Equal(t, []string{"account:read"}, me.Permissions)

	w = h.do(http.MethodPost, "/v1/auth/refresh", issued.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEqual(t, issued.AccessToken, refreshed.AccessToken)

	// The refreshed-away token is revoked, the new one works.
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/auth/me", issued.AccessToken, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/auth/me", refreshed.AccessToken, nil).Code)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/v1/auth/logout", refreshed.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/v1/auth/logout", refreshed.AccessToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/auth/me", refreshed.AccessToken, nil).Code)
}

func TestRouter_RejectsUnknownTokens(t *testing.T) {
	h := newAPIHarness(t, testConfig())

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/auth/me", "not.a.token", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/v1/auth/logout", "not.a.token", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/v1/auth/logout", "", nil).Code)
}

func TestRouter_LoginRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitLoginEnabled = true
	cfg.RateLimitLoginRequestsPerSec = 0.001
	cfg.RateLimitLoginBurst = 1
	h := newAPIHarness(t, cfg)
	h.users.On("Authenticate", mock.Anything, mock.Anything).Return(nil, authDomain.ErrInvalidCredentials)

	body := dto.LoginRequest{Username: "alice", Password: "wrong"}
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/v1/auth/login", "", body).Code)

	w := h.do(http.MethodPost, "/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestServer_NoMetricsEndpoint(t *testing.T) {
	h := newAPIHarness(t, testConfig())
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/metrics", "", nil).Code)
}
