package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/milhas/internal/common"
)

const testJWTSecret = "test-secret-for-milhas"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// resolvedUser runs a request through the auth middleware and returns the
// user id seen by the handler.
func resolvedUser(t *testing.T, cfg *common.Config, headers map[string]string) (string, int) {
	t.Helper()
	var got string
	handler := bearerTokenMiddleware(cfg)(userContextMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = common.ResolveUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return got, rr.Code
}

func TestUserContextMiddleware_Header(t *testing.T) {
	user, code := resolvedUser(t, common.NewDefaultConfig(), map[string]string{UserHeader: "  ana  "})
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if user != "ana" {
		t.Errorf("Expected user ana, got %q", user)
	}
}

func TestUserContextMiddleware_NoHeaderDefaults(t *testing.T) {
	user, _ := resolvedUser(t, common.NewDefaultConfig(), nil)
	if user != common.DefaultUserID {
		t.Errorf("Expected %q, got %q", common.DefaultUserID, user)
	}
}

func TestBearerToken_ValidTokenWinsOverHeader(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = testJWTSecret
	token := signTestToken(t, testJWTSecret, jwt.MapClaims{
		"sub": "bruno",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	user, code := resolvedUser(t, cfg, map[string]string{
		"Authorization": "Bearer " + token,
		UserHeader:      "ana",
	})
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if user != "bruno" {
		t.Errorf("Expected bearer subject bruno, got %q", user)
	}
}

func TestBearerToken_InvalidSignature(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = testJWTSecret
	token := signTestToken(t, "some-other-secret", jwt.MapClaims{"sub": "bruno"})

	_, code := resolvedUser(t, cfg, map[string]string{"Authorization": "Bearer " + token})
	if code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", code)
	}
}

func TestBearerToken_Expired(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = testJWTSecret
	token := signTestToken(t, testJWTSecret, jwt.MapClaims{
		"sub": "bruno",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, code := resolvedUser(t, cfg, map[string]string{"Authorization": "Bearer " + token})
	if code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", code)
	}
}

func TestBearerToken_MissingSubject(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = testJWTSecret
	token := signTestToken(t, testJWTSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	_, code := resolvedUser(t, cfg, map[string]string{"Authorization": "Bearer " + token})
	if code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", code)
	}
}

func TestBearerToken_HeaderOnlyRejectedWithSecret(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = testJWTSecret

	user, code := resolvedUser(t, cfg, map[string]string{UserHeader: "ana"})
	if code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", code)
	}
	if user != "" {
		t.Errorf("Handler must not run, saw user %q", user)
	}
}

func TestBearerToken_PublicPathsWithSecret(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = testJWTSecret
	handler := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), common.NewSilentLogger(), cfg)

	for path, want := range map[string]int{
		"/api/health":    http.StatusOK,
		"/api/version":   http.StatusOK,
		"/api/quotes":    http.StatusUnauthorized,
		"/api/portfolio": http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(UserHeader, "ana")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, rr.Code)
		}
	}
}

func TestBearerToken_IgnoredWithoutSecret(t *testing.T) {
	user, code := resolvedUser(t, common.NewDefaultConfig(), map[string]string{
		"Authorization": "Bearer not-a-jwt",
		UserHeader:      "ana",
	})
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if user != "ana" {
		t.Errorf("Expected header user ana, got %q", user)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
}

func TestCorrelationIDMiddleware_PropagatesRequestID(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Correlation-ID"); got != "req-123" {
		t.Errorf("Expected req-123, got %q", got)
	}
}

func TestCORSMiddleware_AllowsUserHeader(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("OPTIONS should not reach the handler")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/portfolio", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), UserHeader) {
		t.Errorf("Expected %s in allowed headers", UserHeader)
	}
}

func TestLoggingMiddleware_4xxUsesInfoLevel(t *testing.T) {
	// At WARN level Info() events are filtered out, so a 4xx must leave no output.
	var buf bytes.Buffer
	logger := common.NewLoggerWithOutput("warn", &buf)

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	if strings.Contains(buf.String(), "HTTP request") {
		t.Errorf("Expected 404 log to be filtered at WARN level, got: %s", buf.String())
	}
}

func TestLoggingMiddleware_5xxUsesErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := common.NewLoggerWithOutput("warn", &buf)

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/broken", nil))

	if !strings.Contains(buf.String(), "HTTP request") {
		t.Errorf("Expected 500 log to pass WARN filter, got: %q", buf.String())
	}
}
