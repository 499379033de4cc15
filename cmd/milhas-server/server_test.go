package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobmcallan/milhas/internal/app"
	"github.com/bobmcallan/milhas/internal/server"
)

// writeTestConfig writes a config pointing storage at a temp dir and the
// scrape sources at an unreachable address.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.ToSlash(filepath.Join(dir, "milhas_portfolio.db"))
	content := `environment = "test"

[storage]
path = "` + dbPath + `"

[sources.quotes]
url = "http://127.0.0.1:1/quotes"
timeout = "1s"

[sources.opportunities]
url = "http://127.0.0.1:1/news"
timeout = "1s"

[logging]
level = "error"
format = "json"
`
	path := filepath.Join(dir, "milhas.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// testServer creates an httptest.Server with the full milhas-server handler.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MILHAS_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	a, err := app.NewApp(writeTestConfig(t))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	srv := server.NewServer(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

// TestQuotesFallback verifies quotes are served from the fallback table
// when the source is unreachable.
func TestQuotesFallback(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/quotes")
	if err != nil {
		t.Fatalf("GET /api/quotes failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Quotes map[string]float64 `json:"quotes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Quotes["Smiles"] != 17.60 || body.Quotes["LatamPass"] != 23.20 || body.Quotes["TudoAzul"] != 19.80 {
		t.Errorf("Expected fallback quotes, got %v", body.Quotes)
	}
}

// TestAdvisoryUnconfigured verifies the advisory endpoint reports 503
// without an API key.
func TestAdvisoryUnconfigured(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/advisory", "application/json",
		strings.NewReader(`{"program":"Smiles","investment":3500,"base_points":100000,"bonus_percent":100}`))
	if err != nil {
		t.Fatalf("POST /api/advisory failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}
}

// TestPortfolioRoundTrip saves an operation and reads it back.
func TestPortfolioRoundTrip(t *testing.T) {
	ts := testServer(t)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/portfolio",
		strings.NewReader(`{"program":"TudoAzul","investment":2000,"base_points":60000,"bonus_percent":80,"sale_price":19.5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(server.UserHeader, "carla")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/portfolio failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/portfolio", nil)
	req.Header.Set(server.UserHeader, "carla")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/portfolio failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Operations []struct {
			Program string `json:"program"`
			Points  int64  `json:"points"`
		} `json:"operations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Operations) != 1 || body.Operations[0].Program != "TudoAzul" || body.Operations[0].Points != 108000 {
		t.Errorf("Unexpected operations: %+v", body.Operations)
	}
}
