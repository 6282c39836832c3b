package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

const testAPIKey = "secret"

type fakeResolver struct {
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, locations []string) ([]weather.Outcome, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]weather.Outcome, len(locations))
	for i, loc := range locations {
		if loc == "badcity" {
			out[i] = weather.Failed(loc, "Location not found or invalid: "+loc)
			continue
		}
		out[i] = weather.Succeeded(weather.Snapshot{Location: loc, Source: "test"})
	}
	return out, nil
}

func (f *fakeResolver) CacheStats() weather.StatsSnapshot {
	return weather.StatsSnapshot{Hits: 3, Misses: 1}
}

func newTestApp(svc Resolver) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, svc, testAPIKey)
	return app
}

func postWeather(t *testing.T, app *fiber.App, apiKey, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/weather", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to decode %q: %v", data, err)
	}
}

// TestWeatherRequiresAPIKey verifies that a missing key is 401 and a wrong
// key is 403, before the body is looked at.
func TestWeatherRequiresAPIKey(t *testing.T) {
	svc := &fakeResolver{}
	app := newTestApp(svc)

	resp := postWeather(t, app, "", `{"locations":["London"]}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}

	resp = postWeather(t, app, "wrong", `{"locations":["London"]}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["message"] != "Forbidden: Invalid API key." {
		t.Fatalf("unexpected message %q", body["message"])
	}
	if svc.calls != 0 {
		t.Fatalf("expected no resolver calls, got %d", svc.calls)
	}
}

// TestWeatherRejectsInvalidBatches verifies the 400 response for malformed
// location lists.
func TestWeatherRejectsInvalidBatches(t *testing.T) {
	svc := &fakeResolver{}
	app := newTestApp(svc)

	bodies := []string{
		`{}`,
		`{"locations":[]}`,
		`{"locations":"London"}`,
		`{"locations":["London", true]}`,
		`{"locations":["London", ""]}`,
		`{"locations":["a","b","c","d","e","f","g","h","i","j","k"]}`,
		`not json`,
	}
	for _, body := range bodies {
		resp := postWeather(t, app, testAPIKey, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected status %d, got %d", body, http.StatusBadRequest, resp.StatusCode)
		}

		var got map[string]string
		decodeBody(t, resp, &got)
		if got["message"] != invalidBatchMessage {
			t.Fatalf("body %s: unexpected message %q", body, got["message"])
		}
		if got["reason"] == "" {
			t.Fatalf("body %s: expected a reason", body)
		}
	}

	if svc.calls != 0 {
		t.Fatalf("expected no resolver calls, got %d", svc.calls)
	}
}

// TestWeatherReturnsOrderedResults verifies that successes and failures come
// back in request order.
func TestWeatherReturnsOrderedResults(t *testing.T) {
	app := newTestApp(&fakeResolver{})

	resp := postWeather(t, app, testAPIKey, `{"locations":["London","badcity",10001]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var got []map[string]string
	decodeBody(t, resp, &got)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0]["location"] != "London" || got[0]["source"] != "test" {
		t.Fatalf("unexpected first result %v", got[0])
	}
	if got[1]["error"] != "Location not found or invalid: badcity" {
		t.Fatalf("unexpected failure record %v", got[1])
	}
	if _, ok := got[1]["source"]; ok {
		t.Fatalf("failure record must not carry weather fields: %v", got[1])
	}
	if got[2]["location"] != "10001" {
		t.Fatalf("unexpected zip code result %v", got[2])
	}
}

// TestWeatherInternalError verifies that a resolver failure is a generic 500.
func TestWeatherInternalError(t *testing.T) {
	app := newTestApp(&fakeResolver{err: weather.ErrInternal})

	resp := postWeather(t, app, testAPIKey, `{"locations":["London"]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["message"] != internalErrorMessage {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestCacheStatsAndRoot(t *testing.T) {
	app := newTestApp(&fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	req.Header.Set(APIKeyHeader, testAPIKey)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var stats weather.StatsSnapshot
	decodeBody(t, resp, &stats)
	if stats.Hits != 3 || stats.Misses != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "Weather API is running!" {
		t.Fatalf("unexpected root body %q", data)
	}
}

func TestRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimiter(2, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, resp.StatusCode)
	}
}
