package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	errServerError  = errors.New("server error")
	errNoHTTPClient = errors.New("http client not configured")
)

// maxErrorBody caps how much of a non-2xx body is kept for classification.
const maxErrorBody = 4 << 10

// newCircuitBreaker returns the breaker shared by all calls of one provider.
// Only transport failures and 5xx responses count against it.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(breakerSettings(name))
}

// breakerSettings admits a full batch while half-open.
func breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(weather.MaxBatchSize),
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	}
}

// upstreamResponse is a completed upstream call. Body holds the full payload
// for 2xx responses and at most maxErrorBody bytes otherwise.
type upstreamResponse struct {
	StatusCode int
	Body       []byte
}

// doRequest performs exactly one call through the circuit breaker. Transport
// failures, 5xx statuses and an open breaker come back as a NetworkError or
// StatusError; every other status is returned to the caller to classify.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	location string,
	buildRequest func() (*http.Request, error),
) (upstreamResponse, error) {
	if client == nil {
		return upstreamResponse{}, weather.NetworkError(location, errNoHTTPClient)
	}

	req, err := buildRequest()
	if err != nil {
		return upstreamResponse{}, weather.NetworkError(location, err)
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		var body []byte
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body, execErr = io.ReadAll(resp.Body)
		} else {
			body, execErr = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		}
		if execErr != nil {
			return nil, execErr
		}

		out := upstreamResponse{StatusCode: resp.StatusCode, Body: body}
		if resp.StatusCode >= 500 {
			return out, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		return out, nil
	})

	if err != nil {
		if out, ok := result.(upstreamResponse); ok {
			return out, weather.StatusError(location, out.StatusCode)
		}
		return upstreamResponse{}, weather.NetworkError(location, err)
	}

	out, ok := result.(upstreamResponse)
	if !ok {
		return upstreamResponse{}, weather.NetworkError(location, fmt.Errorf("unexpected result type from circuit breaker"))
	}
	return out, nil
}

// classifyStatus maps a non-2xx status to the error taxonomy: 400 and 404 mean
// the provider does not know the location.
func classifyStatus(location string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return weather.NotFoundError(location)
	default:
		return weather.StatusError(location, status)
	}
}

// decode unmarshals a 2xx payload into v.
func decode(location string, body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return weather.MalformedPayloadError(location, err)
	}
	return nil
}

func formatTemperature(c float64) string {
	return fmt.Sprintf("%g°C", c)
}

func formatHumidity(pct float64) string {
	return fmt.Sprintf("%g%%", pct)
}

func formatWindSpeed(kmh float64) string {
	return fmt.Sprintf("%g km/h", kmh)
}
