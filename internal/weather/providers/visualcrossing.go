package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// VisualCrossingProvider implements the weather.Provider interface for the
// Visual Crossing timeline API. It accepts city names and zip codes alike.
type VisualCrossingProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewVisualCrossingProvider(client *http.Client, apiKey string) *VisualCrossingProvider {
	return &VisualCrossingProvider{
		name:    "visualcrossing",
		apiKey:  apiKey,
		baseURL: "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline",
		client:  client,
		circuit: newCircuitBreaker("visualcrossing"),
	}
}

func (p *VisualCrossingProvider) Name() string {
	return p.name
}

func (p *VisualCrossingProvider) Fetch(ctx context.Context, location string) (weather.Snapshot, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("unitGroup", "metric")
		values.Set("key", p.apiKey)
		values.Set("contentType", "json")

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(location), values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, location, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	if err := classifyStatus(location, resp.StatusCode); err != nil {
		return weather.Snapshot{}, err
	}

	var payload struct {
		ResolvedAddress   string `json:"resolvedAddress"`
		CurrentConditions *struct {
			Temp       float64 `json:"temp"`
			Conditions string  `json:"conditions"`
			Humidity   float64 `json:"humidity"`
			WindSpeed  float64 `json:"windspeed"`
		} `json:"currentConditions"`
	}
	if err := decode(location, resp.Body, &payload); err != nil {
		return weather.Snapshot{}, err
	}

	current := payload.CurrentConditions
	if current == nil {
		return weather.Snapshot{}, weather.NoConditionsError(location)
	}

	label := payload.ResolvedAddress
	if label == "" {
		label = location
	}

	return weather.Snapshot{
		Location:    label,
		Temperature: formatTemperature(current.Temp),
		Description: current.Conditions,
		Humidity:    formatHumidity(current.Humidity),
		WindSpeed:   formatWindSpeed(current.WindSpeed),
		Source:      "Visual Crossing API",
	}, nil
}
