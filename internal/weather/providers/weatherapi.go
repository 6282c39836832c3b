package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/AhmedHeshamC/weatherAPI/internal/common"
	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		client:  client,
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, location string) (weather.Snapshot, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for city names, zip codes and "lat,lon" alike.
		values.Set("q", location)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, location, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	// 400 also covers bad keys and quota; only error 1006 means an unknown location.
	if resp.StatusCode == http.StatusBadRequest {
		if common.ContainsAnyFold(string(resp.Body), "no matching location", `"code":1006`) {
			return weather.Snapshot{}, weather.NotFoundError(location)
		}
		return weather.Snapshot{}, weather.StatusError(location, resp.StatusCode)
	}
	if err := classifyStatus(location, resp.StatusCode); err != nil {
		return weather.Snapshot{}, err
	}

	var payload struct {
		Location struct {
			Name    string `json:"name"`
			Region  string `json:"region"`
			Country string `json:"country"`
		} `json:"location"`
		Current *struct {
			TempC     float64 `json:"temp_c"`
			Humidity  float64 `json:"humidity"`
			WindKph   float64 `json:"wind_kph"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := decode(location, resp.Body, &payload); err != nil {
		return weather.Snapshot{}, err
	}
	if payload.Current == nil {
		return weather.Snapshot{}, weather.NoConditionsError(location)
	}

	return weather.Snapshot{
		Location:    joinLabel(location, payload.Location.Name, payload.Location.Region, payload.Location.Country),
		Temperature: formatTemperature(payload.Current.TempC),
		Description: payload.Current.Condition.Text,
		Humidity:    formatHumidity(payload.Current.Humidity),
		WindSpeed:   formatWindSpeed(payload.Current.WindKph),
		Source:      "WeatherAPI.com",
	}, nil
}

// joinLabel builds "Name, Region, Country" from the non-empty parts, falling
// back to the raw location.
func joinLabel(fallback string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return fallback
	}
	return strings.Join(kept, ", ")
}
