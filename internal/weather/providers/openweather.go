package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  client,
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, location string) (weather.Snapshot, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("q", location)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
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
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Main *struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := decode(location, resp.Body, &payload); err != nil {
		return weather.Snapshot{}, err
	}
	if payload.Main == nil {
		return weather.Snapshot{}, weather.NoConditionsError(location)
	}

	desc := ""
	if len(payload.Weather) > 0 {
		desc = payload.Weather[0].Description
	}

	// OpenWeatherMap reports metric wind in m/s.
	windKmh := math.Round(payload.Wind.Speed*3.6*10) / 10

	return weather.Snapshot{
		Location:    joinLabel(location, payload.Name, payload.Sys.Country),
		Temperature: formatTemperature(payload.Main.Temp),
		Description: desc,
		Humidity:    formatHumidity(payload.Main.Humidity),
		WindSpeed:   formatWindSpeed(windKmh),
		Source:      "OpenWeatherMap",
	}, nil
}
