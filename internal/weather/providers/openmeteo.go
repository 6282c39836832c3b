package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/AhmedHeshamC/weatherAPI/internal/common"
	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// errNoGeocodeMatch means the geocoder answered but knows no such place.
var errNoGeocodeMatch = errors.New("geocoder: no match")

// GeocodeFunc resolves a free-text location to coordinates. It returns
// errNoGeocodeMatch (wrapped) when the place is unknown; any other error is a
// failure to reach the geocoder.
type GeocodeFunc func(ctx context.Context, location string) (lat, lon float64, err error)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo needs coordinates, so the location is geocoded first.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	geocode GeocodeFunc
}

// NewOpenMeteoProvider uses the Google geocoding API (through
// kelvins/geocoder) with the given key.
func NewOpenMeteoProvider(client *http.Client, geocoderAPIKey string) *OpenMeteoProvider {
	geocoder.ApiKey = geocoderAPIKey
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		circuit: newCircuitBreaker("openmeteo"),
		geocode: googleGeocode,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, location string) (weather.Snapshot, error) {
	lat, lon, err := p.geocode(ctx, location)
	if err != nil {
		if errors.Is(err, errNoGeocodeMatch) {
			return weather.Snapshot{}, weather.NotFoundError(location)
		}
		return weather.Snapshot{}, weather.NetworkError(location, err)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
		values.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
		values.Set("wind_speed_unit", "kmh")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, location, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	// Coordinates come from the geocoder, so a 400 here is our fault, not an
	// unknown location.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return weather.Snapshot{}, weather.StatusError(location, resp.StatusCode)
	}

	var payload struct {
		Current *struct {
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := decode(location, resp.Body, &payload); err != nil {
		return weather.Snapshot{}, err
	}
	if payload.Current == nil {
		return weather.Snapshot{}, weather.NoConditionsError(location)
	}

	return weather.Snapshot{
		Location:    location,
		Temperature: formatTemperature(payload.Current.Temperature),
		Description: describeWeatherCode(payload.Current.WeatherCode),
		Humidity:    formatHumidity(payload.Current.Humidity),
		WindSpeed:   formatWindSpeed(payload.Current.WindSpeed),
		Source:      "Open-Meteo",
	}, nil
}

// googleGeocode runs the blocking geocoder call and gives up when ctx ends.
func googleGeocode(ctx context.Context, location string) (float64, float64, error) {
	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := geocoder.Geocoding(geocoder.Address{City: location})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return 0, 0, classifyGeocodeError(r.err)
		}
		return r.loc.Latitude, r.loc.Longitude, nil
	}
}

// classifyGeocodeError maps the geocoder's status-text errors. ZERO_RESULTS
// and INVALID_REQUEST mean the address itself was rejected.
func classifyGeocodeError(err error) error {
	if common.ContainsAnyFold(err.Error(), "ZERO_RESULTS", "INVALID_REQUEST") {
		return fmt.Errorf("%w: %v", errNoGeocodeMatch, err)
	}
	return err
}

// describeWeatherCode maps WMO weather interpretation codes (simplified).
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code >= 1 && code <= 3:
		return "Partially cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return "Rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snow"
	case code >= 95:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
