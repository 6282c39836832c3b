package providers

import (
	"fmt"
	"net/http"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

// Keys holds the credentials of every supported upstream.
type Keys struct {
	VisualCrossing string
	WeatherAPI     string
	OpenWeather    string
	Geocoder       string
}

// New returns the provider registered under name.
func New(name string, client *http.Client, keys Keys) (weather.Provider, error) {
	switch name {
	case "", "visualcrossing":
		if keys.VisualCrossing == "" {
			return nil, fmt.Errorf("visualcrossing: WEATHER_API_KEY is not configured")
		}
		return NewVisualCrossingProvider(client, keys.VisualCrossing), nil
	case "weatherapi":
		if keys.WeatherAPI == "" {
			return nil, fmt.Errorf("weatherapi: WEATHERAPI_API_KEY is not configured")
		}
		return NewWeatherAPIProvider(client, keys.WeatherAPI), nil
	case "openweather":
		if keys.OpenWeather == "" {
			return nil, fmt.Errorf("openweather: OPENWEATHER_API_KEY is not configured")
		}
		return NewOpenWeatherProvider(client, keys.OpenWeather), nil
	case "openmeteo":
		if keys.Geocoder == "" {
			return nil, fmt.Errorf("openmeteo: GEOCODER_API_KEY is not configured")
		}
		return NewOpenMeteoProvider(client, keys.Geocoder), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
}
