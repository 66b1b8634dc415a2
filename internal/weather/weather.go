package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Status is the current-conditions snapshot shown in the board's badge.
type Status struct {
	// TempC is the current temperature in degrees Celsius.
	TempC float64 `json:"temp_c"`
	// Code is the WMO weather interpretation code reported by the API.
	Code int `json:"code"`
	// Label is a short human-readable description derived from Code.
	Label string `json:"label"`
}

// Reader abstracts how current conditions are obtained, so the build
// pipeline and tests can swap in a canned implementation.
type Reader interface {
	Read(ctx context.Context) (Status, error)
}

// openMeteoReader queries the Open-Meteo current-weather endpoint. No API
// key is required.
type openMeteoReader struct {
	client   *http.Client
	baseURL  string
	lat, lon float64
}

// NewOpenMeteoReader constructs a Reader for the given coordinates.
func NewOpenMeteoReader(lat, lon float64) Reader {
	return &openMeteoReader{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		lat:     lat,
		lon:     lon,
	}
}

// NewStaticReader returns a Reader that always reports st. Used in tests
// and demo runs.
func NewStaticReader(st Status) Reader {
	return staticReader{st: st}
}

type staticReader struct{ st Status }

func (s staticReader) Read(_ context.Context) (Status, error) {
	return s.st, nil
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

func (r *openMeteoReader) Read(ctx context.Context) (Status, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", r.baseURL, r.lat, r.lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Status{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("weather fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("weather fetch: unexpected status %s", resp.Status)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Status{}, fmt.Errorf("weather decode: %w", err)
	}

	return Status{
		TempC: payload.CurrentWeather.Temperature,
		Code:  payload.CurrentWeather.WeatherCode,
		Label: Describe(payload.CurrentWeather.WeatherCode),
	}, nil
}

// Describe maps a WMO weather interpretation code to a short label.
func Describe(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Showers"
	case code >= 85 && code <= 86:
		return "Snow showers"
	case code >= 95:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}
