package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Free-tier forecast limit.
const maxForecastDays = 16

// Sentinel errors for forecast lookups.
var (
	ErrPlaceRequired   = errors.New("weather: location name cannot be empty")
	ErrPlaceNotFound   = errors.New("weather: location not found")
	ErrInvalidRange    = errors.New("weather: invalid date range")
	ErrRangeTooLong    = errors.New("weather: date range exceeds forecast limit")
	ErrNoForecastData  = errors.New("weather: no forecast data available")
	ErrPastStartDate   = errors.New("weather: start date cannot be in the past")
	ErrBadDateFormat   = errors.New("weather: dates must use the YYYY-MM-DD format")
	ErrServiceFailed   = errors.New("weather: service unavailable")
	ErrGeocodingFailed = errors.New("weather: location service unavailable")
)

// Client fetches daily forecasts from the Open-Meteo API.
type Client struct {
	httpClient   *http.Client
	forecastURL  string
	geocodingURL string
}

// New creates a client. Empty URLs default to the public Open-Meteo
// endpoints.
func New(forecastBaseURL, geocodingBaseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(forecastBaseURL) == "" {
		forecastBaseURL = "https://api.open-meteo.com"
	}
	if strings.TrimSpace(geocodingBaseURL) == "" {
		geocodingBaseURL = "https://geocoding-api.open-meteo.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		forecastURL:  strings.TrimRight(forecastBaseURL, "/") + "/v1/forecast",
		geocodingURL: strings.TrimRight(geocodingBaseURL, "/") + "/v1/search",
	}
}

// Location is a resolved place.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
}

// Day is one day of forecast data.
type Day struct {
	Date          string  `json:"date"`
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weather_code"`
	WindSpeedMax  float64 `json:"wind_speed_max"`
}

// RangeForecast is the forecast for a place over a date range.
type RangeForecast struct {
	Location  Location `json:"location"`
	Forecast  []Day    `json:"forecast"`
	DateRange string   `json:"date_range"`
}

// Geocode resolves a place name to coordinates.
func (c *Client) Geocode(ctx context.Context, place string) (*Location, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil, ErrPlaceRequired
	}

	params := url.Values{}
	params.Set("name", place)
	params.Set("count", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodingURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: geocoding request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGeocodingFailed, resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Name      string  `json:"name"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlaceNotFound, place)
	}

	r := payload.Results[0]
	country := r.Country
	if country == "" {
		country = "Unknown"
	}
	return &Location{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Name:      r.Name,
		Country:   country,
	}, nil
}

// DailyForecast fetches the forecast for a date range. The range must start
// today or later and span at most 16 days.
func (c *Client) DailyForecast(ctx context.Context, place, startDate, endDate string) (*RangeForecast, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, ErrBadDateFormat
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, ErrBadDateFormat
	}
	if start.After(end) {
		return nil, ErrInvalidRange
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if start.Before(today) {
		return nil, ErrPastStartDate
	}
	if int(end.Sub(start).Hours()/24)+1 > maxForecastDays {
		return nil, ErrRangeTooLong
	}

	location, err := c.Geocode(ctx, place)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%v", location.Latitude))
	params.Set("longitude", fmt.Sprintf("%v", location.Longitude))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,weather_code,wind_speed_10m_max")
	params.Set("timezone", "auto")
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.forecastURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: forecast request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrServiceFailed, resp.StatusCode)
	}

	var payload struct {
		Daily struct {
			Time          []string  `json:"time"`
			TempMax       []float64 `json:"temperature_2m_max"`
			TempMin       []float64 `json:"temperature_2m_min"`
			Precipitation []float64 `json:"precipitation_sum"`
			WeatherCode   []int     `json:"weather_code"`
			WindSpeedMax  []float64 `json:"wind_speed_10m_max"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceFailed, err)
	}
	if len(payload.Daily.Time) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoForecastData, place)
	}

	forecast := make([]Day, 0, len(payload.Daily.Time))
	for i, dateStr := range payload.Daily.Time {
		day := Day{Date: dateStr}
		if i < len(payload.Daily.TempMax) {
			day.TempMax = payload.Daily.TempMax[i]
		}
		if i < len(payload.Daily.TempMin) {
			day.TempMin = payload.Daily.TempMin[i]
		}
		if i < len(payload.Daily.Precipitation) {
			day.Precipitation = payload.Daily.Precipitation[i]
		}
		if i < len(payload.Daily.WeatherCode) {
			day.WeatherCode = payload.Daily.WeatherCode[i]
		}
		if i < len(payload.Daily.WindSpeedMax) {
			day.WindSpeedMax = payload.Daily.WindSpeedMax[i]
		}
		forecast = append(forecast, day)
	}

	return &RangeForecast{
		Location:  *location,
		Forecast:  forecast,
		DateRange: fmt.Sprintf("%s to %s", startDate, endDate),
	}, nil
}

// ForecastRange fetches the range forecast and returns it as a JSON snippet
// for prompt assembly.
func (c *Client) ForecastRange(ctx context.Context, place, startDate, endDate string) (string, error) {
	forecast, err := c.DailyForecast(ctx, place, startDate, endDate)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(forecast)
	if err != nil {
		return "", fmt.Errorf("weather: forecast marshal: %w", err)
	}
	return string(data), nil
}
