package integration

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/kagisomabe/luma-events/internal/model"
)

// cityClimate holds the curated temperature range (inclusive low,
// exclusive high) and candidate conditions for a city.
type cityClimate struct {
	tempLow    int
	tempHigh   int
	conditions []string
}

// Curated ranges for the five cities the platform hosts events in.
// Unknown cities fall back to defaultClimate.
var cityClimates = map[string]cityClimate{
	"johannesburg":   {15, 28, []string{"sunny", "partly-cloudy", "thunderstorms"}},
	"cape town":      {12, 25, []string{"sunny", "windy", "rainy"}},
	"durban":         {18, 30, []string{"sunny", "humid", "rainy"}},
	"pretoria":       {14, 27, []string{"sunny", "partly-cloudy", "thunderstorms"}},
	"port elizabeth": {16, 24, []string{"sunny", "windy", "cloudy"}},
}

var defaultClimate = cityClimate{10, 35, []string{"sunny", "cloudy"}}

// MockOpenWeather simulates a weather lookup service. Each call draws a
// condition and temperature independently; consecutive calls for the
// same city are not a coherent trend.
type MockOpenWeather struct {
	delay time.Duration
}

// NewMockOpenWeather returns a simulator that delays each call by d.
func NewMockOpenWeather(d time.Duration) *MockOpenWeather {
	return &MockOpenWeather{delay: d}
}

// GetWeatherByCity returns a randomized snapshot for city. City matching
// is case-insensitive. A textual warning is attached for thunderstorms
// and for cold rain (below 15°C).
func (m *MockOpenWeather) GetWeatherByCity(ctx context.Context, city string) (model.WeatherInfo, error) {
	log.Printf("weather-mock: getting weather for %s", city)
	if err := simulate(ctx, m.delay); err != nil {
		return model.WeatherInfo{}, err
	}

	climate, ok := cityClimates[strings.ToLower(city)]
	if !ok {
		climate = defaultClimate
	}
	temperature := climate.tempLow + rand.Intn(climate.tempHigh-climate.tempLow)
	condition := climate.conditions[rand.Intn(len(climate.conditions))]

	var warning string
	switch {
	case condition == "thunderstorms":
		warning = "Severe thunderstorm warning in effect for Gauteng"
	case condition == "rainy" && temperature < 15:
		warning = "Cold front bringing heavy rain"
	}

	return model.WeatherInfo{
		Temperature: temperature,
		Condition:   condition,
		Icon:        "weather-" + condition,
		Description: fmt.Sprintf("%d°C, %s", temperature, condition),
		Warning:     warning,
		UpdatedAt:   time.Now(),
	}, nil
}

// Get5DayForecast produces five independent draws with UpdatedAt
// advanced by one day per entry.
func (m *MockOpenWeather) Get5DayForecast(ctx context.Context, city string) ([]model.WeatherInfo, error) {
	log.Printf("weather-mock: getting 5-day forecast for %s", city)
	forecast := make([]model.WeatherInfo, 0, 5)
	for i := 0; i < 5; i++ {
		w, err := m.GetWeatherByCity(ctx, city)
		if err != nil {
			return nil, err
		}
		w.UpdatedAt = time.Now().Add(time.Duration(i) * 24 * time.Hour)
		forecast = append(forecast, w)
	}
	return forecast, nil
}
