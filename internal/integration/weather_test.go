package integration

import (
	"context"
	"testing"
)

func TestGetWeatherByCityStaysInClimateRange(t *testing.T) {
	m := NewMockOpenWeather(0)
	cases := []struct {
		city       string
		low, high  int
		conditions []string
	}{
		{"Johannesburg", 15, 28, []string{"sunny", "partly-cloudy", "thunderstorms"}},
		{"Cape Town", 12, 25, []string{"sunny", "windy", "rainy"}},
		{"durban", 18, 30, []string{"sunny", "humid", "rainy"}},
		{"Pretoria", 14, 27, []string{"sunny", "partly-cloudy", "thunderstorms"}},
		{"port elizabeth", 16, 24, []string{"sunny", "windy", "cloudy"}},
		{"Upington", 10, 35, []string{"sunny", "cloudy"}}, // not in the curated set
	}
	for _, tc := range cases {
		allowed := make(map[string]bool, len(tc.conditions))
		for _, c := range tc.conditions {
			allowed[c] = true
		}
		for i := 0; i < 100; i++ {
			w, err := m.GetWeatherByCity(context.Background(), tc.city)
			if err != nil {
				t.Fatalf("GetWeatherByCity(%q) error: %v", tc.city, err)
			}
			if w.Temperature < tc.low || w.Temperature >= tc.high {
				t.Fatalf("GetWeatherByCity(%q) temperature = %d, want in [%d,%d)", tc.city, w.Temperature, tc.low, tc.high)
			}
			if !allowed[w.Condition] {
				t.Fatalf("GetWeatherByCity(%q) condition = %q, want one of %v", tc.city, w.Condition, tc.conditions)
			}
			if w.Icon != "weather-"+w.Condition {
				t.Fatalf("GetWeatherByCity(%q) icon = %q for condition %q", tc.city, w.Icon, w.Condition)
			}
			if w.UpdatedAt.IsZero() {
				t.Fatalf("GetWeatherByCity(%q) returned zero UpdatedAt", tc.city)
			}
		}
	}
}

func TestGetWeatherByCityWarnings(t *testing.T) {
	m := NewMockOpenWeather(0)
	// Johannesburg can draw thunderstorms; keep sampling until both the
	// warning and non-warning cases show up.
	sawStorm := false
	for i := 0; i < 500 && !sawStorm; i++ {
		w, err := m.GetWeatherByCity(context.Background(), "johannesburg")
		if err != nil {
			t.Fatalf("GetWeatherByCity error: %v", err)
		}
		switch w.Condition {
		case "thunderstorms":
			sawStorm = true
			if w.Warning != "Severe thunderstorm warning in effect for Gauteng" {
				t.Fatalf("thunderstorms warning = %q", w.Warning)
			}
		case "sunny", "partly-cloudy":
			if w.Warning != "" {
				t.Fatalf("condition %q carries warning %q, want none", w.Condition, w.Warning)
			}
		}
	}
	if !sawStorm {
		t.Fatal("no thunderstorms drawn in 500 samples")
	}

	// Cape Town rain below 15°C carries the cold front warning.
	for i := 0; i < 1000; i++ {
		w, err := m.GetWeatherByCity(context.Background(), "cape town")
		if err != nil {
			t.Fatalf("GetWeatherByCity error: %v", err)
		}
		if w.Condition == "rainy" {
			want := ""
			if w.Temperature < 15 {
				want = "Cold front bringing heavy rain"
			}
			if w.Warning != want {
				t.Fatalf("rainy at %d°C warning = %q, want %q", w.Temperature, w.Warning, want)
			}
		}
	}
}

func TestGet5DayForecastLengthAndOrder(t *testing.T) {
	m := NewMockOpenWeather(0)
	forecast, err := m.Get5DayForecast(context.Background(), "durban")
	if err != nil {
		t.Fatalf("Get5DayForecast error: %v", err)
	}
	if len(forecast) != 5 {
		t.Fatalf("forecast length = %d, want 5", len(forecast))
	}
	for i := 1; i < len(forecast); i++ {
		if !forecast[i].UpdatedAt.After(forecast[i-1].UpdatedAt) {
			t.Fatalf("forecast day %d not after day %d", i, i-1)
		}
	}
}
