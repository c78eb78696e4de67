package model

import "time"

// WeatherInfo is a point-in-time weather snapshot for an event's city.
type WeatherInfo struct {
	Temperature int       `json:"temperature"` // degrees Celsius
	Condition   string    `json:"condition"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Warning     string    `json:"warning,omitempty"` // set for severe conditions
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LoadSheddingInfo is a point-in-time power-outage snapshot. Stage is
// an integer in [0,5]; stage 0 means no load shedding is active and the
// schedule is empty.
type LoadSheddingInfo struct {
	Stage     int                `json:"stage"`
	IsActive  bool               `json:"isActive"`
	Schedule  []LoadSheddingSlot `json:"schedule,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// LoadSheddingSlot is a single outage window on a given date. Times are
// local clock strings ("06:00") and dates are ISO days ("2026-08-31"),
// both in SAST.
type LoadSheddingSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Date      string `json:"date"`
}
