// Package integration defines the contracts for the external South
// African service providers the platform depends on (payments, SMS,
// weather, load-shedding status, email) and ships simulator
// implementations of each. The provider set is chosen once at startup
// from configuration; callers never probe availability at call time.
package integration

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/kagisomabe/luma-events/internal/config"
	"github.com/kagisomabe/luma-events/internal/model"
)

// ErrRealProvidersUnavailable is returned by New when USE_MOCK_APIS is
// false. Real provider implementations are supplied by an external
// collaborator and are not part of this codebase.
var ErrRealProvidersUnavailable = errors.New("integration: real providers are not configured in this build")

// PaymentResult is the outcome of a payment attempt. A transaction id
// and reference are generated regardless of outcome.
type PaymentResult struct {
	Status        string // model.PaymentCompleted or model.PaymentFailed
	TransactionID string
	Reference     string
	PaymentURL    string // set on success only
}

// VerifyResult reports a payment verification lookup.
type VerifyResult struct {
	Verified bool
	Amount   float64
}

// PaymentProvider processes one-off payments for registrations.
type PaymentProvider interface {
	ProcessPayment(ctx context.Context, amount float64, orderID, customerEmail, customerName string) (PaymentResult, error)
	VerifyPayment(ctx context.Context, transactionID string) (VerifyResult, error)
}

// SMSResult is the outcome of an SMS send. Cost is in rand.
type SMSResult struct {
	Success   bool
	MessageID string
	Cost      float64
	Status    string // "delivered" or "invalid_number"
}

// DeliveryStatus reports the delivery state of a previously sent SMS.
type DeliveryStatus struct {
	Status    string
	Timestamp time.Time
}

// SMSProvider sends short messages to South African mobile numbers.
type SMSProvider interface {
	SendSMS(ctx context.Context, phoneNumber, message string) (SMSResult, error)
	GetDeliveryStatus(ctx context.Context, messageID string) (DeliveryStatus, error)
}

// WeatherProvider looks up current conditions and short forecasts.
type WeatherProvider interface {
	GetWeatherByCity(ctx context.Context, city string) (model.WeatherInfo, error)
	Get5DayForecast(ctx context.Context, city string) ([]model.WeatherInfo, error)
}

// AreaInfo maps an area name to its region and municipality.
type AreaInfo struct {
	Area         string `json:"area"`
	Region       string `json:"region"`
	Municipality string `json:"municipality"`
}

// LoadSheddingProvider reports the current load-shedding stage and
// outage schedule for an area.
type LoadSheddingProvider interface {
	GetStatus(ctx context.Context, area string) (model.LoadSheddingInfo, error)
	GetAreaInfo(ctx context.Context, area string) (AreaInfo, error)
}

// EmailResult is the outcome of an email send.
type EmailResult struct {
	Success   bool
	MessageID string
	Status    string // "delivered" or "invalid_email"
}

// EmailProvider sends transactional email.
type EmailProvider interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) (EmailResult, error)
	SendTemplateEmail(ctx context.Context, to, templateID string, data map[string]string) (EmailResult, error)
}

// Providers bundles one implementation of each provider contract.
type Providers struct {
	Payments     PaymentProvider
	SMS          SMSProvider
	Weather      WeatherProvider
	LoadShedding LoadSheddingProvider
	Email        EmailProvider
}

// New selects the provider set from configuration. With USE_MOCK_APIS
// enabled it returns the simulators, each delaying responses by the
// configured mock latency. Otherwise it returns an error: real
// PayFast/Clickatell/OpenWeather/EskomSePush/SendGrid clients must be
// supplied by the deployment, not this repository.
func New(cfg config.Config) (*Providers, error) {
	if !cfg.UseMockAPIs {
		return nil, ErrRealProvidersUnavailable
	}
	delay := time.Duration(cfg.MockLatencyMS) * time.Millisecond
	return &Providers{
		Payments:     NewMockPayFast(delay),
		SMS:          NewMockClickatell(delay),
		Weather:      NewMockOpenWeather(delay),
		LoadShedding: NewMockEskomSePush(delay),
		Email:        NewMockSendGrid(delay),
	}, nil
}

// simulate blocks for d or until the context is cancelled, whichever
// comes first. All simulators use it to stand in for network latency.
func simulate(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// randToken returns n pseudo-random base36 characters, mimicking the
// suffix style of real gateway references.
func randToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}
