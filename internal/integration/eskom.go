package integration

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/kagisomabe/luma-events/internal/model"
)

// sast is the fixed timezone assumed throughout the platform.
var sast = time.FixedZone("SAST", 2*60*60)

// Stage weights for the weighted draw, indexed by stage 0..5. Business
// hours shift probability mass away from stage 0 toward active stages.
var (
	peakStageWeights    = []float64{0.3, 0.25, 0.2, 0.15, 0.07, 0.03}
	offPeakStageWeights = []float64{0.5, 0.2, 0.15, 0.1, 0.04, 0.01}
)

// scheduleTemplate is the fixed set of outage windows synthesized when
// load shedding is active: three slots today, two tomorrow. The list is
// trimmed to stage × 2 entries.
var scheduleTemplate = []struct {
	start, end string
	tomorrow   bool
}{
	{"06:00", "08:30", false},
	{"16:00", "18:30", false},
	{"20:00", "22:30", false},
	{"04:00", "06:30", true},
	{"12:00", "14:30", true},
}

// areaRegions maps known area names to their region and municipality.
var areaRegions = map[string]AreaInfo{
	"johannesburg": {Region: "Gauteng", Municipality: "City of Johannesburg"},
	"cape town":    {Region: "Western Cape", Municipality: "City of Cape Town"},
	"durban":       {Region: "KwaZulu-Natal", Municipality: "eThekwini"},
	"pretoria":     {Region: "Gauteng", Municipality: "City of Tshwane"},
}

// MockEskomSePush simulates the EskomSePush load-shedding status API.
type MockEskomSePush struct {
	delay time.Duration
	now   func() time.Time // injectable clock for the business-hours check
}

// NewMockEskomSePush returns a simulator that delays each call by d.
func NewMockEskomSePush(d time.Duration) *MockEskomSePush {
	return &MockEskomSePush{delay: d, now: time.Now}
}

// GetStatus draws a stage in [0,5] and, when active, synthesizes the
// outage schedule for area. The defaulted area is johannesburg.
func (m *MockEskomSePush) GetStatus(ctx context.Context, area string) (model.LoadSheddingInfo, error) {
	if area == "" {
		area = "johannesburg"
	}
	log.Printf("eskom-mock: getting load shedding status for %s", area)
	if err := simulate(ctx, m.delay); err != nil {
		return model.LoadSheddingInfo{}, err
	}

	now := m.now().In(sast)
	hour := now.Hour()
	weights := offPeakStageWeights
	if hour >= 8 && hour <= 17 {
		weights = peakStageWeights
	}

	stage := drawStage(weights)
	info := model.LoadSheddingInfo{
		Stage:     stage,
		IsActive:  stage > 0,
		UpdatedAt: time.Now(),
	}
	if stage > 0 {
		today := now.Format("2006-01-02")
		tomorrow := now.Add(24 * time.Hour).Format("2006-01-02")
		n := stage * 2
		if n > len(scheduleTemplate) {
			n = len(scheduleTemplate)
		}
		for _, slot := range scheduleTemplate[:n] {
			date := today
			if slot.tomorrow {
				date = tomorrow
			}
			info.Schedule = append(info.Schedule, model.LoadSheddingSlot{
				StartTime: slot.start,
				EndTime:   slot.end,
				Date:      date,
			})
		}
	}
	return info, nil
}

// GetAreaInfo maps the area name to region metadata, defaulting to
// "Unknown" for areas outside the curated set.
func (m *MockEskomSePush) GetAreaInfo(ctx context.Context, area string) (AreaInfo, error) {
	log.Printf("eskom-mock: getting area info for %s", area)
	info, ok := areaRegions[strings.ToLower(area)]
	if !ok {
		info = AreaInfo{Region: "Unknown", Municipality: "Unknown"}
	}
	info.Area = area
	return info, nil
}

// drawStage picks a stage by cumulative weighted draw. Weights are
// indexed by stage and assumed to sum to 1; any residue goes to the
// last stage.
func drawStage(weights []float64) int {
	r := rand.Float64()
	cum := 0.0
	for stage, w := range weights {
		cum += w
		if r < cum {
			return stage
		}
	}
	return len(weights) - 1
}
