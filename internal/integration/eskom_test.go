package integration

import (
	"context"
	"testing"
	"time"
)

func TestGetStatusStageBounds(t *testing.T) {
	m := NewMockEskomSePush(0)
	for i := 0; i < 500; i++ {
		info, err := m.GetStatus(context.Background(), "johannesburg")
		if err != nil {
			t.Fatalf("GetStatus error: %v", err)
		}
		if info.Stage < 0 || info.Stage > 5 {
			t.Fatalf("stage = %d, want in [0,5]", info.Stage)
		}
		if info.IsActive != (info.Stage > 0) {
			t.Fatalf("stage %d with IsActive=%t", info.Stage, info.IsActive)
		}
		if info.Stage == 0 && len(info.Schedule) != 0 {
			t.Fatalf("stage 0 carries %d schedule slots", len(info.Schedule))
		}
		if info.Stage > 0 {
			want := info.Stage * 2
			if want > 5 {
				want = 5
			}
			if len(info.Schedule) != want {
				t.Fatalf("stage %d schedule length = %d, want %d", info.Stage, len(info.Schedule), want)
			}
		}
	}
}

func TestGetStatusScheduleDates(t *testing.T) {
	m := NewMockEskomSePush(0)
	// Pin the clock so today/tomorrow are deterministic. 10:00 UTC is
	// 12:00 SAST, inside business hours.
	fixed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	today := "2026-03-14"
	tomorrow := "2026-03-15"
	for i := 0; i < 200; i++ {
		info, err := m.GetStatus(context.Background(), "pretoria")
		if err != nil {
			t.Fatalf("GetStatus error: %v", err)
		}
		for j, slot := range info.Schedule {
			wantDate := today
			if j >= 3 { // slots past the third fall on the next day
				wantDate = tomorrow
			}
			if slot.Date != wantDate {
				t.Fatalf("slot %d date = %q, want %q", j, slot.Date, wantDate)
			}
			if slot.StartTime == "" || slot.EndTime == "" {
				t.Fatalf("slot %d missing times: %+v", j, slot)
			}
		}
	}
}

func TestGetStatusOffPeakFavoursStageZero(t *testing.T) {
	m := NewMockEskomSePush(0)
	// 23:00 SAST is off peak, where stage 0 has weight 0.5.
	m.now = func() time.Time { return time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC) }

	zero := 0
	const n = 2000
	for i := 0; i < n; i++ {
		info, err := m.GetStatus(context.Background(), "durban")
		if err != nil {
			t.Fatalf("GetStatus error: %v", err)
		}
		if info.Stage == 0 {
			zero++
		}
	}
	rate := float64(zero) / n
	if rate < 0.44 || rate > 0.56 {
		t.Fatalf("off-peak stage 0 rate = %.3f over %d draws, want about 0.5", rate, n)
	}
}

func TestGetStatusDefaultsArea(t *testing.T) {
	m := NewMockEskomSePush(0)
	if _, err := m.GetStatus(context.Background(), ""); err != nil {
		t.Fatalf("GetStatus with empty area: %v", err)
	}
}

func TestGetAreaInfo(t *testing.T) {
	m := NewMockEskomSePush(0)
	cases := []struct {
		area         string
		region       string
		municipality string
	}{
		{"Johannesburg", "Gauteng", "City of Johannesburg"},
		{"cape town", "Western Cape", "City of Cape Town"},
		{"Durban", "KwaZulu-Natal", "eThekwini"},
		{"pretoria", "Gauteng", "City of Tshwane"},
		{"Polokwane", "Unknown", "Unknown"},
	}
	for _, tc := range cases {
		info, err := m.GetAreaInfo(context.Background(), tc.area)
		if err != nil {
			t.Fatalf("GetAreaInfo(%q) error: %v", tc.area, err)
		}
		if info.Area != tc.area {
			t.Errorf("GetAreaInfo(%q) echoes area %q", tc.area, info.Area)
		}
		if info.Region != tc.region || info.Municipality != tc.municipality {
			t.Errorf("GetAreaInfo(%q) = %+v, want %s/%s", tc.area, info, tc.region, tc.municipality)
		}
	}
}
