package collectors

import (
	"math"
	"testing"

	"nabz/internal/models"
)

const ioregFixture = `+-o AppleSmartBattery  <class AppleSmartBattery>
    {
      "CurrentCapacity" = 4430
      "MaxCapacity" = 5000
      "DesignCapacity" = 5910
      "CycleCount" = 312
      "Voltage" = 12300
      "Amperage" = -1500
      "Temperature" = 3045
      "IsCharging" = No
      "ExternalConnected" = No
      "FullyCharged" = No
      "AvgTimeToEmpty" = 255
      "AvgTimeToFull" = 65535
    }
`

func TestBatteryFromPowerDescriptor(t *testing.T) {
	b := NewBatteryCollector()
	b.run = fakeRunner(map[string]string{"ioreg": ioregFixture})

	got := b.Collect()

	if got.State != models.BatteryDischarging {
		t.Errorf("state = %q, want discharging", got.State)
	}
	if math.Abs(got.LevelPercent-88.6) > 0.01 {
		t.Errorf("level = %v, want 88.6", got.LevelPercent)
	}
	// |12.3V * -1.5A| = 18.45W
	if math.Abs(got.PowerDrawWatts-18.45) > 0.001 {
		t.Errorf("power draw = %v, want 18.45", got.PowerDrawWatts)
	}
	if got.CycleCount != 312 {
		t.Errorf("cycle count = %d, want 312", got.CycleCount)
	}
	// 5000/5910 = 84.6% -> good
	if got.HealthLabel != "good" {
		t.Errorf("health label = %q (%.1f%%), want good", got.HealthLabel, got.HealthPercent)
	}
	if math.Abs(got.TemperatureC-30.45) > 0.001 {
		t.Errorf("temperature = %v, want 30.45", got.TemperatureC)
	}
	if got.TimeRemaining != "4h 15m" {
		t.Errorf("time remaining = %q, want 4h 15m", got.TimeRemaining)
	}
}

func TestBatteryChargingUsesTimeToFull(t *testing.T) {
	fixture := `    {
      "CurrentCapacity" = 2500
      "MaxCapacity" = 5000
      "IsCharging" = Yes
      "ExternalConnected" = Yes
      "AvgTimeToEmpty" = 65535
      "AvgTimeToFull" = 90
    }
`
	b := NewBatteryCollector()
	b.run = fakeRunner(map[string]string{"ioreg": fixture})

	got := b.Collect()
	if got.State != models.BatteryCharging {
		t.Errorf("state = %q, want charging", got.State)
	}
	if got.TimeRemaining != "1h 30m" {
		t.Errorf("time remaining = %q, want 1h 30m", got.TimeRemaining)
	}
}

func TestBatteryUnsettledEstimateStaysCalculating(t *testing.T) {
	fixture := `    {
      "CurrentCapacity" = 5000
      "MaxCapacity" = 5000
      "IsCharging" = No
      "ExternalConnected" = No
      "AvgTimeToEmpty" = 65535
    }
`
	b := NewBatteryCollector()
	b.run = fakeRunner(map[string]string{"ioreg": fixture})

	if got := b.Collect(); got.TimeRemaining != models.TimeRemainingUnknown {
		t.Errorf("time remaining = %q, want %q", got.TimeRemaining, models.TimeRemainingUnknown)
	}
}

func TestBatteryPMSetFallback(t *testing.T) {
	pmOut := `Now drawing from 'Battery Power'
 -InternalBattery-0 (id=4522083)	85%; discharging; 4:10 remaining present: true
`
	b := NewBatteryCollector()
	b.run = fakeRunner(map[string]string{"pmset": pmOut})

	got := b.Collect()
	if got.LevelPercent != 85 {
		t.Errorf("level = %v, want 85", got.LevelPercent)
	}
	if got.State != models.BatteryDischarging {
		t.Errorf("state = %q, want discharging", got.State)
	}
	if got.TimeRemaining != "4h 10m" {
		t.Errorf("time remaining = %q, want 4h 10m", got.TimeRemaining)
	}
}

func TestBatteryAbsentWhenAllTiersFail(t *testing.T) {
	b := NewBatteryCollector()
	b.run = fakeRunner(nil)

	got := b.Collect()
	if got.State != models.BatteryAbsent {
		t.Errorf("state = %q, want absent", got.State)
	}
	if got.TimeRemaining != models.TimeRemainingUnknown {
		t.Errorf("time remaining = %q, want %q", got.TimeRemaining, models.TimeRemainingUnknown)
	}
}

func TestHealthLabelBands(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{100, "good"},
		{80, "good"},
		{79.9, "fair"},
		{60, "fair"},
		{42, "poor"},
	}
	for _, c := range cases {
		if got := healthLabel(c.pct); got != c.want {
			t.Errorf("healthLabel(%v) = %q, want %q", c.pct, got, c.want)
		}
	}
}
