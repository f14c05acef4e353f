package bot

import (
	"reflect"
	"testing"

	"waterme/internal/model"
)

func TestSensorHistory(t *testing.T) {
	r0 := model.Reading{Time: "2026-08-30T10:00:00Z", Value: "19.5"}
	r1 := model.Reading{Time: "2026-08-30T10:10:00Z", Value: "20.1"}
	r2 := model.Reading{Time: "2026-08-30T10:20:00Z", Value: "20.8"}
	c := model.Controller{
		MacAddress: "AA:BB:CC:DD:EE:FF",
		Sensors: []model.Sensor{
			{Type: "temp1", Readings: []model.Reading{r0, r1, r2}},
		},
	}

	tests := []struct {
		name   string
		substr string
		count  int
		want   []model.Reading
	}{
		{name: "last two newest first", substr: "temp", count: 2, want: []model.Reading{r2, r1}},
		{name: "count equals length", substr: "temp", count: 3, want: []model.Reading{r2, r1, r0}},
		{name: "count larger than length clamps", substr: "temp", count: 10, want: []model.Reading{r2, r1, r0}},
		{name: "zero count", substr: "temp", count: 0, want: nil},
		{name: "negative count", substr: "temp", count: -1, want: nil},
		{name: "no matching sensor", substr: "hum", count: 2, want: nil},
		{name: "substring match is case sensitive", substr: "TEMP", count: 2, want: nil},
		{name: "exact type matches as substring", substr: "temp1", count: 1, want: []model.Reading{r2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SensorHistory(c, tt.substr, tt.count)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SensorHistory(%q, %d) = %v, want %v", tt.substr, tt.count, got, tt.want)
			}
		})
	}
}

func TestSensorHistoryMultipleSensorsNotInterleaved(t *testing.T) {
	a0 := model.Reading{Time: "t0", Value: "a0"}
	a1 := model.Reading{Time: "t1", Value: "a1"}
	b0 := model.Reading{Time: "t2", Value: "b0"}
	b1 := model.Reading{Time: "t3", Value: "b1"}
	c := model.Controller{
		Sensors: []model.Sensor{
			{Type: "tempA", Readings: []model.Reading{a0, a1}},
			{Type: "hum1", Readings: []model.Reading{{Time: "x", Value: "x"}}},
			{Type: "tempB", Readings: []model.Reading{b0, b1}},
		},
	}

	got := SensorHistory(c, "temp", 2)
	// Matched-sensor order, each sensor newest first, never merged by time.
	want := []model.Reading{a1, a0, b1, b0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SensorHistory = %v, want %v", got, want)
	}
}

func TestSensorHistoryEmptyReadings(t *testing.T) {
	c := model.Controller{Sensors: []model.Sensor{{Type: "temp1"}}}
	if got := SensorHistory(c, "temp", 5); got != nil {
		t.Errorf("SensorHistory on empty log = %v, want nil", got)
	}
}
