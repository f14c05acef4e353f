package bot

import (
	"strings"

	"waterme/internal/misc"
	"waterme/internal/model"
)

// SensorHistory returns the last count readings of every sensor whose type
// contains sensorSubstr (case-sensitive), each sensor's readings newest first,
// sensors in registration order. A count larger than a sensor's log is clamped
// to the full log; a non-positive count selects nothing.
func SensorHistory(c model.Controller, sensorSubstr string, count int) []model.Reading {
	if count <= 0 {
		return nil
	}

	var requested []model.Reading
	for _, s := range c.Sensors {
		if !strings.Contains(s.Type, sensorSubstr) {
			continue
		}
		n := misc.Min(count, len(s.Readings))
		for i := len(s.Readings) - 1; i >= len(s.Readings)-n; i-- {
			requested = append(requested, s.Readings[i])
		}
	}
	return requested
}
