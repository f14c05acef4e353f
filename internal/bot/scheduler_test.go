package bot

import (
	"testing"
	"time"
)

func TestNextFire(t *testing.T) {
	tests := []struct {
		name     string
		now      string
		interval time.Duration
		want     string
	}{
		{name: "mid interval", now: "2026-08-30T12:34:56Z", interval: 10 * time.Minute, want: "2026-08-30T12:40:00Z"},
		{name: "just after boundary", now: "2026-08-30T12:30:01Z", interval: 10 * time.Minute, want: "2026-08-30T12:40:00Z"},
		{name: "exactly on boundary waits a full interval", now: "2026-08-30T12:30:00Z", interval: 10 * time.Minute, want: "2026-08-30T12:40:00Z"},
		{name: "hour rollover", now: "2026-08-30T12:55:30Z", interval: 10 * time.Minute, want: "2026-08-30T13:00:00Z"},
		{name: "one minute interval", now: "2026-08-30T12:34:56Z", interval: time.Minute, want: "2026-08-30T12:35:00Z"},
		{name: "hourly", now: "2026-08-30T12:34:56Z", interval: time.Hour, want: "2026-08-30T13:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.now)
			if err != nil {
				t.Fatal(err)
			}
			want, err := time.Parse(time.RFC3339, tt.want)
			if err != nil {
				t.Fatal(err)
			}
			if got := nextFire(now, tt.interval); !got.Equal(want) {
				t.Errorf("nextFire(%s, %s) = %s, want %s", tt.now, tt.interval, got.Format(time.RFC3339), tt.want)
			}
		})
	}
}
