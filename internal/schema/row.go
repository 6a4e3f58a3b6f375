package schema

import (
	"math"
	"time"

	"github.com/claude/activitychart/internal/models"
)

// RawRow receives the columns selected by PageQuery.
type RawRow [NumColumns]*float64

// Targets returns scan destinations in column order.
func (r *RawRow) Targets() []any {
	out := make([]any, NumColumns)
	for i := range r {
		out[i] = &r[i]
	}
	return out
}

// Sample converts the scanned row into a RawSample.
func (r RawRow) Sample() models.RawSample {
	s := models.RawSample{
		ElapsedSeconds: r[1],
		TimerSeconds:   r[2],
		MovingSeconds:  r[3],
		DistanceM:      r[4],
		HeartRate:      r[5],
		SpeedMS:        r[6],
		PaceMinKm:      r[7],
		Latitude:       r[8],
		Longitude:      r[9],
	}
	if r[0] != nil {
		t := EpochTime(*r[0])
		s.Timestamp = &t
	}
	return s
}

// EpochTime converts fractional Unix seconds to a UTC time.
func EpochTime(sec float64) time.Time {
	whole := math.Floor(sec)
	return time.Unix(int64(whole), int64((sec-whole)*1e9)).UTC()
}
