package adapter

import (
	"math"
	"sort"
	"time"

	"github.com/claude/activitychart/internal/models"
	"github.com/claude/activitychart/internal/series"
)

// densifyProximity is how close a heart-rate sample may be to an existing
// row before it is considered already covered.
const densifyProximity = 5.0

// healthKit builds a timeline from phone-health sub-streams. It uses the
// distance stream when present, then GPS, then a linear interpolation of
// the reported totals.
type healthKit struct {
	opts Options
}

type timedValue struct {
	at    time.Time
	value float64
}

func (h healthKit) Adapt(in Input) Result {
	w := in.Workout
	if w == nil {
		return Result{Method: "healthkit_empty"}
	}

	hr := sortedQuantities(w.Raw.Series.HeartRate)
	dist := sortedQuantities(w.Raw.Series.Distance)
	locs := sortedLocations(w.Raw.Locations)

	t := timeline{
		start:    workoutStart(w, hr, dist, locs, sortedQuantities(w.Raw.Series.Energy)),
		total:    w.DistanceMeters,
		duration: w.DurationSeconds,
	}
	if t.duration <= 0 {
		t.duration = t.lastOffset(locs, hr, dist)
	}
	if t.total > 0 && t.duration > 0 {
		t.avgSpeed = models.Float(t.total / t.duration)
	}

	var res Result
	switch {
	case len(dist) > 0:
		res = h.fromDistance(t, dist)
	case len(locs) >= 2:
		res = h.fromGPS(t, locs)
	default:
		res = h.interpolate(t, hr, sortedQuantities(w.Raw.Series.Energy))
	}

	// The route is kept whichever stream built the timeline.
	if len(res.Track) == 0 && len(locs) > 0 {
		res.Track = make([]models.LatLon, len(locs))
		for i, l := range locs {
			res.Track[i] = models.LatLon{l.Latitude, l.Longitude}
		}
	}

	for i := range res.Samples {
		if ts := res.Samples[i].Timestamp; ts != nil {
			res.Samples[i].HeartRate = nearestValue(hr, *ts, h.opts.HRSnapWindow)
		}
	}

	if len(res.Samples) < h.opts.DensifyMinPoints && len(hr) > len(res.Samples) {
		t = t.withReconstructedAvg(maxDistance(res.Samples))
		res.Samples = t.densify(res.Samples, hr)
	}
	return res
}

// timeline carries the activity-wide values every technique needs.
type timeline struct {
	start    time.Time
	total    float64
	duration float64
	avgSpeed *float64
}

// avg returns a fresh copy of the average speed, or nil when unknown.
func (t timeline) avg() *float64 {
	if t.avgSpeed == nil {
		return nil
	}
	return models.Float(*t.avgSpeed)
}

// withReconstructedAvg sets the average speed from a reconstructed total
// when the workout reports none.
func (t timeline) withReconstructedAvg(total float64) timeline {
	if t.avgSpeed == nil && total > 0 && t.duration > 0 {
		t.avgSpeed = models.Float(total / t.duration)
	}
	return t
}

func (t timeline) offset(at time.Time) float64 {
	return math.Max(0, at.Sub(t.start).Seconds())
}

func (t timeline) lastOffset(locs []models.HealthKitLocation, streams ...[]timedValue) float64 {
	var last float64
	for _, v := range streams {
		if len(v) > 0 {
			last = math.Max(last, t.offset(v[len(v)-1].at))
		}
	}
	if len(locs) > 0 {
		last = math.Max(last, t.offset(locs[len(locs)-1].Timestamp.Time))
	}
	return last
}

// interpolatedDistance spreads the reported total linearly over the duration.
func (t timeline) interpolatedDistance(elapsed float64) *float64 {
	if t.total <= 0 || t.duration <= 0 {
		return nil
	}
	return models.Float(t.total * math.Min(elapsed, t.duration) / t.duration)
}

func (t timeline) sample(at time.Time) models.Sample {
	ts := at
	return models.Sample{Elapsed: models.Float(t.offset(at)), Timestamp: &ts}
}

// distanceAcc is the fold state for reconstructing cumulative distance.
type distanceAcc struct {
	cumulative float64
	prev       *models.Sample
	out        []models.Sample
}

func (h healthKit) fromDistance(t timeline, dist []timedValue) Result {
	values := make([]float64, len(dist))
	for i, d := range dist {
		values[i] = d.value
	}
	enc := DetectDistanceEncoding(values, t.total)
	t = t.withReconstructedAvg(reconstructedTotal(values, enc))

	acc := distanceAcc{}
	for _, d := range dist {
		acc = h.foldDistance(t, acc, d, enc)
	}
	return Result{Samples: acc.out, Method: "distance_samples_" + enc.String()}
}

func maxDistance(samples []models.Sample) float64 {
	var out float64
	for _, s := range samples {
		if s.DistanceM != nil {
			out = math.Max(out, *s.DistanceM)
		}
	}
	return out
}

// reconstructedTotal is the final cumulative distance of the stream.
func reconstructedTotal(values []float64, enc DistanceEncoding) float64 {
	var total float64
	for _, v := range values {
		if enc == DistanceIncremental {
			total += math.Max(0, v)
		} else {
			total = math.Max(total, v)
		}
	}
	return total
}

func (h healthKit) foldDistance(t timeline, acc distanceAcc, d timedValue, enc DistanceEncoding) distanceAcc {
	if enc == DistanceIncremental {
		acc.cumulative += math.Max(0, d.value)
	} else {
		acc.cumulative = math.Max(acc.cumulative, d.value)
	}

	s := t.sample(d.at)
	s.DistanceM = models.Float(acc.cumulative)
	if acc.prev != nil {
		s.SpeedMS = h.bandedSpeed(acc.prev, &s, h.opts.SpeedBand.Contains, t.avgSpeed)
	}
	acc.out = append(acc.out, s)
	acc.prev = &s
	return acc
}

func (h healthKit) fromGPS(t timeline, locs []models.HealthKitLocation) Result {
	samples := make([]models.Sample, 0, len(locs))
	track := make([]models.LatLon, 0, len(locs))
	var cum float64
	for i, l := range locs {
		p := models.LatLon{l.Latitude, l.Longitude}
		if i > 0 {
			cum += series.Haversine(track[len(track)-1], p)
		}
		track = append(track, p)
		s := t.sample(l.Timestamp.Time)
		s.DistanceM = models.Float(cum)
		s.Lat, s.Lon = models.Float(l.Latitude), models.Float(l.Longitude)
		samples = append(samples, s)
	}

	// GPS jitter inflates or shrinks the accumulated total; trust the
	// reported distance and scale every point onto it.
	if t.total > 0 && cum > 0 {
		scale := t.total / cum
		for i := range samples {
			*samples[i].DistanceM *= scale
		}
	}
	t = t.withReconstructedAvg(cum)

	for i := 1; i < len(samples); i++ {
		samples[i].SpeedMS = h.bandedSpeed(&samples[i-1], &samples[i], h.opts.GPSSpeedBand.Contains, t.avgSpeed)
	}
	return Result{Samples: samples, Track: track, Method: "gps_haversine"}
}

func (h healthKit) interpolate(t timeline, hr, energy []timedValue) Result {
	seen := make(map[int64]bool)
	var stamps []time.Time
	for _, stream := range [][]timedValue{hr, energy} {
		for _, v := range stream {
			if key := v.at.UnixMilli(); !seen[key] {
				seen[key] = true
				stamps = append(stamps, v.at)
			}
		}
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	samples := make([]models.Sample, 0, len(stamps))
	for _, at := range stamps {
		s := t.sample(at)
		s.DistanceM = t.interpolatedDistance(*s.Elapsed)
		s.SpeedMS = t.avg()
		samples = append(samples, s)
	}
	return Result{Samples: samples, Method: "linear_interpolation"}
}

// bandedSpeed derives speed between two samples, substituting the average
// when the value is outside the plausible band.
func (h healthKit) bandedSpeed(prev, cur *models.Sample, plausible func(float64) bool, avg *float64) *float64 {
	dt := *cur.Elapsed - *prev.Elapsed
	if dt <= 0 || prev.DistanceM == nil || cur.DistanceM == nil {
		return nil
	}
	sp := (*cur.DistanceM - *prev.DistanceM) / dt
	if !plausible(sp) {
		if avg == nil {
			return nil
		}
		return models.Float(*avg)
	}
	return models.Float(sp)
}

// densify adds synthetic rows at heart-rate timestamps not already covered
// by an existing row, then re-sorts by elapsed time.
func (t timeline) densify(samples []models.Sample, hr []timedValue) []models.Sample {
	have := make([]float64, 0, len(samples))
	for _, s := range samples {
		have = append(have, *s.Elapsed)
	}
	sort.Float64s(have)

	out := samples
	for _, v := range hr {
		e := t.offset(v.at)
		if nearAny(have, e, densifyProximity) {
			continue
		}
		s := t.sample(v.at)
		s.DistanceM = t.interpolatedDistance(e)
		s.SpeedMS = t.avg()
		s.HeartRate = models.Float(v.value)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Elapsed < *out[j].Elapsed })
	return out
}

func nearAny(sorted []float64, x, within float64) bool {
	i := sort.SearchFloat64s(sorted, x)
	if i < len(sorted) && sorted[i]-x <= within {
		return true
	}
	return i > 0 && x-sorted[i-1] <= within
}

// nearestValue returns the value of the stream sample closest to at, or nil
// when the closest one is further away than window.
func nearestValue(stream []timedValue, at time.Time, window time.Duration) *float64 {
	if len(stream) == 0 {
		return nil
	}
	i := sort.Search(len(stream), func(i int) bool {
		return !stream[i].at.Before(at)
	})

	best := -1
	var bestGap time.Duration
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(stream) {
			continue
		}
		gap := stream[j].at.Sub(at).Abs()
		if best < 0 || gap < bestGap {
			best, bestGap = j, gap
		}
	}
	if bestGap > window {
		return nil
	}
	return models.Float(stream[best].value)
}

func sortedQuantities(qs []models.HealthKitQuantity) []timedValue {
	out := make([]timedValue, 0, len(qs))
	for _, q := range qs {
		if q.Timestamp.IsZero() || math.IsNaN(q.Value) {
			continue
		}
		out = append(out, timedValue{at: q.Timestamp.Time, value: q.Value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
	return out
}

func sortedLocations(locs []models.HealthKitLocation) []models.HealthKitLocation {
	out := make([]models.HealthKitLocation, 0, len(locs))
	for _, l := range locs {
		if l.Timestamp.IsZero() || !series.ValidCoordinate(l.Latitude, l.Longitude) {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp.Time) })
	return out
}

// workoutStart is the recorded start time, or the earliest stream sample.
func workoutStart(w *models.HealthKitWorkout, hr, dist []timedValue, locs []models.HealthKitLocation, energy []timedValue) time.Time {
	if w.StartTime != nil && !w.StartTime.IsZero() {
		return *w.StartTime
	}
	var start time.Time
	consider := func(at time.Time) {
		if start.IsZero() || at.Before(start) {
			start = at
		}
	}
	for _, stream := range [][]timedValue{hr, dist, energy} {
		if len(stream) > 0 {
			consider(stream[0].at)
		}
	}
	if len(locs) > 0 {
		consider(locs[0].Timestamp.Time)
	}
	return start
}
