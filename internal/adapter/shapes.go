package adapter

import "math"

// DistanceEncoding describes how a distance stream reports its values.
type DistanceEncoding int

const (
	DistanceCumulative  DistanceEncoding = iota // running total since start
	DistanceIncremental                         // distance covered since the previous sample
)

func (e DistanceEncoding) String() string {
	if e == DistanceIncremental {
		return "incremental"
	}
	return "cumulative"
}

// DetectDistanceEncoding classifies a time-ordered distance stream. A stream
// that ever decreases is incremental. A non-decreasing stream is cumulative
// unless the activity total is known and the sum of values matches it more
// closely than the last value does.
func DetectDistanceEncoding(values []float64, reportedTotal float64) DistanceEncoding {
	var sum float64
	for i, v := range values {
		sum += v
		if i > 0 && v < values[i-1] {
			return DistanceIncremental
		}
	}
	if reportedTotal > 0 && len(values) > 1 {
		last := values[len(values)-1]
		if math.Abs(sum-reportedTotal) < math.Abs(last-reportedTotal) {
			return DistanceIncremental
		}
	}
	return DistanceCumulative
}
