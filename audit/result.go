package audit

import "math"

// Status classifies the outcome of a check over one dataset.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

func (s Status) rank() int {
	switch s {
	case StatusError:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of the two statuses.
func Worse(a, b Status) Status {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Finding describes one class of defect a check detected, with the total
// occurrence count and a capped sample of the shape ids involved.
type Finding struct {
	Kind        string   `json:"kind" yaml:"kind"`
	Field       string   `json:"field" yaml:"field"`
	Count       int      `json:"count" yaml:"count"`
	AffectedIDs []string `json:"affected_ids" yaml:"affected_ids"`
	Message     string   `json:"message" yaml:"message"`
}

// maxAffectedIDs is the reporting cap for Finding.AffectedIDs.
const maxAffectedIDs = 100

// CheckResult is the complete outcome of one check. Metrics carries the
// check-specific measurements; Findings is empty when nothing was detected.
// Every check produces a result with a status, even over an empty dataset.
type CheckResult struct {
	Check    string         `json:"check" yaml:"check"`
	Category string         `json:"category" yaml:"category"`
	Status   Status         `json:"status" yaml:"status"`
	Findings []Finding      `json:"findings,omitempty" yaml:"findings,omitempty"`
	Metrics  map[string]any `json:"metrics" yaml:"metrics"`
}

// capIDs returns at most n ids, copying so the result does not alias the
// caller's backing array.
func capIDs(ids []string, n int) []string {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > n {
		ids = ids[:n]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// pctOf returns part/whole as a percentage rounded to two decimals, and 0
// when whole is zero.
func pctOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round(float64(part)/float64(whole)*100, 2)
}

// sampleStddev is the n-1 standard deviation, 0 for fewer than two values.
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

// popStddev is the population standard deviation, 0 for an empty slice.
func popStddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}
