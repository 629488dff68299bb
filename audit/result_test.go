package audit

import (
	"testing"
)

func TestWorse(t *testing.T) {
	tests := []struct {
		name string
		a, b Status
		want Status
	}{
		{name: "success vs warning", a: StatusSuccess, b: StatusWarning, want: StatusWarning},
		{name: "warning vs error", a: StatusWarning, b: StatusError, want: StatusError},
		{name: "error vs success", a: StatusError, b: StatusSuccess, want: StatusError},
		{name: "equal stays", a: StatusWarning, b: StatusWarning, want: StatusWarning},
		{name: "both success", a: StatusSuccess, b: StatusSuccess, want: StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Worse(tt.a, tt.b); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	checks := []CheckResult{
		{Check: "a", Status: StatusSuccess},
		{Check: "b", Status: StatusWarning},
		{Check: "c", Status: StatusError},
		{Check: "d", Status: StatusSuccess},
	}

	s := Summarize(checks)

	if s.Overall != StatusError {
		t.Errorf("expected overall error, got %s", s.Overall)
	}
	if s.Success != 2 || s.Warnings != 1 || s.Errors != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Overall != StatusSuccess {
		t.Errorf("no checks means success, got %s", s.Overall)
	}
}

func TestCapIDs(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}

	capped := capIDs(ids, 2)
	if len(capped) != 2 || capped[0] != "a" || capped[1] != "b" {
		t.Errorf("expected [a b], got %v", capped)
	}

	// The result must not alias the input.
	ids[0] = "mutated"
	if capped[0] != "a" {
		t.Error("capIDs result aliases the input slice")
	}

	if capIDs(nil, 5) != nil {
		t.Error("expected nil for empty input")
	}
	if got := capIDs([]string{"x"}, 5); len(got) != 1 {
		t.Errorf("expected 1 id, got %v", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		name   string
		x      float64
		places int
		want   float64
	}{
		{name: "truncates down", x: 1.23456, places: 2, want: 1.23},
		{name: "rounds up", x: 1.987654, places: 2, want: 1.99},
		{name: "six places", x: 0.0123456789, places: 6, want: 0.012346},
		{name: "zero places", x: 2.6, places: 0, want: 3},
		{name: "negative value", x: -1.235, places: 1, want: -1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := round(tt.x, tt.places); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPctOf(t *testing.T) {
	if got := pctOf(1, 3); got != 33.33 {
		t.Errorf("expected 33.33, got %v", got)
	}
	if got := pctOf(2, 3); got != 66.67 {
		t.Errorf("expected 66.67, got %v", got)
	}
	if got := pctOf(5, 0); got != 0 {
		t.Errorf("expected 0 for zero denominator, got %v", got)
	}
	if got := pctOf(3, 3); got != 100 {
		t.Errorf("expected 100, got %v", got)
	}
}

func TestStddev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := popStddev(values); got != 2 {
		t.Errorf("expected population stddev 2, got %v", got)
	}
	inDelta(t, "sample stddev", sampleStddev(values), 2.13809, 0.0001)

	if got := sampleStddev([]float64{42}); got != 0 {
		t.Errorf("expected 0 for single value, got %v", got)
	}
	if got := popStddev(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %v", got)
	}
}
