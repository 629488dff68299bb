package audit

// Report is the complete audit output for one dataset.
type Report struct {
	Feed        string        `json:"feed" yaml:"feed"`
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	Shapes      int           `json:"shapes" yaml:"shapes"`
	Points      int           `json:"points" yaml:"points"`
	Checks      []CheckResult `json:"checks" yaml:"checks"`
	Summary     Summary       `json:"summary" yaml:"summary"`
}

// Summary condenses the per-check statuses. Overall is the worst status any
// check produced.
type Summary struct {
	Overall  Status `json:"overall" yaml:"overall"`
	Success  int    `json:"success" yaml:"success"`
	Warnings int    `json:"warnings" yaml:"warnings"`
	Errors   int    `json:"errors" yaml:"errors"`
}

// Summarize folds the check results into a Summary.
func Summarize(checks []CheckResult) Summary {
	s := Summary{Overall: StatusSuccess}
	for _, c := range checks {
		s.Overall = Worse(s.Overall, c.Status)
		switch c.Status {
		case StatusError:
			s.Errors++
		case StatusWarning:
			s.Warnings++
		default:
			s.Success++
		}
	}
	return s
}

// ResultFor returns the named check's result from the report.
func (r *Report) ResultFor(name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Check == name {
			return c, true
		}
	}
	return CheckResult{}, false
}
