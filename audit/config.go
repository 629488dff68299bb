package audit

// Config carries the tunable thresholds and runner settings for the
// registered checks. Zero values are invalid; use DefaultConfig as the base
// and override selectively.
type Config struct {
	// MaxJumpM flags any segment longer than this many meters.
	MaxJumpM float64 `yaml:"max_jump_m" validate:"gt=0"`
	// ReversalDeg is the minimum per-axis delta, in degrees, for a
	// direction reversal to count as backtracking.
	ReversalDeg float64 `yaml:"reversal_deg" validate:"gt=0"`
	// IsolationM flags interior points farther than this from both
	// neighbors.
	IsolationM float64 `yaml:"isolation_m" validate:"gt=0"`
	// LoopToleranceM is the maximum first-to-last distance for a shape to
	// count as a closed loop.
	LoopToleranceM float64 `yaml:"loop_tolerance_m" validate:"gte=0"`
	// SimilarityThresholdDeg is the mean per-point distance, in degrees,
	// under which two equal-length shapes are considered similar.
	SimilarityThresholdDeg float64 `yaml:"similarity_threshold_deg" validate:"gt=0"`
	// MinSpacingM flags segments shorter than this many meters.
	MinSpacingM float64 `yaml:"min_spacing_m" validate:"gt=0"`
	// SpacingStddevM marks a shape as uniformly spaced when the standard
	// deviation of its segment lengths falls below this.
	SpacingStddevM float64 `yaml:"spacing_stddev_m" validate:"gt=0"`
	// TurnAngleDeg flags bearing changes sharper than this many degrees.
	TurnAngleDeg float64 `yaml:"turn_angle_deg" validate:"gt=0,lte=180"`
	// MaxDeviationM flags vehicles farther than this from their shape.
	MaxDeviationM float64 `yaml:"max_deviation_m" validate:"gt=0"`
	// Workers bounds the audit worker pool. 0 means one per CPU.
	Workers int `yaml:"workers" validate:"gte=0"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MaxJumpM:               1000,
		ReversalDeg:            0.001,
		IsolationM:             1000,
		LoopToleranceM:         10,
		SimilarityThresholdDeg: 0.0005,
		MinSpacingM:            1.0,
		SpacingStddevM:         1.0,
		TurnAngleDeg:           120,
		MaxDeviationM:          100,
		Workers:                0,
	}
}
