package radar

// Default layout parameters.
const (
	DefaultMargin      = 60.0
	DefaultLabelOffset = 40.0
	DefaultLabelMax    = 15
	DefaultLabelKeep   = 12
	DefaultLevels      = 5
	DefaultSize        = 350.0
	DefaultMaxValue    = 5.0
	ellipsis           = "..."
)

type settings struct {
	clamp       bool
	margin      float64
	labelOffset float64
	labelMax    int
	labelKeep   int
}

// Option applies a configuration option to Compute.
type Option func(*settings)

// WithClamp limits projected values to [0, maxValue].
func WithClamp(clamp bool) Option {
	return func(s *settings) {
		s.clamp = clamp
	}
}

// WithMargin sets the distance between the outer ring and the drawing edge.
func WithMargin(margin float64) Option {
	return func(s *settings) {
		if margin >= 0 {
			s.margin = margin
		}
	}
}

// WithLabelOffset sets how far outside the outer ring label anchors sit.
func WithLabelOffset(offset float64) Option {
	return func(s *settings) {
		if offset >= 0 {
			s.labelOffset = offset
		}
	}
}

// WithLabelLimit truncates labels longer than maxLen to their first keep characters plus an ellipsis.
func WithLabelLimit(maxLen, keep int) Option {
	return func(s *settings) {
		if maxLen > 0 && keep > 0 && keep <= maxLen {
			s.labelMax = maxLen
			s.labelKeep = keep
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		margin:      DefaultMargin,
		labelOffset: DefaultLabelOffset,
		labelMax:    DefaultLabelMax,
		labelKeep:   DefaultLabelKeep,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
