package scoring

import "github.com/impactwon/checkin/internal/domain/catalog"

// OrphanPolicy decides what happens to a response that passes the
// competency membership filter but whose question cannot be resolved.
type OrphanPolicy int

const (
	// OrphanCountAsZero keeps the response in the denominator with value 0.
	OrphanCountAsZero OrphanPolicy = iota
	// OrphanExclude drops the response entirely.
	OrphanExclude
)

// String returns the config name of the policy.
func (p OrphanPolicy) String() string {
	if p == OrphanExclude {
		return "exclude"
	}
	return "zero"
}

// ParseOrphanPolicy maps a config value onto a policy. Unknown values yield OrphanCountAsZero.
func ParseOrphanPolicy(s string) OrphanPolicy {
	if s == "exclude" {
		return OrphanExclude
	}
	return OrphanCountAsZero
}

// MembershipFunc reports whether a response for questionID is attributed to c.
type MembershipFunc func(c catalog.Competency, questionID string) bool

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithOrphanPolicy sets how unresolved responses are averaged.
func WithOrphanPolicy(p OrphanPolicy) Option {
	return func(a *Aggregator) {
		a.orphans = p
	}
}

// WithMembership replaces the exact question id membership filter.
// Used when responses may reference questions from an older catalog revision.
func WithMembership(fn MembershipFunc) Option {
	return func(a *Aggregator) {
		if fn != nil {
			a.member = fn
		}
	}
}
