package risk

// exposure describes what an attack has to get through
type exposure struct {
	target  string
	path    []string
	context float64
}

// Option configures a SuccessProbability evaluation
type Option func(*exposure)

// WithTarget evaluates blocking against a single node
func WithTarget(nodeID string) Option {
	return func(e *exposure) {
		e.target = nodeID
	}
}

// WithPath evaluates blocking along an ordered list of nodes. A non-empty
// path takes precedence over a target.
func WithPath(nodeIDs ...string) Option {
	return func(e *exposure) {
		e.path = nodeIDs
	}
}

// WithContext scales the final probability. The default multiplier is 1.0.
func WithContext(multiplier float64) Option {
	return func(e *exposure) {
		e.context = multiplier
	}
}

// BlockingStrength returns the probability that the configured target or path
// stops an attack of the given kind. A path is blocked if any node on it blocks.
func (m Model) BlockingStrength(kind string, opts ...Option) float64 {
	e := m.resolve(opts)
	return m.blocking(kind, e)
}

// SuccessProbability returns baseP scaled by the chance of slipping past the
// controls and by the context multiplier, clamped into [0,1].
func (m Model) SuccessProbability(kind string, baseP float64, opts ...Option) float64 {
	e := m.resolve(opts)
	blocking := m.blocking(kind, e)
	return clamp(baseP*(1.0-blocking)*e.context, 0.0, 1.0)
}

func (m Model) resolve(opts []Option) exposure {
	e := exposure{context: 1.0}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (m Model) blocking(kind string, e exposure) float64 {
	switch {
	case len(e.path) > 0:
		miss := 1.0
		for _, nodeID := range e.path {
			miss *= 1.0 - m.CombinedEffectiveness(nodeID, kind)
		}
		return 1.0 - miss
	case e.target != "":
		return m.CombinedEffectiveness(e.target, kind)
	default:
		return 0.0
	}
}
