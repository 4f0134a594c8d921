package control

// SlewLimiter bounds how much a command may change per update.
type SlewLimiter struct {
	MaxDelta float64

	last float64
}

// NewSlewLimiter creates a SlewLimiter.
func NewSlewLimiter(maxDelta float64) *SlewLimiter {
	return &SlewLimiter{MaxDelta: maxDelta}
}

// Limit returns v moved at most MaxDelta away from the previous output.
func (s *SlewLimiter) Limit(v float64) float64 {
	s.last = Clamp(v, s.last-s.MaxDelta, s.last+s.MaxDelta)
	return s.last
}

// Last gets the previous output.
func (s *SlewLimiter) Last() float64 {
	return s.last
}

// Reset sets the previous output.
func (s *SlewLimiter) Reset(v float64) {
	s.last = v
}
