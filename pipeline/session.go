package pipeline

import "sync/atomic"

// Token identifies one send or preview cycle.
type Token uint64

// Session hands out monotonically increasing tokens so overlapping
// cycles can detect that a newer one has started. A cycle checks its
// token after each slow step and abandons its result if a newer cycle
// began in the meantime; only the most recent cycle's result is
// accepted.
type Session struct {
	current atomic.Uint64
}

// Begin starts a new cycle and returns its token. Any token handed out
// earlier becomes stale.
func (s *Session) Begin() Token {
	return Token(s.current.Add(1))
}

// Stale reports whether the cycle identified by t has been superseded.
func (s *Session) Stale(t Token) bool {
	return uint64(t) != s.current.Load()
}
