package funding

import (
	"context"
	"sync"
)

// Session tracks the last funding outcome so leftover value can be reused
// across sequential challenges instead of funding each one. It is owned by
// the caller and passed to every interceptor invocation; its mutex is held
// across the funding call, serializing concurrent challenge resolutions that
// share the session so two of them cannot both observe sufficient balance
// and over-commit the same output.
type Session struct {
	mu       sync.Mutex
	txid     string
	vout     uint32
	satsLeft int64
}

// NewSession creates an empty session: no funded output available.
func NewSession() *Session {
	return &Session{}
}

// SettleOrReuse returns a spendable output covering owedSats. When the
// session is empty or its remaining value cannot cover the owed amount, fund
// is invoked and the session is overwritten with the fresh output and its
// leftover; otherwise the cached output is reused and its remaining value
// decremented in place.
func (s *Session) SettleOrReuse(ctx context.Context, owedSats int64, fund func(context.Context) (*Result, error)) (string, uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.txid == "" || s.satsLeft < owedSats {
		result, err := fund(ctx)
		if err != nil {
			return "", 0, err
		}
		s.txid = result.Txid
		s.vout = result.Vout
		s.satsLeft = result.SatsSent - owedSats
		return s.txid, s.vout, nil
	}

	s.satsLeft -= owedSats
	return s.txid, s.vout, nil
}

// Remaining reports the value still spendable from the cached output.
func (s *Session) Remaining() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.satsLeft
}

// Reset clears the session back to its empty state. Test hook.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txid = ""
	s.vout = 0
	s.satsLeft = 0
}
