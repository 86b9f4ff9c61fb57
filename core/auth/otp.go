package auth

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/edubridge/backend/core"
)

// OTPIssuer generates and checks short-lived one-time passcodes keyed by
// mobile number. A mobile has at most one outstanding code; issuing a new one
// silently invalidates the old one.
type OTPIssuer interface {
	Issue(mobile string) (string, error)
	Verify(mobile, code string) bool
}

type otpEntry struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// otpStore is a process-local issuer. It is NOT safe across multiple
// instances unless swapped for a shared backend; the interface is the swap
// point. Must be paired with rate limiting at the boundary.
type otpStore struct {
	mu          sync.Mutex
	entries     map[string]*otpEntry
	ttl         time.Duration
	maxAttempts int
}

var _ OTPIssuer = (*otpStore)(nil)

func NewOTPIssuer(conf *core.Config) *otpStore {
	return &otpStore{
		entries:     make(map[string]*otpEntry),
		ttl:         conf.OTPExpirationDelta,
		maxAttempts: conf.OTPMaxAttempts,
	}
}

// Issue generates a uniformly random 6-digit code and stores it,
// unconditionally replacing any prior entry for the mobile.
func (s *otpStore) Issue(mobile string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", errors.Wrap(err, "generating otp")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[mobile] = &otpEntry{
		code:      code,
		expiresAt: nowFunc().Add(s.ttl),
	}
	return code, nil
}

// Verify consumes the entry on the first successful match. Expired or
// exhausted entries are deleted and permanently invalid; a mismatch leaves
// the entry in place with its attempt count incremented.
func (s *otpStore) Verify(mobile, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[mobile]
	if !ok {
		return false
	}
	if nowFunc().After(entry.expiresAt) {
		delete(s.entries, mobile)
		return false
	}
	if entry.attempts >= s.maxAttempts {
		delete(s.entries, mobile)
		return false
	}

	entry.attempts++

	if entry.code == code {
		delete(s.entries, mobile)
		return true
	}
	return false
}

// randomCode returns a code in [100000, 999999].
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(100000)).String(), nil
}
