package api

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/robonalysis/internal/domain/types"
)

// SessionCookie is the cookie carrying the unlock session token.
const SessionCookie = "vv_auth"

const (
	defaultSessionTTL = 30 * 24 * time.Hour
	maxUnlockBody     = 4 << 10
)

// Sessions is an in-memory store of unlock tokens and their expiry.
type Sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]time.Time
}

// NewSessions creates a store issuing tokens valid for ttl.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Sessions{ttl: ttl, now: time.Now, tokens: make(map[string]time.Time)}
}

// Issue creates a new token.
func (s *Sessions) Issue() (string, time.Time) {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	expires := s.now().Add(s.ttl)
	s.tokens[token] = expires
	s.sweepLocked()
	return token, expires
}

// Valid reports whether token was issued and has not expired.
func (s *Sessions) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.tokens[token]
	if !ok {
		return false
	}
	if !s.now().Before(expires) {
		delete(s.tokens, token)
		return false
	}
	return true
}

// Len returns the number of live tokens.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.tokens)
}

func (s *Sessions) sweepLocked() {
	now := s.now()
	for t, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, t)
		}
	}
}

// UnlockHandler exchanges the passcode for a session cookie.
type UnlockHandler struct {
	passcode string
	sessions *Sessions
}

// NewUnlockHandler creates a new unlock handler.
func NewUnlockHandler(passcode string, sessions *Sessions) *UnlockHandler {
	return &UnlockHandler{passcode: passcode, sessions: sessions}
}

// HandleUnlock handles POST /api/unlock requests.
func (h *UnlockHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if h.passcode == "" {
		writeError(w, http.StatusInternalServerError, "not_configured", ErrNotConfigured)
		return
	}

	var req types.UnlockRequest
	// An unreadable body is treated as an empty passcode.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUnlockBody)).Decode(&req)

	if subtle.ConstantTimeCompare([]byte(req.Passcode), []byte(h.passcode)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrInvalidCode)
		return
	}

	token, expires := h.sessions.Issue()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, types.UnlockResponse{OK: true})
}

// RequireSession rejects requests without a valid session cookie when a
// passcode is configured. With no passcode the API is open.
func RequireSession(passcode string, sessions *Sessions, next http.HandlerFunc) http.HandlerFunc {
	if passcode == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil || !sessions.Valid(c.Value) {
			writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
			return
		}
		next(w, r)
	}
}
