package credentials

import (
	"net/http"
	"sync"
)

// CookieStore implements Store on top of HTTP-only, SameSite=Lax cookies.
// Writes go to the response; reads consult an overlay of writes made during
// the current request before falling back to the request cookies, so a
// handler that stores a token and immediately resolves the session sees the
// new value.
type CookieStore struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	ttls    TTLs
	overlay map[Kind]*string // nil entry = cleared this request
}

// NewCookieStore builds a per-request cookie store. secure must be true in
// production so cookies are never sent over plaintext HTTP.
func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool, ttls TTLs) *CookieStore {
	return &CookieStore{
		w:       w,
		r:       r,
		secure:  secure,
		ttls:    ttls,
		overlay: make(map[Kind]*string),
	}
}

func (s *CookieStore) Set(kind Kind, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(kind, value)
}

func (s *CookieStore) setLocked(kind Kind, value string) error {
	if !kind.Valid() {
		return errInvalidKind(kind)
	}
	if s.w == nil {
		return errStorageUnavailable("no response writer attached to credential store")
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     string(kind),
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.ttls.For(kind).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	v := value
	s.overlay[kind] = &v
	return nil
}

func (s *CookieStore) Get(kind Kind) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, ok := s.overlay[kind]; ok {
		if pending == nil {
			return "", false
		}
		return *pending, true
	}
	if s.r == nil {
		return "", false
	}
	c, err := s.r.Cookie(string(kind))
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *CookieStore) Clear(kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(kind)
}

func (s *CookieStore) clearLocked(kind Kind) error {
	if !kind.Valid() {
		return errInvalidKind(kind)
	}
	if s.w == nil {
		return errStorageUnavailable("no response writer attached to credential store")
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     string(kind),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.overlay[kind] = nil
	return nil
}

// ClearAll removes every credential slot under a single lock. Logout and
// unrecoverable auth failures depend on this never clearing partially.
func (s *CookieStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range Kinds {
		if err := s.clearLocked(kind); err != nil {
			return err
		}
	}
	return nil
}

// SetTokens replaces both tokens under a single lock.
func (s *CookieStore) SetTokens(authToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setLocked(KindAuthToken, authToken); err != nil {
		return err
	}
	return s.setLocked(KindRefreshToken, refreshToken)
}
