// Package session keeps each visitor's cart and checkout server-side, keyed by
// an id carried in a signed cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/01moynul/hidaaya-golang/internal/cart"
	"github.com/01moynul/hidaaya-golang/internal/checkout"
)

const (
	cookieName   = "hidaaya_session"
	keySessionID = "sid"
	maxAge       = 7 * 24 * 60 * 60
)

// ErrNotFound is returned by a Backend for an unknown or expired id.
var ErrNotFound = errors.New("session: not found")

// Backend persists encoded visitor state.
type Backend interface {
	Load(ctx context.Context, id string, now time.Time) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error
}

// Store loads and saves visitor state.
type Store struct {
	cookies *sessions.CookieStore
	backend Backend
	Now     func() time.Time
}

// NewStore signs the id cookie with secret and keeps state in backend.
// secure marks cookies HTTPS-only.
func NewStore(secret string, secure bool, backend Backend) *Store {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cs, backend: backend, Now: time.Now}
}

// Visitor is the per-request view of one visitor's state.
type Visitor struct {
	Cart     *cart.Cart
	Checkout *checkout.Session

	id  string
	raw *sessions.Session
}

// ID is empty until the visitor is first saved.
func (v *Visitor) ID() string { return v.id }

type state struct {
	Cart     []cart.Item       `json:"cart"`
	Checkout *checkout.Session `json:"checkout"`
}

// Load reads the visitor's state for r. A missing, expired or tampered
// cookie yields an empty cart and a fresh checkout; the error is returned
// only so the caller can log it.
func (s *Store) Load(r *http.Request) (*Visitor, error) {
	raw, err := s.cookies.Get(r, cookieName)
	v := &Visitor{Cart: &cart.Cart{}, Checkout: checkout.NewSession(), raw: raw}
	if err != nil {
		return v, fmt.Errorf("decode session cookie: %w", err)
	}

	id, _ := raw.Values[keySessionID].(string)
	if id == "" {
		return v, nil
	}
	v.id = id

	data, err := s.backend.Load(r.Context(), id, s.Now())
	if errors.Is(err, ErrNotFound) {
		return v, nil
	}
	if err != nil {
		return v, fmt.Errorf("load session: %w", err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return v, fmt.Errorf("decode session state: %w", err)
	}
	v.Cart = cart.New(st.Cart)
	if st.Checkout != nil {
		if st.Checkout.State == "" {
			st.Checkout.State = checkout.StateFilling
		}
		v.Checkout = st.Checkout
	}
	return v, nil
}

// Save stores the visitor's state and refreshes the id cookie on w.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, v *Visitor) error {
	data, err := json.Marshal(state{Cart: v.Cart.Items(), Checkout: v.Checkout})
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	if v.id == "" {
		v.id = uuid.NewString()
	}
	expires := s.Now().Add(maxAge * time.Second)
	if err := s.backend.Save(r.Context(), v.id, data, expires); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	v.raw.Values[keySessionID] = v.id
	if err := v.raw.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}
