package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ivansvit/upgraded-blog/app/auth"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// CookieName is the name of the cookie carrying the session token.
	CookieName = "blog_session"

	keyPrefix = "session:"
)

var ErrInvalidToken = errors.New("invalid session token")

// Options configures a Store.
type Options struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Secret   string
	TTL      time.Duration
	// Secure sets the Secure attribute on the cookie.
	Secure bool
}

// Store persists sessions in badger and issues HS256 signed cookies.
type Store struct {
	db     *badger.DB
	secret []byte
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
}

// Open opens (or creates) the session database.
func Open(opts Options, log zerolog.Logger) (*Store, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}

	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &Store{
		db:     db,
		secret: []byte(opts.Secret),
		ttl:    opts.TTL,
		secure: opts.Secure,
		log:    log.With().Str("component", "sessions").Logger(),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Backup writes a full badger backup of all live sessions to w.
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to back up sessions: %w", err)
	}
	return nil
}

// New returns an empty, unsaved session.
func (s *Store) New() *Session {
	return &Session{ID: uuid.NewString(), Created: time.Now().UTC()}
}

// Load returns the session named by the request cookie. A missing, forged
// or expired cookie yields a new anonymous session.
func (s *Store) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return s.New(), nil
	}

	id, err := s.parseToken(cookie.Value)
	if err != nil {
		return s.New(), nil
	}

	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return s.New(), nil
	}
	return sess, nil
}

// Save writes sess to badger and sets the session cookie on w.
func (s *Store) Save(w http.ResponseWriter, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key(sess.ID), data).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	token, expires, err := s.signToken(sess.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	sess.dirty = false
	return nil
}

// Renew moves sess to a fresh id and saves it. The old record is removed.
func (s *Store) Renew(w http.ResponseWriter, sess *Session) error {
	old := sess.ID
	sess.ID = uuid.NewString()
	if err := s.delete(old); err != nil {
		return err
	}
	return s.Save(w, sess)
}

// Destroy removes sess and expires the cookie.
func (s *Store) Destroy(w http.ResponseWriter, sess *Session) error {
	if err := s.delete(sess.ID); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	*sess = Session{ID: uuid.NewString(), Created: time.Now().UTC()}
	return nil
}

// Middleware loads the session for every request and stores it, together
// with the request identity, in the request context.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Load(r)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to load session")
			sess = s.New()
		}
		ctx := NewContext(r.Context(), sess)
		ctx = auth.WithIdentity(ctx, sess.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Store) get(id string) (*Session, error) {
	var sess *Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sess = &Session{}
			return json.Unmarshal(val, sess)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess != nil {
		sess.ID = id
	}
	return sess, nil
}

func (s *Store) delete(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) signToken(id string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expires, nil
}

func (s *Store) parseToken(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}
