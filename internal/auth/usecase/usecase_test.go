package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tasklet-app/tasklet/internal/auth/entity"
	"github.com/tasklet-app/tasklet/internal/pkg/cache"
	"github.com/tasklet-app/tasklet/internal/pkg/crypt"
	"github.com/tasklet-app/tasklet/internal/pkg/goerror"
	"github.com/tasklet-app/tasklet/internal/pkg/goroutine"
	"github.com/tasklet-app/tasklet/internal/pkg/hash"
	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/jwt"
	"github.com/tasklet-app/tasklet/internal/pkg/otp"
	"github.com/tasklet-app/tasklet/internal/pkg/validator"
)

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

type fakeCache struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]fakeEntry
}

func newFakeCache(now time.Time) *fakeCache {
	return &fakeCache{now: now, entries: map[string]fakeEntry{}}
}

func (c *fakeCache) live(key string) (fakeEntry, bool) {
	e, ok := c.entries[key]
	if !ok || c.now.After(e.expiresAt) {
		return fakeEntry{}, false
	}
	return e, true
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return e.value, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = fakeEntry{value: value, expiresAt: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.live(key); ok {
		return false, nil
	}
	c.entries[key] = fakeEntry{value: value, expiresAt: c.now.Add(ttl)}
	return true, nil
}

func (c *fakeCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.live(key)
	delete(c.entries, key)
	return ok, nil
}

func (c *fakeCache) Close() error { return nil }

type fakeRepo struct {
	mu         sync.Mutex
	users      map[int64]entity.User
	tokens     map[string]entity.RefreshRecord
	failRotate bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  map[int64]entity.User{},
		tokens: map[string]entity.RefreshRecord{},
	}
}

func (r *fakeRepo) GetUserByPhone(_ context.Context, phone string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Phone == phone {
			found := u
			return &found, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	found := u
	return &found, nil
}

func (r *fakeRepo) CreateUser(_ context.Context, user entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Phone == user.Phone {
			return goerror.ErrConflict
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeRepo) GetRefreshToken(_ context.Context, tokenHash string) (*entity.RefreshRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tokens[tokenHash]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	found := rec
	return &found, nil
}

func (r *fakeRepo) RotateUserSessions(_ context.Context, userID int64, rec entity.RefreshRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failRotate {
		return goerror.ErrConflict
	}

	now := time.Now()
	for h, existing := range r.tokens {
		if existing.UserID == userID && existing.BlacklistedAt == nil {
			at := now
			existing.BlacklistedAt = &at
			r.tokens[h] = existing
		}
	}
	r.tokens[rec.TokenHash] = rec
	return nil
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []OtpSmsEvent
}

func (m *fakeMessaging) PublishOtpSms(_ context.Context, msg OtpSmsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, msg)
	return nil
}

func (m *fakeMessaging) published() []OtpSmsEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]OtpSmsEvent(nil), m.events...)
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	return s.next
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type staticUUID struct{}

func (staticUUID) Generate() string { return "test-jti" }

// seqUUID yields a unique jti per call so refresh tokens minted by separate
// logins do not collide under the fixture's fixed clock.
type seqUUID struct {
	mu sync.Mutex
	n  int
}

func (s *seqUUID) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++
	return "test-jti-" + strconv.Itoa(s.n)
}

type fixture struct {
	uc    *Usecase
	repo  *fakeRepo
	msgs  *fakeMessaging
	cache *fakeCache
	enc   *crypt.AESGCM
	jwt   *jwt.Symmetric
	hmac  *hash.HMACSHA256
	g     *goroutine.Manager
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	now := time.Now()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("expected no error building validator, got %v", err)
	}

	enc, err := crypt.NewAESGCM(bytes.Repeat([]byte("k"), 32))
	if err != nil {
		t.Fatalf("expected no error building encryptor, got %v", err)
	}

	c := newFakeCache(now)
	manager, err := otp.NewManager(c, enc, 6, 2*time.Minute)
	if err != nil {
		t.Fatalf("expected no error building otp manager, got %v", err)
	}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:     bytes.Repeat([]byte("s"), 64),
		Issuer:     "tasklet",
		Audiences:  []string{"tasklet-api"},
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		Clock:      fixedClock{now: now},
		UUID:       &seqUUID{},
	})
	if err != nil {
		t.Fatalf("expected no error building jwt, got %v", err)
	}

	repo := newFakeRepo()
	msgs := &fakeMessaging{}
	hmac := hash.NewHMACSHA256("secret")
	g := goroutine.NewManager(8)

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: msgs,
		Validator:     v,
		Otp:           manager,
		HMAC:          hmac,
		UID:           &seqID{next: 1000},
		Clock:         fixedClock{now: now},
		JWT:           signer,
		Instrument:    instrument.NewNoop(),
		Goroutine:     g,
	})

	return &fixture{
		uc:    uc,
		repo:  repo,
		msgs:  msgs,
		cache: c,
		enc:   enc,
		jwt:   signer,
		hmac:  hmac,
		g:     g,
		now:   now,
	}
}

// activeCode decrypts the currently stored code for the phone straight out of
// the cache, so scenarios do not depend on the async SMS dispatch.
func (f *fixture) activeCode(t *testing.T, phone string) string {
	t.Helper()

	f.cache.mu.Lock()
	entry, ok := f.cache.live(phone + "-otp")
	f.cache.mu.Unlock()
	if !ok {
		t.Fatal("expected an active otp record in the cache")
	}

	var record map[string]any
	if err := json.Unmarshal(entry.value, &record); err != nil {
		t.Fatalf("expected a json record, got %v", err)
	}

	encoded, ok := record["token"].(string)
	if !ok {
		t.Fatal("expected the record to carry a token field")
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("expected base64 token material, got %v", err)
	}

	code, err := f.enc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("expected no error decrypting stored code, got %v", err)
	}

	return string(code)
}

// seedUser inserts a user directly into the repository.
func (f *fixture) seedUser(id int64, phone string, status entity.UserStatus) {
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()

	f.repo.users[id] = entity.User{ID: id, Phone: phone, Status: status}
}

// refreshRecord looks up the ledger row for a minted refresh token.
func (f *fixture) refreshRecord(t *testing.T, refreshToken string) entity.RefreshRecord {
	t.Helper()

	h, err := f.hmac.Hash(refreshToken)
	if err != nil {
		t.Fatalf("expected no error hashing token, got %v", err)
	}

	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()

	rec, ok := f.repo.tokens[string(h)]
	if !ok {
		t.Fatal("expected the refresh token to be recorded in the ledger")
	}
	return rec
}

// assertCode requires err to be a structured error with the given code.
func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected an error with code %v, got nil", want)
	}

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected a structured error, got %T: %v", err, err)
	}
	if gerr.Code() != want {
		t.Fatalf("expected code %v, got %v (%s)", want, gerr.Code(), gerr.String())
	}
}
