package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

var errDB = errors.New("db error: connection reset")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeRecorder counts observations by label.
type fakeRecorder struct {
	mu            sync.Mutex
	sessions      map[string]int
	logins        map[string]int
	registrations map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		sessions:      map[string]int{},
		logins:        map[string]int{},
		registrations: map[string]int{},
	}
}

func (r *fakeRecorder) RecordSession(state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[state]++
}

func (r *fakeRecorder) RecordLogin(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins[outcome]++
}

func (r *fakeRecorder) RecordRegistration(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[outcome]++
}

func (r *fakeRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}

// countingUsers wraps a users.Repository, counts writes and can fail reads.
type countingUsers struct {
	users.Repository
	mu      sync.Mutex
	writes  int
	readErr error
}

func (c *countingUsers) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func (c *countingUsers) Create(ctx context.Context, u *models.User) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Repository.Create(ctx, u)
}

func (c *countingUsers) UpdateRefreshToken(ctx context.Context, email, token string) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Repository.UpdateRefreshToken(ctx, email, token)
}

func (c *countingUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	return c.Repository.GetByEmail(ctx, email)
}

func (c *countingUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	return c.Repository.GetByUsername(ctx, username)
}

func (c *countingUsers) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	return c.Repository.GetByRefreshToken(ctx, token)
}

func (c *countingUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	if c.readErr != nil {
		return false, c.readErr
	}
	return c.Repository.UsernameExists(ctx, username)
}

type fakeRepoManager struct {
	users *countingUsers
	tasks tasks.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository              { return m.tasks }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

type sessionEnv struct {
	svc     *SessionService
	codec   *auth.Codec
	clock   *fakeClock
	users   *countingUsers
	metrics *fakeRecorder
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenSecret = "access-secret"
	cfg.RefreshTokenSecret = "refresh-secret"
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func newSessionEnv(t *testing.T, mutate ...func(*config.Config)) *sessionEnv {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := auth.NewCodec(cfg, auth.WithClock(clock.Now))
	u := &countingUsers{Repository: users.NewMemoryRepository()}
	rec := newFakeRecorder()
	rm := &fakeRepoManager{users: u, tasks: tasks.NewMemoryRepository()}

	svc := NewSessionService(nil, rm, cfg, codec, auth.NewBcryptHasher(cfg.BcryptCost), logging.NewNop(), rec)

	return &sessionEnv{svc: svc, codec: codec, clock: clock, users: u, metrics: rec}
}

func (e *sessionEnv) register(t *testing.T, first, last, email string) *models.User {
	t.Helper()
	if err := e.svc.Register(context.Background(), RegisterInput{
		FirstName: first, LastName: last, Email: email, Password: "s3cret",
	}); err != nil {
		t.Fatalf("Register(%s %s) error: %v", first, last, err)
	}
	u, err := e.users.Repository.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	return u
}
