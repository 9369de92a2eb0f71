package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"
	"bank-backend/internal/repository/memory"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testKey = []byte(strings.Repeat("k", 32))

const testPassword = "correct-horse-battery"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

type testEnv struct {
	store repository.Store
	clock *fakeClock
	codec *jwtService
	svc   *Service
	log   *logrus.Logger
	hook  *test.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memory.NewStore())
}

func newTestEnvWithStore(t *testing.T, store repository.Store) *testEnv {
	t.Helper()
	clock := newFakeClock()
	codec := newJWTService(testKey, 15*time.Minute, time.Hour, clock.Now)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	svc, err := NewService(store, codec, NewPasswordEncoder(bcrypt.MinCost), testKey, log)
	require.NoError(t, err)
	return &testEnv{store: store, clock: clock, codec: codec, svc: svc, log: log, hook: hook}
}

func userRequest(username string, role models.UserRole) *models.UserRequest {
	return &models.UserRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       username + "@example.com",
		PhoneNumber: "+353000000",
		Username:    username,
		Password:    testPassword,
		Role:        role,
	}
}

func (e *testEnv) register(t *testing.T, username string, role models.UserRole) (*models.User, *models.AuthenticationResponse) {
	t.Helper()
	resp, err := e.svc.Auth.Register(context.Background(), userRequest(username, role))
	require.NoError(t, err)
	user, err := e.store.Users().FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return user, resp
}

func (e *testEnv) login(t *testing.T, username string) *models.AuthenticationResponse {
	t.Helper()
	resp, err := e.svc.Auth.Login(context.Background(), &models.LoginRequest{Username: username, Password: testPassword})
	require.NoError(t, err)
	return resp
}

func bearer(token string) string {
	return "Bearer " + token
}
