package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/config"
	"github.com/sjperalta/creditos-api/internal/database"
	"github.com/sjperalta/creditos-api/internal/localday"
	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var actor = models.Actor{UserID: 1, IP: "127.0.0.1", UserAgent: "go-test"}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) advanceDays(n int) {
	c.now = c.now.AddDate(0, 0, n)
}

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	svc   *Services
	cal   *localday.Calendar
	clock *testClock
}

// newTestEnv opens a private in-memory database with a clock fixed at
// 2026-10-15 15:00 UTC.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvAt(t, time.UTC, time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC))
}

// newTestEnvAt is newTestEnv with business days resolved in loc and the clock at now.
func newTestEnvAt(t *testing.T, loc *time.Location, now time.Time) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Connect("sqlite://file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	clock := &testClock{now: now}
	cal := localday.New(loc).WithClock(clock.Now)
	repos := repository.NewRepositories(db)
	cfg := &config.Config{AppSecret: "test-secret", SessionHours: 1, AppUser: "caja", AppPass: "clave"}

	return &testEnv{
		db:    db,
		repos: repos,
		svc:   NewServices(db, repos, cfg, cal),
		cal:   cal,
		clock: clock,
	}
}

func (e *testEnv) createClient(t *testing.T, name, amount, rate string) *CreateClientResult {
	t.Helper()
	res, err := e.svc.Client.Create(context.Background(), actor, ClientInput{
		Name:         name,
		Amount:       amount,
		InterestRate: rate,
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) settlement(t *testing.T, day time.Time) *models.DailySettlement {
	t.Helper()
	st, err := e.repos.Settlement.FindByDate(context.Background(), day)
	require.NoError(t, err)
	return st
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	assert.Truef(t, want.Equal(actual), "expected %s, got %s %v", want.String(), actual.String(), msgAndArgs)
}
