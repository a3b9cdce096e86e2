package balance

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/balanza/balanza/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	container, pool := test_utils.TestWithDB()
	db = pool()
	code := m.Run()
	db.Close()
	if err := container.Terminate(context.Background()); err != nil {
		log.Errorf("failed to terminate postgres container: %v", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repo, int) {
	testCtx := context.Background()
	repo := NewRepo(db)

	var userId int
	err := db.QueryRow(testCtx,
		`INSERT INTO app_user (uid, display_name) VALUES (gen_random_uuid()::text, 'Balance Test') RETURNING id`,
	).Scan(&userId)
	require.NoError(t, err)
	return testCtx, repo, userId
}

func TestRepoImpl_GetBalance_WhenMissing(t *testing.T) {
	// given
	testCtx, repo, userId := setupTestRepository(t)

	// when
	_, err := repo.GetBalance(testCtx, userId)

	// then
	assert.ErrorIs(t, err, ErrNoStartingBalance)
}

func TestRepoImpl_StoreBalance_RoundTrip(t *testing.T) {
	// given
	testCtx, repo, userId := setupTestRepository(t)
	effectiveDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// when
	stored, err := repo.StoreBalance(testCtx, StartingBalance{
		UserID:        userId,
		Amount:        decimal.RequireFromString("1000.25"),
		EffectiveDate: effectiveDate,
	})
	require.NoError(t, err)

	// then
	assert.False(t, stored.UpdatedAt.IsZero())
	fetched, err := repo.GetBalance(testCtx, userId)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1000.25").Equal(fetched.Amount), "amount was %s", fetched.Amount)
	assert.Equal(t, effectiveDate, fetched.EffectiveDate)
}

func TestRepoImpl_StoreBalance_ReplacesExisting(t *testing.T) {
	// given
	testCtx, repo, userId := setupTestRepository(t)
	_, err := repo.StoreBalance(testCtx, StartingBalance{
		UserID:        userId,
		Amount:        decimal.NewFromInt(1000),
		EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// when
	newDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err = repo.StoreBalance(testCtx, StartingBalance{
		UserID:        userId,
		Amount:        decimal.NewFromInt(-250),
		EffectiveDate: newDate,
	})
	require.NoError(t, err)

	// then
	fetched, err := repo.GetBalance(testCtx, userId)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-250).Equal(fetched.Amount))
	assert.Equal(t, newDate, fetched.EffectiveDate)
}
