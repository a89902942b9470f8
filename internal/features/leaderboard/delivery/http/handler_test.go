package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/middleware"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/leaderboard"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/ledger/ledgertest"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/repository/memory"
)

type fixture struct {
	router *gin.Engine
	alice  *models.User
	bob    *models.User
}

func setupRouter(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	f := &fixture{
		alice: &models.User{ID: uuid.New(), WalletAddress: "wa", Username: "alice"},
		bob:   &models.User{ID: uuid.New(), WalletAddress: "wb", Username: "bob"},
	}
	require.NoError(t, store.CreateUser(ctx, f.alice))
	require.NoError(t, store.CreateUser(ctx, f.bob))

	ava := &models.Challenge{ID: uuid.New(), Category: models.CategoryGasOptimization, Chain: "avalanche", IsActive: true}
	celo := &models.Challenge{ID: uuid.New(), Category: models.CategorySecurityExploit, Chain: "celo", IsActive: true}
	require.NoError(t, store.CreateChallenge(ctx, ava))
	require.NoError(t, store.CreateChallenge(ctx, celo))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, store.CreateSubmissionTx(ctx, tx, &models.Submission{ID: uuid.New(), UserID: f.alice.ID, ChallengeID: ava.ID, Score: 91, IsWinner: true}))
	require.NoError(t, store.CreateSubmissionTx(ctx, tx, &models.Submission{ID: uuid.New(), UserID: f.bob.ID, ChallengeID: celo.ID, Score: 70}))
	require.NoError(t, store.CreateBadgeTx(ctx, tx, &models.Badge{ID: uuid.New(), UserID: f.alice.ID, Type: models.BadgeGasOptimizer, Level: 1}))
	require.NoError(t, tx.Commit())

	rec := ledgertest.NewRecorder()
	rec.SetRank("wa", 2)

	gin.SetMode(gin.TestMode)
	f.router = gin.New()
	f.router.Use(middleware.RequestID(), middleware.HandleErrors())
	svc := leaderboard.NewService(leaderboard.Deps{Store: store, Ledger: rec})
	NewLeaderboardHandler(svc).RegisterRoutes(f.router.Group("/api/v1"))
	return f
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetLeaderboard(t *testing.T) {
	f := setupRouter(t)

	w := get(f.router, "/api/v1/leaderboard")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entries []leaderboard.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, f.alice.ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 91.0, entries[0].AverageScore)
	assert.Equal(t, 1, entries[0].BadgesCount)
	require.NotNil(t, entries[0].OnchainRank)
	assert.Equal(t, 2, *entries[0].OnchainRank)
	assert.Nil(t, entries[1].OnchainRank)

	w = get(f.router, "/api/v1/leaderboard?chain=Celo")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, f.bob.ID, entries[0].UserID)
	assert.Equal(t, "celo", entries[0].Chain)
}

func TestGetLeaderboardBadChain(t *testing.T) {
	f := setupRouter(t)

	w := get(f.router, "/api/v1/leaderboard?chain=no%20spaces")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", string(resp.Error.Code))
}

func TestGetUserBadges(t *testing.T) {
	f := setupRouter(t)

	w := get(f.router, "/api/v1/users/"+f.alice.ID.String()+"/badges")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var badges []models.Badge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &badges))
	require.Len(t, badges, 1)
	assert.Equal(t, models.BadgeGasOptimizer, badges[0].Type)

	// пустой список, а не null
	w = get(f.router, "/api/v1/users/"+f.bob.ID.String()+"/badges")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = get(f.router, "/api/v1/users/not-a-uuid/badges")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(f.router, "/api/v1/users/"+uuid.NewString()+"/badges")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
