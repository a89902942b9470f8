package badge

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

func win(category models.Category, chain string) models.HistoryEntry {
	return models.HistoryEntry{ChallengeID: uuid.New(), Category: category, Chain: chain, IsWinner: true}
}

func loss(category models.Category, chain string) models.HistoryEntry {
	return models.HistoryEntry{ChallengeID: uuid.New(), Category: category, Chain: chain}
}

func TestCatalogOrderMatchesLedgerCodes(t *testing.T) {
	c := MustCatalog("")
	entries := c.Entries()
	require.Len(t, entries, 6)
	for i, e := range entries {
		assert.Equal(t, uint8(i), e.Code)
		assert.Equal(t, models.AllBadgeTypes()[i], e.Type)
		for k := 1; k < len(e.Thresholds); k++ {
			assert.Greater(t, e.Thresholds[k], e.Thresholds[k-1], "%s thresholds must increase", e.Type)
		}
	}
}

func TestLookupUnknownTypeIsInvariantViolation(t *testing.T) {
	_, err := MustCatalog("").Lookup(models.BadgeType("speedrunner"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvariant))
}

func TestMetrics(t *testing.T) {
	c := MustCatalog("avalanche")
	repeated := win(models.CategorySecurityExploit, "celo")
	history := []models.HistoryEntry{
		win(models.CategoryGasOptimization, "avalanche"),
		win(models.CategoryGasOptimization, "celo"),
		loss(models.CategoryGasOptimization, "avalanche"),
		repeated,
		repeated,
		win(models.CategorySecurityExploit, "avalanche"),
		loss(models.CategorySecurityExploit, "avalanche"),
	}

	expected := map[models.BadgeType]int{
		models.BadgeGasOptimizer:        2,
		models.BadgeSecurityExpert:      3,
		models.BadgeVulnerabilityHunter: 2,
		models.BadgeTopContributor:      7,
		models.BadgeChallengeMaster:     5,
		models.BadgeAvalancheSpecialist: 2,
	}
	for badgeType, want := range expected {
		entry, err := c.Lookup(badgeType)
		require.NoError(t, err)
		assert.Equal(t, want, entry.Metric(history), badgeType)
	}
}

func TestSpecialistChainIsConfigurable(t *testing.T) {
	entry, err := MustCatalog("celo").Lookup(models.BadgeAvalancheSpecialist)
	require.NoError(t, err)
	history := []models.HistoryEntry{win(models.CategoryGasOptimization, "celo"), win(models.CategoryGasOptimization, "avalanche")}
	assert.Equal(t, 1, entry.Metric(history))
}

func TestLevelFor(t *testing.T) {
	entry, err := MustCatalog("").Lookup(models.BadgeGasOptimizer)
	require.NoError(t, err)

	cases := map[int]int{0: 0, 1: 1, 2: 1, 3: 2, 9: 2, 10: 3, 25: 4, 49: 4, 50: 5, 1000: 5}
	for value, level := range cases {
		assert.Equal(t, level, entry.LevelFor(value), "value %d", value)
	}
}
