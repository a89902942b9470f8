// Package leaderboard строит рейтинг участников из отправок и значков.
// Агрегация чистая; Service добавляет загрузку, кэш и ранги из леджера.
package leaderboard

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

// DefaultLimit: размер рейтинга, если лимит не задан.
const DefaultLimit = 20

// Entry is one leaderboard row.
// @Description Leaderboard row
type Entry struct {
	Rank              int       `json:"rank" example:"1"`
	UserID            uuid.UUID `json:"user_id"`
	Username          string    `json:"username" example:"gasgolfer"`
	WalletAddress     string    `json:"wallet_address"`
	SubmissionCount   int       `json:"submission_count" example:"12"`
	AverageScore      float64   `json:"average_score" example:"87.25"`
	Wins              int       `json:"wins" example:"7"`
	ReputationScore   int64     `json:"reputation_score" example:"61"`
	Chain             string    `json:"chain,omitempty" example:"avalanche"`
	OnchainRank       *int      `json:"onchain_rank,omitempty"`
	BadgesCount       int       `json:"badges_count" example:"3"`
	HighestBadgeLevel int       `json:"highest_badge_level" example:"2"`
}

// Options narrows and bounds the aggregation.
type Options struct {
	// Chain оставляет только отправки на челленджи этой сети.
	Chain string
	Limit int
}

type accumulator struct {
	count int
	total float64
	wins  int
}

// Aggregate группирует отправки по пользователю и сортирует по среднему
// баллу (по убыванию), при равенстве по user id. Пользователи без
// отправок и отправки неизвестных пользователей в рейтинг не попадают.
func Aggregate(users []*models.User, submissions []*models.Submission, badges []*models.Badge, challenges []*models.Challenge, opts Options) []Entry {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	chainOf := make(map[uuid.UUID]string, len(challenges))
	for _, c := range challenges {
		chainOf[c.ID] = c.Chain
	}

	byUser := make(map[uuid.UUID]*accumulator)
	for _, s := range submissions {
		if opts.Chain != "" && chainOf[s.ChallengeID] != opts.Chain {
			continue
		}
		acc, ok := byUser[s.UserID]
		if !ok {
			acc = &accumulator{}
			byUser[s.UserID] = acc
		}
		acc.count++
		acc.total += s.Score
		if s.IsWinner {
			acc.wins++
		}
	}

	badgeCount := make(map[uuid.UUID]int)
	highest := make(map[uuid.UUID]int)
	for _, b := range badges {
		badgeCount[b.UserID]++
		if b.Level > highest[b.UserID] {
			highest[b.UserID] = b.Level
		}
	}

	// сортировка по точному среднему, округление только в AverageScore
	type row struct {
		entry Entry
		mean  float64
	}
	rows := make([]row, 0, len(byUser))
	for _, u := range users {
		acc, ok := byUser[u.ID]
		if !ok {
			continue
		}
		mean := acc.total / float64(acc.count)
		rows = append(rows, row{mean: mean, entry: Entry{
			UserID:            u.ID,
			Username:          u.DisplayName(),
			WalletAddress:     u.WalletAddress,
			SubmissionCount:   acc.count,
			AverageScore:      math.Round(mean*100) / 100,
			Wins:              acc.wins,
			ReputationScore:   u.ReputationScore,
			Chain:             opts.Chain,
			BadgesCount:       badgeCount[u.ID],
			HighestBadgeLevel: highest[u.ID],
		}})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].mean != rows[j].mean {
			return rows[i].mean > rows[j].mean
		}
		return rows[i].entry.UserID.String() < rows[j].entry.UserID.String()
	})

	entries := make([]Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].entry
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
