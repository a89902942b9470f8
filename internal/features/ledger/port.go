// Package ledger зеркалирует часть локального состояния во внешний леджер.
// Локальное состояние первично: любой вызов может завершиться неудачей,
// и это не влияет на уже зафиксированные данные.
package ledger

import (
	"context"
	"errors"
)

// Operation names, used in logs, metrics and sync failure reports.
const (
	OpPublishUserStats = "publish_user_stats"
	OpMintBadge        = "mint_badge"
	OpLevelUpBadge     = "level_up_badge"
	OpUserRank         = "user_rank"
)

// ErrDisabled is returned by every call of a ledger that is not configured.
var ErrDisabled = errors.New("ledger sync is disabled")

// UserStats: снимок статистики пользователя для публикации.
type UserStats struct {
	Wallet          string
	Username        string
	Chain           string
	SubmissionCount int64
	WinCount        int64
	TotalScore      float64
	Reputation      int64
}

// Result описывает итог вызова: либо ссылка на транзакцию, либо ошибка.
type Result struct {
	Ref string
	Err error
}

func (r Result) OK() bool {
	return r.Err == nil && r.Ref != ""
}

func Synced(ref string) Result {
	return Result{Ref: ref}
}

func Failed(err error) Result {
	if err == nil {
		err = errors.New("ledger returned no reference")
	}
	return Result{Err: err}
}

// Status describes the ledger connection for the readiness endpoint.
type Status struct {
	Enabled bool   `json:"enabled"`
	Healthy bool   `json:"healthy"`
	Network string `json:"network,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Ledger interface {
	PublishUserStats(ctx context.Context, stats UserStats) Result
	MintBadge(ctx context.Context, wallet string, code uint8, level int) Result
	LevelUpBadge(ctx context.Context, wallet string, code uint8) Result
	// UserRank returns the rank the leaderboard contract holds for wallet.
	UserRank(ctx context.Context, wallet string) (int, error)
	Status(ctx context.Context) Status
}
