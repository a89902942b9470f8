// Package ledgertest provides a recording ledger for service tests.
package ledgertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/ledger"
)

// Call is one recorded ledger invocation.
type Call struct {
	Op     string
	Wallet string
	Code   uint8
	Level  int
	Stats  ledger.UserStats
}

// Recorder записывает вызовы и возвращает заранее заданные ошибки по
// имени операции.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	fail   map[string]error
	ranks  map[string]int
	levels map[string]int // уровни значков после успешных вызовов
	seq    int
}

var _ ledger.Ledger = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{fail: map[string]error{}, ranks: map[string]int{}, levels: map[string]int{}}
}

// FailOn makes every subsequent call of op fail with err. A nil err clears it.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, op)
		return
	}
	r.fail[op] = err
}

// SetRank scripts the rank returned for wallet.
func (r *Recorder) SetRank(wallet string, rank int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranks[wallet] = rank
}

// Calls returns a copy of the recorded calls, optionally filtered by op.
func (r *Recorder) Calls(ops ...string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if len(ops) == 0 || contains(ops, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

// Level returns the badge level the recorded ledger holds for wallet, 0 when
// nothing was minted.
func (r *Recorder) Level(wallet string, code uint8) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levels[levelKey(wallet, code)]
}

func levelKey(wallet string, code uint8) string {
	return fmt.Sprintf("%s/%d", wallet, code)
}

func (r *Recorder) record(c Call) ledger.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if err, ok := r.fail[c.Op]; ok {
		return ledger.Failed(err)
	}
	switch c.Op {
	case ledger.OpMintBadge:
		r.levels[levelKey(c.Wallet, c.Code)] = c.Level
	case ledger.OpLevelUpBadge:
		r.levels[levelKey(c.Wallet, c.Code)]++
	}
	r.seq++
	return ledger.Synced(fmt.Sprintf("%s-%d", c.Op, r.seq))
}

func (r *Recorder) PublishUserStats(_ context.Context, stats ledger.UserStats) ledger.Result {
	return r.record(Call{Op: ledger.OpPublishUserStats, Wallet: stats.Wallet, Stats: stats})
}

func (r *Recorder) MintBadge(_ context.Context, wallet string, code uint8, level int) ledger.Result {
	return r.record(Call{Op: ledger.OpMintBadge, Wallet: wallet, Code: code, Level: level})
}

func (r *Recorder) LevelUpBadge(_ context.Context, wallet string, code uint8) ledger.Result {
	return r.record(Call{Op: ledger.OpLevelUpBadge, Wallet: wallet, Code: code})
}

func (r *Recorder) UserRank(_ context.Context, wallet string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: ledger.OpUserRank, Wallet: wallet})
	if err, ok := r.fail[ledger.OpUserRank]; ok {
		return 0, err
	}
	rank, ok := r.ranks[wallet]
	if !ok {
		return 0, fmt.Errorf("no rank for %s", wallet)
	}
	return rank, nil
}

func (r *Recorder) Status(context.Context) ledger.Status {
	return ledger.Status{Enabled: true, Healthy: true, Network: "recorder"}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
