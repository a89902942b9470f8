package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/logger"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/validation"
)

// Коды операций во внутренних сообщениях к контрактам значков и лидерборда.
const (
	opMintBadge       uint64 = 0x6d696e74 // "mint"
	opLevelUpBadge    uint64 = 0x6c766c75 // "lvlu"
	opUpdateUserStats uint64 = 0x73746174 // "stat"

	getUserRankMethod = "get_user_rank"
)

// messenger отправляет внутреннее сообщение и ждёт транзакцию.
type messenger interface {
	Send(ctx context.Context, to *address.Address, amount tlb.Coins, body *cell.Cell) (txHash []byte, err error)
}

// chainReader вызывает get-методы контрактов.
type chainReader interface {
	RunGetMethod(ctx context.Context, contract *address.Address, method string, params ...interface{}) (*big.Int, error)
	Ping(ctx context.Context) error
}

// TONConfig is the subset of the ledger configuration the adapter needs.
type TONConfig struct {
	Network             string
	Seed                []string
	BadgeContract       string
	LeaderboardContract string
	MessageAmount       string
}

// TONLedger mirrors badges and user stats to contracts on TON.
type TONLedger struct {
	sender      messenger
	reader      chainReader
	badge       *address.Address
	leaderboard *address.Address
	amount      tlb.Coins
	network     string
	queryID     atomic.Uint64
	log         zerolog.Logger
}

// NewTONLedger поднимает кошелёк из сид-фразы поверх готового API клиента.
func NewTONLedger(api ton.APIClientWrapped, cfg TONConfig) (*TONLedger, error) {
	w, err := wallet.FromSeed(api, cfg.Seed, wallet.V4R2)
	if err != nil {
		return nil, fmt.Errorf("load ledger wallet: %w", err)
	}

	l, err := newTONLedger(&walletMessenger{w: w}, &apiReader{api: api}, cfg)
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("wallet", w.WalletAddress().String()).Msg("TON ledger wallet loaded")
	return l, nil
}

func newTONLedger(sender messenger, reader chainReader, cfg TONConfig) (*TONLedger, error) {
	badge, err := address.ParseAddr(cfg.BadgeContract)
	if err != nil {
		return nil, fmt.Errorf("parse badge contract address: %w", err)
	}
	leaderboard, err := address.ParseAddr(cfg.LeaderboardContract)
	if err != nil {
		return nil, fmt.Errorf("parse leaderboard contract address: %w", err)
	}
	amount, err := tlb.FromTON(cfg.MessageAmount)
	if err != nil {
		return nil, fmt.Errorf("parse message amount %q: %w", cfg.MessageAmount, err)
	}

	l := &TONLedger{
		sender:      sender,
		reader:      reader,
		badge:       badge,
		leaderboard: leaderboard,
		amount:      amount,
		network:     cfg.Network,
		log:         logger.Component("ledger"),
	}
	l.queryID.Store(uint64(time.Now().Unix()) << 20)
	return l, nil
}

func (l *TONLedger) nextQueryID() uint64 {
	return l.queryID.Add(1)
}

func (l *TONLedger) MintBadge(ctx context.Context, walletAddr string, code uint8, level int) Result {
	owner, err := validation.ParseWallet(walletAddr)
	if err != nil {
		return Failed(err)
	}
	if level < 1 || level > math.MaxUint8 {
		return Failed(fmt.Errorf("badge level %d out of range", level))
	}

	body := cell.BeginCell().
		MustStoreUInt(opMintBadge, 32).
		MustStoreUInt(l.nextQueryID(), 64).
		MustStoreAddr(owner).
		MustStoreUInt(uint64(code), 8).
		MustStoreUInt(uint64(level), 8).
		EndCell()

	return l.send(ctx, OpMintBadge, l.badge, body)
}

func (l *TONLedger) LevelUpBadge(ctx context.Context, walletAddr string, code uint8) Result {
	owner, err := validation.ParseWallet(walletAddr)
	if err != nil {
		return Failed(err)
	}

	body := cell.BeginCell().
		MustStoreUInt(opLevelUpBadge, 32).
		MustStoreUInt(l.nextQueryID(), 64).
		MustStoreAddr(owner).
		MustStoreUInt(uint64(code), 8).
		EndCell()

	return l.send(ctx, OpLevelUpBadge, l.badge, body)
}

// PublishUserStats отправляет статистику в контракт лидерборда. Общий счёт
// хранится в сотых долях, строки лежат в отдельных ячейках.
func (l *TONLedger) PublishUserStats(ctx context.Context, stats UserStats) Result {
	owner, err := validation.ParseWallet(stats.Wallet)
	if err != nil {
		return Failed(err)
	}
	if stats.SubmissionCount < 0 || stats.WinCount < 0 || stats.Reputation < 0 || stats.TotalScore < 0 {
		return Failed(fmt.Errorf("negative user stats for %s", stats.Wallet))
	}

	body := cell.BeginCell().
		MustStoreUInt(opUpdateUserStats, 32).
		MustStoreUInt(l.nextQueryID(), 64).
		MustStoreAddr(owner).
		MustStoreUInt(uint64(stats.SubmissionCount), 32).
		MustStoreUInt(uint64(stats.WinCount), 32).
		MustStoreUInt(uint64(math.Round(stats.TotalScore*100)), 64).
		MustStoreUInt(uint64(stats.Reputation), 64).
		MustStoreRef(cell.BeginCell().MustStoreStringSnake(stats.Username).EndCell()).
		MustStoreRef(cell.BeginCell().MustStoreStringSnake(stats.Chain).EndCell()).
		EndCell()

	return l.send(ctx, OpPublishUserStats, l.leaderboard, body)
}

func (l *TONLedger) UserRank(ctx context.Context, walletAddr string) (int, error) {
	owner, err := validation.ParseWallet(walletAddr)
	if err != nil {
		return 0, err
	}

	arg := cell.BeginCell().MustStoreAddr(owner).EndCell().BeginParse()
	rank, err := l.reader.RunGetMethod(ctx, l.leaderboard, getUserRankMethod, arg)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", getUserRankMethod, err)
	}
	if !rank.IsInt64() || rank.Int64() < 0 || rank.Int64() > math.MaxInt32 {
		return 0, fmt.Errorf("%s returned out of range value %s", getUserRankMethod, rank.String())
	}
	return int(rank.Int64()), nil
}

func (l *TONLedger) Status(ctx context.Context) Status {
	st := Status{Enabled: true, Network: l.network}
	if err := l.reader.Ping(ctx); err != nil {
		st.Error = err.Error()
		return st
	}
	st.Healthy = true
	return st
}

func (l *TONLedger) send(ctx context.Context, op string, to *address.Address, body *cell.Cell) Result {
	start := time.Now()
	hash, err := l.sender.Send(ctx, to, l.amount, body)
	if err != nil {
		l.log.Warn().Err(err).Str("operation", op).Str("contract", to.String()).Msg("Ledger message failed")
		return Failed(fmt.Errorf("%s: %w", op, err))
	}

	ref := hex.EncodeToString(hash)
	l.log.Debug().
		Str("operation", op).
		Str("tx_hash", ref).
		Dur("took", time.Since(start)).
		Msg("Ledger message confirmed")
	return Synced(ref)
}

type walletMessenger struct {
	w *wallet.Wallet
}

func (m *walletMessenger) Send(ctx context.Context, to *address.Address, amount tlb.Coins, body *cell.Cell) ([]byte, error) {
	tx, _, err := m.w.SendWaitTransaction(ctx, wallet.SimpleMessage(to, amount, body))
	if err != nil {
		return nil, err
	}
	return tx.Hash, nil
}

type apiReader struct {
	api ton.APIClientWrapped
}

func (r *apiReader) RunGetMethod(ctx context.Context, contract *address.Address, method string, params ...interface{}) (*big.Int, error) {
	block, err := r.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("get masterchain info: %w", err)
	}
	res, err := r.api.RunGetMethod(ctx, block, contract, method, params...)
	if err != nil {
		return nil, err
	}
	return res.Int(0)
}

func (r *apiReader) Ping(ctx context.Context) error {
	_, err := r.api.CurrentMasterchainInfo(ctx)
	return err
}
