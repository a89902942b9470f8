package ton

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/ton"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/logger"
)

// Client держит пул lite-серверов и API поверх него.
type Client struct {
	pool *liteclient.ConnectionPool
	API  ton.APIClientWrapped
}

// Connect поднимает пул соединений по глобальному конфигу сети.
// Lite-серверы часто недоступны при старте, поэтому подключение
// повторяется с экспоненциальной задержкой до connectTimeout.
func Connect(ctx context.Context, configURL string, connectTimeout time.Duration) (*Client, error) {
	pool := liteclient.NewConnectionPool()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = connectTimeout

	attempt := 0
	connect := func() error {
		attempt++
		dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		return pool.AddConnectionsFromConfigUrl(dialCtx, configURL)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("TON liteserver connection failed")
	}

	if err := backoff.RetryNotify(connect, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect to TON liteservers: %w", err)
	}

	api := ton.NewAPIClient(pool, ton.ProofCheckPolicyFast).WithRetry()
	logger.Info().Str("config_url", configURL).Int("attempts", attempt).Msg("TON client initialized")

	return &Client{pool: pool, API: api}, nil
}

// HealthCheck запрашивает текущий блок мастерчейна
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.API.CurrentMasterchainInfo(ctx)
	return err
}

// Close останавливает все соединения пула
func (c *Client) Close() {
	c.pool.Stop()
}
