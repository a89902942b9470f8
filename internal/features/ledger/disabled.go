package ledger

import "context"

// Disabled is used when LEDGER_ENABLED=false.
type Disabled struct{}

func (Disabled) PublishUserStats(context.Context, UserStats) Result { return Failed(ErrDisabled) }

func (Disabled) MintBadge(context.Context, string, uint8, int) Result { return Failed(ErrDisabled) }

func (Disabled) LevelUpBadge(context.Context, string, uint8) Result { return Failed(ErrDisabled) }

func (Disabled) UserRank(context.Context, string) (int, error) { return 0, ErrDisabled }

func (Disabled) Status(context.Context) Status { return Status{Enabled: false} }
