package credit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrLimitExceeded = errors.New("credit_limit_exceeded")

// OutstandingQuerier reports a customer's unsettled exposure: the sum of
// remaining_amount over orders whose payment is not completed. The order
// repository implements this.
type OutstandingQuerier interface {
	OutstandingAmount(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (decimal.Decimal, error)
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Querier OutstandingQuerier
}

// Guard enforces per-customer credit limits. The check and the order insert
// that follows it race against concurrent orders for the same customer, so
// callers must hold Acquire(profileID) across both.
type Guard struct {
	db      *gorm.DB
	log     *zap.Logger
	querier OutstandingQuerier

	mu    sync.Mutex
	locks map[snowflake.ID]*profileLock
}

// profileLock carries a holder count so idle entries can be evicted instead
// of accumulating one mutex per customer ever seen.
type profileLock struct {
	mu   sync.Mutex
	refs int
}

func NewGuard(p Params) *Guard {
	return &Guard{
		db:      p.DB,
		log:     p.Log.Named("credit.guard"),
		querier: p.Querier,
		locks:   make(map[snowflake.ID]*profileLock),
	}
}

// Acquire serializes the check-then-insert region for one customer. The
// returned function releases the region and drops the entry once nobody
// holds or awaits it.
func (g *Guard) Acquire(profileID snowflake.ID) func() {
	g.mu.Lock()
	lock, ok := g.locks[profileID]
	if !ok {
		lock = &profileLock{}
		g.locks[profileID] = lock
	}
	lock.refs++
	g.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		g.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(g.locks, profileID)
		}
		g.mu.Unlock()
	}
}

// Check rejects the order when current outstanding plus the new total would
// breach the customer's limit. Exactly reaching the limit is allowed.
func (g *Guard) Check(ctx context.Context, profileID snowflake.ID, orderTotal, creditLimit decimal.Decimal) error {
	outstanding, err := g.querier.OutstandingAmount(ctx, g.db, profileID)
	if err != nil {
		return err
	}
	if outstanding.Add(orderTotal).GreaterThan(creditLimit) {
		return fmt.Errorf("%w: outstanding %s + order %s exceeds limit %s",
			ErrLimitExceeded,
			outstanding.StringFixed(2),
			orderTotal.StringFixed(2),
			creditLimit.StringFixed(2),
		)
	}
	return nil
}

var Module = fx.Module("credit.guard",
	fx.Provide(NewGuard),
)
