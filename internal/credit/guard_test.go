package credit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedQuerier struct {
	outstanding decimal.Decimal
}

func (q fixedQuerier) OutstandingAmount(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (decimal.Decimal, error) {
	return q.outstanding, nil
}

func newGuard(outstanding string) *Guard {
	return NewGuard(Params{
		Log:     zap.NewNop(),
		Querier: fixedQuerier{outstanding: decimal.RequireFromString(outstanding)},
	})
}

func TestCheckAllowsExactlyReachingLimit(t *testing.T) {
	guard := newGuard("94000.00")
	err := guard.Check(context.Background(), snowflake.ID(1),
		decimal.RequireFromString("6000.00"),
		decimal.RequireFromString("100000.00"))
	assert.NoError(t, err)
}

func TestCheckRejectsOnePaisaOverLimit(t *testing.T) {
	guard := newGuard("94000.01")
	err := guard.Check(context.Background(), snowflake.ID(1),
		decimal.RequireFromString("6000.00"),
		decimal.RequireFromString("100000.00"))
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestAcquireSerializesPerProfile(t *testing.T) {
	guard := newGuard("0")
	profileID := snowflake.ID(7)

	release := guard.Acquire(profileID)

	entered := make(chan struct{})
	go func() {
		releaseSecond := guard.Acquire(profileID)
		close(entered)
		releaseSecond()
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-entered:
		t.Fatal("second acquire entered while the region was held")
	default:
	}

	release()
	<-entered
}

func TestAcquireEvictsIdleLocks(t *testing.T) {
	guard := newGuard("0")

	const customers = 50
	var wg sync.WaitGroup
	for i := 1; i <= customers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			release := guard.Acquire(snowflake.ID(id))
			release()
		}(int64(i))
	}
	wg.Wait()

	guard.mu.Lock()
	defer guard.mu.Unlock()
	require.Empty(t, guard.locks)
}
