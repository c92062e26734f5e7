package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Kiranppatil21/glass/internal/order/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.Order{},
		&domain.CashPayment{},
		&domain.OrderCounter{},
	))
	return db
}

var seedNode = func() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}()

func seedOrder(t *testing.T, db *gorm.DB, mutate func(*domain.Order)) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:              seedNode.Generate(),
		OrderNumber:     fmt.Sprintf("LG26022799%02d", time.Now().UnixNano()%100),
		UserID:          snowflake.ID(42),
		CustomerName:    "Sharma Interiors",
		CustomerPhone:   "9876543210",
		GlassItems:      []domain.GlassItem{},
		Subtotal:        decimal.NewFromInt(10000),
		TaxRate:         decimal.NewFromFloat(0.18),
		TaxAmount:       decimal.NewFromInt(1800),
		TotalPrice:      decimal.NewFromInt(11800),
		AdvancePercent:  50,
		AdvanceAmount:   decimal.NewFromInt(5900),
		RemainingAmount: decimal.NewFromInt(5900),
		PaymentStatus:   domain.PaymentStatusPending,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestInsertRejectsDuplicateOrderNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()
	ctx := context.Background()

	first := seedOrder(t, db, func(o *domain.Order) { o.OrderNumber = "LG2602270042" })

	dupe := *first
	dupe.ID = seedNode.Generate()
	err := repo.Insert(ctx, db, &dupe)
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)
}

func TestNextOrderNumberSequencesPerDay(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()
	ctx := context.Background()
	day := time.Date(2026, 2, 27, 15, 30, 0, 0, time.UTC)

	first, err := repo.NextOrderNumber(ctx, db, "LG", day)
	require.NoError(t, err)
	assert.Equal(t, "LG2602270001", first)

	second, err := repo.NextOrderNumber(ctx, db, "LG", day)
	require.NoError(t, err)
	assert.Equal(t, "LG2602270002", second)

	// A new day restarts the sequence.
	next, err := repo.NextOrderNumber(ctx, db, "LG", day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "LG2602280001", next)
}

func TestNextOrderNumberConcurrentAssignment(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()
	ctx := context.Background()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{}, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := repo.NextOrderNumber(ctx, db, "LG", day)
			assert.NoError(t, err)
			mu.Lock()
			numbers[number] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, workers)
	for number := range numbers {
		assert.Len(t, number, len("LG2602270001"))
	}
}

func TestClaimPaymentLegWinsOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()
	ctx := context.Background()
	order := seedOrder(t, db, nil)

	paidAt := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)
	claimed, err := repo.ClaimPaymentLeg(ctx, db, order.ID, domain.LegAdvance, map[string]any{
		"razorpay_payment_id": "pay_adv_001",
		"advance_paid_at":     paidAt,
		"payment_status":      string(domain.PaymentStatusPartial),
	})
	require.NoError(t, err)
	assert.True(t, claimed)

	// The settled leg refuses a second write; the recorded id survives.
	claimed, err = repo.ClaimPaymentLeg(ctx, db, order.ID, domain.LegAdvance, map[string]any{
		"razorpay_payment_id": "pay_adv_999",
	})
	require.NoError(t, err)
	assert.False(t, claimed)

	stored, err := repo.FindByID(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay_adv_001", stored.RazorpayPaymentID)

	// The other leg is still open.
	claimed, err = repo.ClaimPaymentLeg(ctx, db, order.ID, domain.LegRemaining, map[string]any{
		"remaining_razorpay_payment_id": "pay_rem_001",
		"remaining_paid_at":             paidAt,
	})
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaimPaymentLegRejectsUnknownLeg(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()
	order := seedOrder(t, db, nil)

	_, err := repo.ClaimPaymentLeg(context.Background(), db, order.ID, domain.Leg("refund"), map[string]any{})
	assert.ErrorIs(t, err, domain.ErrInvalidLeg)
}

func TestOutstandingAmountSkipsCompletedOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := Provide()
	ctx := context.Background()

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	profileID := node.Generate()

	seedOrder(t, db, func(o *domain.Order) {
		o.OrderNumber = "LG2602270101"
		o.CustomerProfileID = &profileID
		o.RemainingAmount = decimal.NewFromInt(5900)
	})
	seedOrder(t, db, func(o *domain.Order) {
		o.OrderNumber = "LG2602270102"
		o.CustomerProfileID = &profileID
		o.RemainingAmount = decimal.NewFromFloat(100.50)
		o.PaymentStatus = domain.PaymentStatusPartial
	})
	seedOrder(t, db, func(o *domain.Order) {
		o.OrderNumber = "LG2602270103"
		o.CustomerProfileID = &profileID
		o.RemainingAmount = decimal.Zero
		o.PaymentStatus = domain.PaymentStatusCompleted
	})

	outstanding, err := repo.OutstandingAmount(ctx, db, profileID)
	require.NoError(t, err)
	assert.Equal(t, "6000.5", outstanding.String())

	// A profile with no orders owes nothing.
	outstanding, err = repo.OutstandingAmount(ctx, db, node.Generate())
	require.NoError(t, err)
	assert.True(t, outstanding.IsZero())
}
