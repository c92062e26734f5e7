package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Kiranppatil21/glass/internal/config"
	ledgerdomain "github.com/Kiranppatil21/glass/internal/ledger/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		&ledgerdomain.Entry{},
		&ledgerdomain.EntryLine{},
		&ledgerdomain.OutboxRow{},
	))
	// SQLite needs the exact unique indexes for ON CONFLICT targets.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_ledger_entries_ref ON ledger_entries(reference_id, entry_type)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS ux_ledger_outbox_ref ON ledger_outbox(reference_id, entry_type)")
	return db
}

func testNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func invoiceRequest() ledgerdomain.PostingRequest {
	return ledgerdomain.PostingRequest{
		EntryType:       ledgerdomain.EntryTypeSalesInvoice,
		ReferenceID:     "9001",
		ReferenceNumber: "LG2602270001",
		PartyID:         "7001",
		PartyName:       "Sharma Interiors",
		Amount:          decimal.NewFromInt(10000),
		TaxAmount:       decimal.NewFromInt(1800),
		Narration:       "Sales Order LG2602270001",
		TransactionDate: time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
	}
}

func TestPostWritesBalancedEntry(t *testing.T) {
	db := setupTestDB(t)
	poster := NewService(Params{Log: zap.NewNop(), GenID: testNode(t)})

	inserted, err := poster.Post(context.Background(), db, invoiceRequest())
	require.NoError(t, err)
	assert.True(t, inserted)

	var entry ledgerdomain.Entry
	require.NoError(t, db.First(&entry, "reference_id = ?", "9001").Error)
	assert.Equal(t, ledgerdomain.EntryTypeSalesInvoice, entry.EntryType)
	assert.Equal(t, "10000", entry.Amount.String())

	var lines []ledgerdomain.EntryLine
	require.NoError(t, db.Find(&lines, "ledger_entry_id = ?", entry.ID).Error)
	require.Len(t, lines, 3)
	assert.NoError(t, ledgerdomain.ValidateBalanced(lines))
}

func TestPostIsIdempotentPerReferenceAndType(t *testing.T) {
	db := setupTestDB(t)
	poster := NewService(Params{Log: zap.NewNop(), GenID: testNode(t)})
	ctx := context.Background()

	inserted, err := poster.Post(ctx, db, invoiceRequest())
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = poster.Post(ctx, db, invoiceRequest())
	require.NoError(t, err)
	assert.False(t, inserted)

	var entryCount, lineCount int64
	db.Model(&ledgerdomain.Entry{}).Count(&entryCount)
	db.Model(&ledgerdomain.EntryLine{}).Count(&lineCount)
	assert.Equal(t, int64(1), entryCount)
	assert.Equal(t, int64(3), lineCount)

	// Same reference with a different entry type is a distinct event.
	payment := invoiceRequest()
	payment.EntryType = ledgerdomain.EntryTypePaymentReceived
	payment.TaxAmount = decimal.Zero
	inserted, err = poster.Post(ctx, db, payment)
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestPostRejectsInvalidRequest(t *testing.T) {
	db := setupTestDB(t)
	poster := NewService(Params{Log: zap.NewNop(), GenID: testNode(t)})

	req := invoiceRequest()
	req.Amount = decimal.Zero
	_, err := poster.Post(context.Background(), db, req)
	assert.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)
}

type failingPoster struct {
	calls int
}

func (f *failingPoster) Post(ctx context.Context, db *gorm.DB, req ledgerdomain.PostingRequest) (bool, error) {
	f.calls++
	return false, errors.New("ledger unavailable")
}

func outboxConfig() config.Config {
	return config.Config{
		LedgerOutboxInterval:    time.Second,
		LedgerOutboxBatchSize:   10,
		LedgerOutboxMaxAttempts: 3,
	}
}

func TestOutboxEnqueueAndDrain(t *testing.T) {
	db := setupTestDB(t)
	node := testNode(t)
	poster := NewService(Params{Log: zap.NewNop(), GenID: node})
	outbox := NewOutbox(OutboxParams{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Cfg:    outboxConfig(),
		Poster: poster,
	})
	ctx := context.Background()

	require.NoError(t, outbox.Enqueue(ctx, nil, invoiceRequest()))
	// A client retry enqueues the same event again; it must collapse.
	require.NoError(t, outbox.Enqueue(ctx, nil, invoiceRequest()))

	var pending int64
	db.Model(&ledgerdomain.OutboxRow{}).Where("status = ?", ledgerdomain.OutboxStatusPending).Count(&pending)
	assert.Equal(t, int64(1), pending)

	posted, err := outbox.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, posted)

	var row ledgerdomain.OutboxRow
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, ledgerdomain.OutboxStatusPosted, row.Status)
	require.NotNil(t, row.PostedAt)

	var entryCount int64
	db.Model(&ledgerdomain.Entry{}).Count(&entryCount)
	assert.Equal(t, int64(1), entryCount)
}

func TestOutboxParksUnreadablePayload(t *testing.T) {
	db := setupTestDB(t)
	node := testNode(t)
	poster := NewService(Params{Log: zap.NewNop(), GenID: node})
	outbox := NewOutbox(OutboxParams{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Cfg:    outboxConfig(),
		Poster: poster,
	})
	ctx := context.Background()

	require.NoError(t, db.Create(&ledgerdomain.OutboxRow{
		ID:          node.Generate(),
		EntryType:   ledgerdomain.EntryTypeSalesInvoice,
		ReferenceID: "9001",
		Payload:     datatypes.JSON("{not json"),
		Status:      ledgerdomain.OutboxStatusPending,
		CreatedAt:   time.Now().UTC(),
	}).Error)

	// A row whose payload cannot be decoded is parked, not counted as posted.
	posted, err := outbox.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, posted)

	var row ledgerdomain.OutboxRow
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, ledgerdomain.OutboxStatusFailed, row.Status)
	assert.NotEmpty(t, row.LastError)

	var entryCount int64
	db.Model(&ledgerdomain.Entry{}).Count(&entryCount)
	assert.Equal(t, int64(0), entryCount)
}

func TestOutboxRetriesUntilMaxAttempts(t *testing.T) {
	db := setupTestDB(t)
	node := testNode(t)
	failing := &failingPoster{}
	outbox := NewOutbox(OutboxParams{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Cfg:    outboxConfig(),
		Poster: failing,
	})
	ctx := context.Background()

	require.NoError(t, outbox.Enqueue(ctx, nil, invoiceRequest()))

	for i := 0; i < 3; i++ {
		posted, err := outbox.DrainOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, posted)
	}
	assert.Equal(t, 3, failing.calls)

	var row ledgerdomain.OutboxRow
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, ledgerdomain.OutboxStatusFailed, row.Status)
	assert.Equal(t, 3, row.Attempts)
	assert.Equal(t, "ledger unavailable", row.LastError)

	// Failed rows are parked; further drains do not re-attempt them.
	_, err := outbox.DrainOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, failing.calls)
}
