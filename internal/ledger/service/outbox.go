package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kiranppatil21/glass/internal/config"
	ledgerdomain "github.com/Kiranppatil21/glass/internal/ledger/domain"
	"github.com/Kiranppatil21/glass/internal/metrics"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OutboxParams struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Cfg     config.Config
	Poster  ledgerdomain.Poster
	Metrics *metrics.Metrics `optional:"true"`
}

var errUnreadablePayload = errors.New("ledger_outbox_payload_unreadable")

// Outbox durably queues posting requests and drains them in the background.
type Outbox struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	poster      ledgerdomain.Poster
	metrics     *metrics.Metrics
	interval    time.Duration
	batchSize   int
	maxAttempts int

	stop chan struct{}
	done chan struct{}
}

func NewOutbox(p OutboxParams) *Outbox {
	return &Outbox{
		db:          p.DB,
		log:         p.Log.Named("ledger.outbox"),
		genID:       p.GenID,
		poster:      p.Poster,
		metrics:     p.Metrics,
		interval:    p.Cfg.LedgerOutboxInterval,
		batchSize:   p.Cfg.LedgerOutboxBatchSize,
		maxAttempts: p.Cfg.LedgerOutboxMaxAttempts,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Enqueue stores the posting request inside the caller's transaction. A
// retried enqueue for the same (reference_id, entry_type) is a no-op.
func (o *Outbox) Enqueue(ctx context.Context, tx *gorm.DB, req ledgerdomain.PostingRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if tx == nil {
		tx = o.db
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO ledger_outbox (
			id, entry_type, reference_id, payload, status, attempts, created_at
		) VALUES (?, ?, ?, ?, 'pending', 0, ?)
		ON CONFLICT (reference_id, entry_type) DO NOTHING`,
		o.genID.Generate(),
		string(req.EntryType),
		req.ReferenceID,
		payload,
		time.Now().UTC(),
	).Error
}

// DrainOnce attempts every pending row up to the batch size and returns how
// many were posted.
func (o *Outbox) DrainOnce(ctx context.Context) (int, error) {
	var rows []ledgerdomain.OutboxRow
	err := o.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", ledgerdomain.OutboxStatusPending, o.maxAttempts).
		Order("created_at asc").
		Limit(o.batchSize).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	posted := 0
	for _, row := range rows {
		if err := o.dispatch(ctx, row); err != nil {
			o.log.Warn("ledger outbox dispatch failed",
				zap.String("reference_id", row.ReferenceID),
				zap.String("entry_type", string(row.EntryType)),
				zap.Int("attempts", row.Attempts+1),
				zap.Error(err),
			)
			if o.metrics != nil {
				o.metrics.LedgerPostFailure.Inc()
			}
			continue
		}
		posted++
	}
	return posted, nil
}

func (o *Outbox) dispatch(ctx context.Context, row ledgerdomain.OutboxRow) error {
	var req ledgerdomain.PostingRequest
	if err := json.Unmarshal(row.Payload, &req); err != nil {
		// Malformed payloads can never post; park them for remediation and
		// report the row as failed, not posted.
		if markErr := o.markFailed(ctx, row, err); markErr != nil {
			return markErr
		}
		return fmt.Errorf("%w: %v", errUnreadablePayload, err)
	}

	if _, err := o.poster.Post(ctx, o.db, req); err != nil {
		attempts := row.Attempts + 1
		status := ledgerdomain.OutboxStatusPending
		if attempts >= o.maxAttempts {
			status = ledgerdomain.OutboxStatusFailed
		}
		updateErr := o.db.WithContext(ctx).Model(&ledgerdomain.OutboxRow{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"attempts":   attempts,
				"status":     status,
				"last_error": err.Error(),
			}).Error
		if updateErr != nil {
			return updateErr
		}
		return err
	}

	now := time.Now().UTC()
	return o.db.WithContext(ctx).Model(&ledgerdomain.OutboxRow{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"status":     ledgerdomain.OutboxStatusPosted,
			"attempts":   row.Attempts + 1,
			"last_error": "",
			"posted_at":  now,
		}).Error
}

func (o *Outbox) markFailed(ctx context.Context, row ledgerdomain.OutboxRow, cause error) error {
	return o.db.WithContext(ctx).Model(&ledgerdomain.OutboxRow{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"status":     ledgerdomain.OutboxStatusFailed,
			"attempts":   row.Attempts + 1,
			"last_error": cause.Error(),
		}).Error
}

func (o *Outbox) run() {
	defer close(o.done)
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-o.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), o.interval)
			if _, err := o.DrainOnce(ctx); err != nil {
				o.log.Warn("ledger outbox drain failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// RegisterHooks starts the background drain loop with the fx lifecycle.
func RegisterHooks(lc fx.Lifecycle, o *Outbox) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go o.run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(o.stop)
			select {
			case <-o.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
