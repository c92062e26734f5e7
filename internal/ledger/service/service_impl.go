package service

import (
	"context"
	"time"

	ledgerdomain "github.com/Kiranppatil21/glass/internal/ledger/domain"
	"github.com/Kiranppatil21/glass/internal/metrics"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	metrics *metrics.Metrics
}

func NewService(p Params) ledgerdomain.Poster {
	return &Service{
		log:     p.Log.Named("ledger.service"),
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

// Post writes the balanced double entry for the request. The header insert is
// guarded by the (reference_id, entry_type) unique index, so a repeated post
// of the same event writes nothing and returns (false, nil).
func (s *Service) Post(ctx context.Context, db *gorm.DB, req ledgerdomain.PostingRequest) (bool, error) {
	lines, err := req.Lines()
	if err != nil {
		return false, err
	}

	inserted := false
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entryID := s.genID.Generate()
		now := time.Now().UTC()
		result := tx.Exec(
			`INSERT INTO ledger_entries (
				id, entry_type, reference_id, reference_number, party_id, party_name,
				amount, tax_amount, narration, transaction_date, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (reference_id, entry_type) DO NOTHING`,
			entryID,
			string(req.EntryType),
			req.ReferenceID,
			req.ReferenceNumber,
			req.PartyID,
			req.PartyName,
			req.Amount,
			req.TaxAmount,
			req.Narration,
			req.TransactionDate.UTC(),
			now,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		inserted = true

		for _, line := range lines {
			if err := tx.Exec(
				`INSERT INTO ledger_entry_lines (
					id, ledger_entry_id, account_code, direction, amount, created_at
				) VALUES (?, ?, ?, ?, ?, ?)`,
				s.genID.Generate(),
				entryID,
				string(line.AccountCode),
				string(line.Direction),
				line.Amount,
				now,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if inserted {
		s.log.Info("posted ledger entry",
			zap.String("entry_type", string(req.EntryType)),
			zap.String("reference_id", req.ReferenceID),
			zap.String("amount", req.Amount.StringFixed(2)),
		)
		if s.metrics != nil {
			s.metrics.LedgerPosted.WithLabelValues(string(req.EntryType)).Inc()
		}
	} else {
		s.log.Info("ledger entry already posted",
			zap.String("entry_type", string(req.EntryType)),
			zap.String("reference_id", req.ReferenceID),
		)
	}
	return inserted, nil
}
