package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Kiranppatil21/glass/internal/order/domain"
	pkgdb "github.com/Kiranppatil21/glass/pkg/db"
	"github.com/Kiranppatil21/glass/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct {
	// counterMu serializes in-process order-number assignment per day; the
	// counter upsert below serializes across processes.
	counterMu sync.Mutex
}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	err := db.WithContext(ctx).Create(order).Error
	if pkgdb.IsDuplicateKeyErr(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateOrderNumber, order.OrderNumber)
	}
	return err
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindByRef(ctx context.Context, db *gorm.DB, ref string) (*domain.Order, error) {
	var order domain.Order
	stmt := db.WithContext(ctx)
	if id, err := snowflake.ParseString(ref); err == nil {
		stmt = stmt.Where("id = ? OR order_number = ?", id, ref)
	} else {
		stmt = stmt.Where("order_number = ?", ref)
	}
	err := stmt.First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]domain.Order, error) {
	var orders []domain.Order
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	return db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) ClaimPaymentLeg(ctx context.Context, db *gorm.DB, id snowflake.ID, leg domain.Leg, fields map[string]any) (bool, error) {
	var paymentIDCol, paidAtCol string
	switch leg {
	case domain.LegAdvance:
		paymentIDCol, paidAtCol = "razorpay_payment_id", "advance_paid_at"
	case domain.LegRemaining:
		paymentIDCol, paidAtCol = "remaining_razorpay_payment_id", "remaining_paid_at"
	default:
		return false, domain.ErrInvalidLeg
	}

	fields["updated_at"] = time.Now().UTC()
	result := db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Where(fmt.Sprintf("(%s IS NULL OR %s = '') AND %s IS NULL", paymentIDCol, paymentIDCol, paidAtCol)).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) OutstandingAmount(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (decimal.Decimal, error) {
	var raw *string
	err := db.WithContext(ctx).Raw(
		`SELECT SUM(remaining_amount)
		 FROM orders
		 WHERE customer_profile_id = ? AND payment_status <> ?`,
		profileID,
		string(domain.PaymentStatusCompleted),
	).Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *repo) NextOrderNumber(ctx context.Context, db *gorm.DB, prefix string, day time.Time) (string, error) {
	dayPrefix := prefix + day.UTC().Format("060102")

	r.counterMu.Lock()
	defer r.counterMu.Unlock()

	var seq int64
	err := db.WithContext(ctx).Raw(
		`INSERT INTO order_counters (day_prefix, seq) VALUES (?, 1)
		 ON CONFLICT (day_prefix) DO UPDATE SET seq = order_counters.seq + 1
		 RETURNING seq`,
		dayPrefix,
	).Scan(&seq).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", dayPrefix, seq), nil
}

func (r *repo) RecordCashPayment(ctx context.Context, db *gorm.DB, payment *domain.CashPayment) error {
	return db.WithContext(ctx).Create(payment).Error
}
