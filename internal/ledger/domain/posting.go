package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PostingRequest is the value object the order core emits for every
// money-moving event. Amount excludes tax; TaxAmount carries the GST portion
// for sales invoices and is zero for payments.
type PostingRequest struct {
	EntryType       EntryType       `json:"entry_type"`
	ReferenceID     string          `json:"reference_id"`
	ReferenceNumber string          `json:"reference_number"`
	PartyID         string          `json:"party_id"`
	PartyName       string          `json:"party_name"`
	Amount          decimal.Decimal `json:"amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Narration       string          `json:"narration"`
	TransactionDate time.Time       `json:"transaction_date"`
}

func (r *PostingRequest) Validate() error {
	switch r.EntryType {
	case EntryTypeSalesInvoice, EntryTypePaymentReceived:
	default:
		return ErrInvalidEntryType
	}
	if strings.TrimSpace(r.ReferenceID) == "" || strings.TrimSpace(r.ReferenceNumber) == "" {
		return ErrInvalidReference
	}
	if strings.TrimSpace(r.PartyID) == "" {
		return ErrInvalidParty
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if r.TaxAmount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Lines expands the request into its balanced double entry.
//
//	sales_invoice:    Dr accounts_receivable (amount+tax)
//	                  Cr sales_revenue (amount), Cr tax_payable (tax)
//	payment_received: Dr cash_bank, Cr accounts_receivable
func (r *PostingRequest) Lines() ([]EntryLine, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var lines []EntryLine
	switch r.EntryType {
	case EntryTypeSalesInvoice:
		lines = []EntryLine{
			{AccountCode: AccountCodeAccountsReceivable, Direction: EntryDirectionDebit, Amount: r.Amount.Add(r.TaxAmount)},
			{AccountCode: AccountCodeSalesRevenue, Direction: EntryDirectionCredit, Amount: r.Amount},
		}
		if r.TaxAmount.IsPositive() {
			lines = append(lines, EntryLine{AccountCode: AccountCodeTaxPayable, Direction: EntryDirectionCredit, Amount: r.TaxAmount})
		}
	case EntryTypePaymentReceived:
		lines = []EntryLine{
			{AccountCode: AccountCodeCashBank, Direction: EntryDirectionDebit, Amount: r.Amount},
			{AccountCode: AccountCodeAccountsReceivable, Direction: EntryDirectionCredit, Amount: r.Amount},
		}
	}

	if err := ValidateBalanced(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Poster posts a request at most once per (reference_id, entry_type).
type Poster interface {
	// Post returns whether a new entry was written; an already-posted
	// reference is a successful no-op.
	Post(ctx context.Context, db *gorm.DB, req PostingRequest) (bool, error)
}

// Recorder durably queues posting requests so a ledger outage never blocks
// or rolls back an order or payment state change.
type Recorder interface {
	// Enqueue stores the request inside the caller's transaction.
	Enqueue(ctx context.Context, tx *gorm.DB, req PostingRequest) error
}
