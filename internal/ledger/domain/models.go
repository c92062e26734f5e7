package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// EntryDirection represents debit or credit postings.
type EntryDirection string

const (
	EntryDirectionDebit  EntryDirection = "debit"
	EntryDirectionCredit EntryDirection = "credit"
)

// EntryType identifies the business event behind a posting.
type EntryType string

const (
	EntryTypeSalesInvoice    EntryType = "sales_invoice"
	EntryTypePaymentReceived EntryType = "payment_received"
)

// AccountCode is a chart-of-accounts bucket.
type AccountCode string

const (
	// Assets
	AccountCodeAccountsReceivable AccountCode = "accounts_receivable"
	AccountCodeCashBank           AccountCode = "cash_bank"

	// Revenue
	AccountCodeSalesRevenue AccountCode = "sales_revenue"

	// Liabilities
	AccountCodeTaxPayable AccountCode = "tax_payable"
)

var (
	ErrInvalidEntryType  = errors.New("invalid_entry_type")
	ErrInvalidReference  = errors.New("invalid_ledger_reference")
	ErrInvalidParty      = errors.New("invalid_ledger_party")
	ErrInvalidAmount     = errors.New("invalid_ledger_amount")
	ErrUnbalancedEntry   = errors.New("unbalanced_ledger_entry")
	ErrInvalidEntryLines = errors.New("invalid_ledger_entry_lines")
)

// Entry is the immutable header for one financial event. The unique
// (reference_id, entry_type) pair is the idempotency key: reposting the same
// event is a no-op.
type Entry struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	EntryType       EntryType       `gorm:"type:text;not null;uniqueIndex:ux_ledger_entries_ref,priority:2" json:"entry_type"`
	ReferenceID     string          `gorm:"type:text;not null;uniqueIndex:ux_ledger_entries_ref,priority:1" json:"reference_id"`
	ReferenceNumber string          `gorm:"type:text;not null" json:"reference_number"`
	PartyID         string          `gorm:"type:text;not null;index" json:"party_id"`
	PartyName       string          `gorm:"type:text;not null" json:"party_name"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"tax_amount"`
	Narration       string          `gorm:"type:text" json:"narration"`
	TransactionDate time.Time       `gorm:"not null" json:"transaction_date"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "ledger_entries" }

// EntryLine is a double-entry posting line.
type EntryLine struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	LedgerEntryID snowflake.ID    `gorm:"not null;index" json:"ledger_entry_id"`
	AccountCode   AccountCode     `gorm:"type:text;not null;index" json:"account_code"`
	Direction     EntryDirection  `gorm:"type:text;not null" json:"direction"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (EntryLine) TableName() string { return "ledger_entry_lines" }

// ValidateBalanced rejects line sets whose debits and credits differ.
func ValidateBalanced(lines []EntryLine) error {
	if len(lines) < 2 {
		return ErrInvalidEntryLines
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for _, line := range lines {
		if line.Amount.IsNegative() {
			return ErrInvalidAmount
		}
		switch line.Direction {
		case EntryDirectionDebit:
			debit = debit.Add(line.Amount)
		case EntryDirectionCredit:
			credit = credit.Add(line.Amount)
		default:
			return ErrInvalidEntryLines
		}
	}
	if !debit.Equal(credit) {
		return ErrUnbalancedEntry
	}
	return nil
}
