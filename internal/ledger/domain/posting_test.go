package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest(entryType EntryType) PostingRequest {
	return PostingRequest{
		EntryType:       entryType,
		ReferenceID:     "9001",
		ReferenceNumber: "LG2602270001",
		PartyID:         "7001",
		PartyName:       "Sharma Interiors",
		Amount:          decimal.NewFromInt(10000),
		TaxAmount:       decimal.NewFromInt(1800),
		TransactionDate: time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
	}
}

func TestSalesInvoiceLines(t *testing.T) {
	req := validRequest(EntryTypeSalesInvoice)
	lines, err := req.Lines()
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, AccountCodeAccountsReceivable, lines[0].AccountCode)
	assert.Equal(t, EntryDirectionDebit, lines[0].Direction)
	assert.Equal(t, "11800", lines[0].Amount.String())

	assert.Equal(t, AccountCodeSalesRevenue, lines[1].AccountCode)
	assert.Equal(t, EntryDirectionCredit, lines[1].Direction)
	assert.Equal(t, "10000", lines[1].Amount.String())

	assert.Equal(t, AccountCodeTaxPayable, lines[2].AccountCode)
	assert.Equal(t, EntryDirectionCredit, lines[2].Direction)
	assert.Equal(t, "1800", lines[2].Amount.String())
}

func TestSalesInvoiceLinesWithoutTax(t *testing.T) {
	req := validRequest(EntryTypeSalesInvoice)
	req.TaxAmount = decimal.Zero
	lines, err := req.Lines()
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestPaymentReceivedLines(t *testing.T) {
	req := validRequest(EntryTypePaymentReceived)
	req.TaxAmount = decimal.Zero
	req.Amount = decimal.NewFromInt(5900)

	lines, err := req.Lines()
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, AccountCodeCashBank, lines[0].AccountCode)
	assert.Equal(t, EntryDirectionDebit, lines[0].Direction)
	assert.Equal(t, AccountCodeAccountsReceivable, lines[1].AccountCode)
	assert.Equal(t, EntryDirectionCredit, lines[1].Direction)
}

func TestPostingRequestValidate(t *testing.T) {
	req := validRequest(EntryTypeSalesInvoice)
	req.EntryType = "journal"
	assert.ErrorIs(t, req.Validate(), ErrInvalidEntryType)

	req = validRequest(EntryTypeSalesInvoice)
	req.ReferenceID = " "
	assert.ErrorIs(t, req.Validate(), ErrInvalidReference)

	req = validRequest(EntryTypeSalesInvoice)
	req.PartyID = ""
	assert.ErrorIs(t, req.Validate(), ErrInvalidParty)

	req = validRequest(EntryTypeSalesInvoice)
	req.Amount = decimal.Zero
	assert.ErrorIs(t, req.Validate(), ErrInvalidAmount)
}

func TestValidateBalanced(t *testing.T) {
	balanced := []EntryLine{
		{AccountCode: AccountCodeCashBank, Direction: EntryDirectionDebit, Amount: decimal.NewFromInt(100)},
		{AccountCode: AccountCodeAccountsReceivable, Direction: EntryDirectionCredit, Amount: decimal.NewFromInt(100)},
	}
	assert.NoError(t, ValidateBalanced(balanced))

	unbalanced := []EntryLine{
		{AccountCode: AccountCodeCashBank, Direction: EntryDirectionDebit, Amount: decimal.NewFromInt(100)},
		{AccountCode: AccountCodeAccountsReceivable, Direction: EntryDirectionCredit, Amount: decimal.NewFromFloat(99.99)},
	}
	assert.ErrorIs(t, ValidateBalanced(unbalanced), ErrUnbalancedEntry)

	assert.ErrorIs(t, ValidateBalanced(nil), ErrInvalidEntryLines)
	assert.ErrorIs(t, ValidateBalanced([]EntryLine{balanced[0]}), ErrInvalidEntryLines)
}
