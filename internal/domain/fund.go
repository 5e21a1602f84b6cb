package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferType distinguishes money moved into the account from money
// moved out.
type TransferType string

const (
	Deposit  TransferType = "DEPOSIT"
	Withdraw TransferType = "WITHDRAW"
)

// TransferComplete is the only status that counts towards fund totals.
const TransferComplete = "Complete"

// FundTransfer is one deposit or withdrawal from the fund history.
// Amount and fee are fixed-point integers scaled by 1e8; the raw values
// are kept so the cached history stays exact across runs.
type FundTransfer struct {
	Currency     string
	TransferType TransferType
	Status       string
	RawAmount    int64
	RawFee       int64
	CreationTime time.Time
}

// Amount returns the transferred amount in whole currency units.
func (f FundTransfer) Amount() decimal.Decimal { return FromRaw(f.RawAmount) }

// Fee returns the transfer fee in whole currency units.
func (f FundTransfer) Fee() decimal.Decimal { return FromRaw(f.RawFee) }

// Complete reports whether the transfer settled.
func (f FundTransfer) Complete() bool { return f.Status == TransferComplete }
