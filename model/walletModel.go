// model/wallet.go
package model

import "time"

type TopupStatus string

const (
	TopupPending TopupStatus = "PENDING"
	TopupSuccess TopupStatus = "SUCCESS"
	TopupFailed  TopupStatus = "FAILED"
)

// IsTerminal reports whether no further status writes are permitted.
func (s TopupStatus) IsTerminal() bool {
	return s == TopupSuccess || s == TopupFailed
}

// TopupOrder is a koin purchase tracked against the Midtrans order id.
type TopupOrder struct {
	ID          int64       `json:"id"`
	OrderID     string      `json:"order_id"`
	UserID      int64       `json:"user_id"`
	CoinAmount  int64       `json:"coin_amount"`
	GrossAmount int64       `json:"gross_amount"` // IDR charged via the gateway
	Status      TopupStatus `json:"status"`
	PaymentType *string     `json:"payment_type,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type LedgerDirection string

const (
	LedgerCredit LedgerDirection = "CREDIT"
	LedgerDebit  LedgerDirection = "DEBIT"
)

type LedgerReason string

const (
	ReasonTopup           LedgerReason = "TOPUP"
	ReasonTaarufFee       LedgerReason = "TAARUF_FEE"
	ReasonSocialMediaPost LedgerReason = "SOCIAL_MEDIA_POST"
	ReasonRefund          LedgerReason = "REFUND"
)

// LedgerEntry is immutable once written; the wallet balance is the signed
// sum of a user's entries, never a stored counter.
type LedgerEntry struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Direction      LedgerDirection `json:"direction"`
	Amount         int64           `json:"amount"` // koin units, always positive
	Reason         LedgerReason    `json:"reason"`
	LinkedOrderID  *string         `json:"linked_order_id,omitempty"`
	IdempotencyKey string          `json:"idempotency_key"`
	CreatedAt      time.Time       `json:"created_at"`
}
