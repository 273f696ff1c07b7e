package midtransrepo

import "context"

type SnapReq struct {
	OrderID     string
	GrossAmount int64
	FirstName   string
	Email       string
}

type SnapResp struct {
	Token       string
	RedirectURL string
}

// TransactionStatus is the gateway's authoritative view of an order.
type TransactionStatus struct {
	OrderID           string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
}

type Repo interface {
	CreateSnapTransaction(ctx context.Context, req SnapReq) (*SnapResp, error)

	// GetTransactionStatus re-derives the order status from the gateway's
	// status API. Used by the confirm poll path, which must never trust
	// caller-supplied status.
	GetTransactionStatus(ctx context.Context, orderID string) (*TransactionStatus, error)

	// VerifySignature checks the webhook signature:
	// SHA-512(orderID + statusCode + grossAmount + serverKey).
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
}
