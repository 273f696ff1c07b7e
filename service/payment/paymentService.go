package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/azamazri/roomah-sub001/model"
	ledgerrepo "github.com/azamazri/roomah-sub001/repository/ledger"
	midtransrepo "github.com/azamazri/roomah-sub001/repository/midtrans"
	topuprepo "github.com/azamazri/roomah-sub001/repository/topup"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrBadSignature  = errors.New("invalid webhook signature")
	// ErrGateway marks transient gateway failures; the order stays PENDING
	// and the caller may retry.
	ErrGateway = errors.New("payment gateway unavailable")
)

// WebhookPayload is the Midtrans HTTP notification body.
type WebhookPayload struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}

type Result struct {
	FinalStatus model.TopupStatus `json:"status"`
	Credited    bool              `json:"credited"`
}

type Service interface {
	// HandleWebhook verifies the gateway signature, then reconciles.
	HandleWebhook(ctx context.Context, p WebhookPayload) (*Result, error)

	// Confirm is the authenticated poll fallback: it loads the caller's
	// own order and re-derives status from the gateway's status API.
	Confirm(ctx context.Context, userID int64, orderID string) (*Result, error)
}

type service struct {
	db  *sql.DB
	mt  midtransrepo.Repo
	tr  topuprepo.Repo
	lr  ledgerrepo.Repo
	log *slog.Logger
}

func New(db *sql.DB, mt midtransrepo.Repo, tr topuprepo.Repo, lr ledgerrepo.Repo, log *slog.Logger) Service {
	return &service{db: db, mt: mt, tr: tr, lr: lr, log: log}
}

// mapStatus reproduces the gateway's status mapping exactly:
// capture+accept and settlement credit; cancel/deny/expire fail;
// anything else (pending included) stays PENDING without credit.
func mapStatus(transactionStatus, fraudStatus string) (model.TopupStatus, bool) {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return model.TopupSuccess, true
		}
		return model.TopupPending, false
	case "settlement":
		return model.TopupSuccess, true
	case "cancel", "deny", "expire":
		return model.TopupFailed, false
	default:
		return model.TopupPending, false
	}
}

func (s *service) HandleWebhook(ctx context.Context, p WebhookPayload) (*Result, error) {
	if !s.mt.VerifySignature(p.OrderID, p.StatusCode, p.GrossAmount, p.SignatureKey) {
		s.log.Warn("webhook signature mismatch", "order_id", p.OrderID)
		return nil, ErrBadSignature
	}

	var paymentType *string
	if p.PaymentType != "" {
		paymentType = &p.PaymentType
	}
	return s.reconcile(ctx, p.OrderID, p.TransactionStatus, p.FraudStatus, paymentType)
}

func (s *service) Confirm(ctx context.Context, userID int64, orderID string) (*Result, error) {
	// Scoped to the caller's own order; status is never taken from the
	// client, always from the gateway.
	if _, err := s.tr.ByOrderIDForUser(ctx, orderID, userID); err != nil {
		if errors.Is(err, topuprepo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	st, err := s.mt.GetTransactionStatus(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	var paymentType *string
	if st.PaymentType != "" {
		paymentType = &st.PaymentType
	}
	return s.reconcile(ctx, orderID, st.TransactionStatus, st.FraudStatus, paymentType)
}

func (s *service) reconcile(ctx context.Context, orderID, transactionStatus, fraudStatus string, paymentType *string) (res *Result, err error) {
	order, err := s.tr.ByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, topuprepo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	finalStatus, shouldCredit := mapStatus(transactionStatus, fraudStatus)

	// The first terminal state wins. A late notification that disagrees
	// (e.g. settlement after expire) must not move the order or touch
	// the wallet.
	if order.Status.IsTerminal() && order.Status != finalStatus {
		s.log.Warn("conflicting terminal notification ignored",
			"order_id", orderID, "have", order.Status, "got", finalStatus)
		return &Result{FinalStatus: order.Status, Credited: false}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.tr.SetStatus(ctx, tx, orderID, finalStatus, paymentType); err != nil {
		return nil, err
	}

	credited := false
	if shouldCredit {
		// The unique idempotency key, not this code path, is what makes
		// webhook+poll double delivery safe.
		key := fmt.Sprintf("topup-%s", orderID)
		alreadyExisted, rerr := s.lr.Record(ctx, tx, ledgerrepo.Entry{
			UserID:         order.UserID,
			Direction:      model.LedgerCredit,
			Amount:         order.CoinAmount,
			Reason:         model.ReasonTopup,
			LinkedOrderID:  &orderID,
			IdempotencyKey: key,
		})
		if rerr != nil {
			err = rerr
			return nil, err
		}
		credited = !alreadyExisted
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if credited {
		s.log.Info("topup credited", "order_id", orderID, "user_id", order.UserID, "coins", order.CoinAmount)
	}
	return &Result{FinalStatus: finalStatus, Credited: credited}, nil
}
