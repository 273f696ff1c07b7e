package topuprepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/azamazri/roomah-sub001/model"
)

var ErrNotFound = errors.New("topup order not found")

type Repo interface {
	Insert(ctx context.Context, o *model.TopupOrder) error
	ByOrderID(ctx context.Context, orderID string) (*model.TopupOrder, error)
	ByOrderIDForUser(ctx context.Context, orderID string, userID int64) (*model.TopupOrder, error)

	// SetStatus writes the reconciled status. Terminal statuses are final:
	// the update only applies when the row is still PENDING or already
	// carries the same status, so replays are no-ops and a terminal state
	// is never overwritten with a different one.
	SetStatus(ctx context.Context, tx *sql.Tx, orderID string, status model.TopupStatus, paymentType *string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, o *model.TopupOrder) error {
	const q = `
INSERT INTO koin_topup_orders (order_id, user_id, coin_amount, gross_amount, status)
VALUES ($1,$2,$3,$4,'PENDING')
RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q, o.OrderID, o.UserID, o.CoinAmount, o.GrossAmount).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

const selectOrder = `
SELECT id, order_id, user_id, coin_amount, gross_amount, status, payment_type, created_at, updated_at
FROM koin_topup_orders`

func (r *repo) ByOrderID(ctx context.Context, orderID string) (*model.TopupOrder, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectOrder+` WHERE order_id=$1`, orderID))
}

func (r *repo) ByOrderIDForUser(ctx context.Context, orderID string, userID int64) (*model.TopupOrder, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectOrder+` WHERE order_id=$1 AND user_id=$2`, orderID, userID))
}

func (r *repo) scanOne(row *sql.Row) (*model.TopupOrder, error) {
	var o model.TopupOrder
	err := row.Scan(&o.ID, &o.OrderID, &o.UserID, &o.CoinAmount, &o.GrossAmount, &o.Status, &o.PaymentType, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, orderID string, status model.TopupStatus, paymentType *string) error {
	const q = `
UPDATE koin_topup_orders
SET status=$2,
    payment_type=COALESCE($3, payment_type),
    updated_at=now()
WHERE order_id=$1
  AND (status='PENDING' OR status=$2)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, q, orderID, status, paymentType)
	} else {
		_, err = r.db.ExecContext(ctx, q, orderID, status, paymentType)
	}
	return err
}
