package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/azamazri/roomah-sub001/model"
)

type Entry struct {
	UserID         int64
	Direction      model.LedgerDirection
	Amount         int64
	Reason         model.LedgerReason
	LinkedOrderID  *string
	IdempotencyKey string
}

type Repo interface {
	// Record appends an entry unless its idempotency key already exists.
	// alreadyExisted=true means the call was a replay and nothing was written.
	Record(ctx context.Context, tx *sql.Tx, e Entry) (alreadyExisted bool, err error)

	// Balance is the signed sum of all entries for the user.
	Balance(ctx context.Context, userID int64) (int64, error)

	// BalanceForUpdate derives the balance inside tx while holding the
	// user's row lock, so concurrent debits serialize.
	BalanceForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)

	List(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Record(ctx context.Context, tx *sql.Tx, e Entry) (bool, error) {
	const q = `
INSERT INTO wallet_transactions (user_id, direction, amount, reason, linked_order_id, idempotency_key)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (idempotency_key) DO NOTHING`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, q, e.UserID, e.Direction, e.Amount, e.Reason, e.LinkedOrderID, e.IdempotencyKey)
	} else {
		res, err = r.db.ExecContext(ctx, q, e.UserID, e.Direction, e.Amount, e.Reason, e.LinkedOrderID, e.IdempotencyKey)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

const balanceQuery = `
SELECT COALESCE(SUM(CASE WHEN direction='CREDIT' THEN amount ELSE -amount END), 0)
FROM wallet_transactions
WHERE user_id=$1`

func (r *repo) Balance(ctx context.Context, userID int64) (int64, error) {
	var bal int64
	err := r.db.QueryRowContext(ctx, balanceQuery, userID).Scan(&bal)
	return bal, err
}

func (r *repo) BalanceForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	// Lock the user row first; summing entries alone takes no lock.
	var dummy int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&dummy); err != nil {
		return 0, err
	}
	var bal int64
	err := tx.QueryRowContext(ctx, balanceQuery, userID).Scan(&bal)
	return bal, err
}

func (r *repo) List(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	const q = `
SELECT id, user_id, direction, amount, reason, linked_order_id, idempotency_key, created_at
FROM wallet_transactions
WHERE user_id=$1
ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Direction, &e.Amount, &e.Reason, &e.LinkedOrderID, &e.IdempotencyKey, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
