package taarufrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/azamazri/roomah-sub001/model"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicatePending = errors.New("pending request already exists for this pair")
	ErrSessionExists    = errors.New("session already exists for this request")
)

type Repo interface {
	InsertRequest(ctx context.Context, tx *sql.Tx, fromID, toID int64) (*model.TaarufRequest, error)
	RequestByID(ctx context.Context, id int64) (*model.TaarufRequest, error)

	// MarkAccepted / MarkRejected flip a PENDING request; decided=false
	// means the request was not PENDING anymore (already handled).
	MarkAccepted(ctx context.Context, tx *sql.Tx, id int64) (decided bool, err error)
	MarkRejected(ctx context.Context, tx *sql.Tx, id int64, reason *string) (decided bool, err error)

	// ExpireStale flips PENDING requests created before the cutoff.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)

	InsertSession(ctx context.Context, tx *sql.Tx, s *model.TaarufSession) error
	SessionByID(ctx context.Context, id int64) (*model.TaarufSession, error)
	SessionByRequestID(ctx context.Context, requestID int64) (*model.TaarufSession, error)
	HasActiveSession(ctx context.Context, userID int64) (bool, error)

	SetStage(ctx context.Context, tx *sql.Tx, sessionID int64, stage model.Stage) error
	FinishSession(ctx context.Context, tx *sql.Tx, sessionID int64) error

	// NextTaarufCode picks the next TAARUF{n} by numeric suffix. Callers
	// must be prepared to retry on a unique violation at insert time.
	NextTaarufCode(ctx context.Context, tx *sql.Tx) (string, error)

	ListIncoming(ctx context.Context, userID int64) ([]model.TaarufRequest, error)
	ListSent(ctx context.Context, userID int64) ([]model.TaarufRequest, error)
	ListActiveSessions(ctx context.Context, userID int64) ([]model.TaarufSession, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) InsertRequest(ctx context.Context, tx *sql.Tx, fromID, toID int64) (*model.TaarufRequest, error) {
	const q = `
INSERT INTO taaruf_requests (from_user_id, to_user_id, status)
VALUES ($1,$2,'PENDING')
RETURNING id, created_at`
	req := &model.TaarufRequest{FromUserID: fromID, ToUserID: toID, Status: model.RequestPending}
	err := tx.QueryRowContext(ctx, q, fromID, toID).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicatePending
		}
		return nil, err
	}
	return req, nil
}

const selectRequest = `
SELECT id, from_user_id, to_user_id, status, rejection_reason, created_at, decided_at
FROM taaruf_requests`

func (r *repo) RequestByID(ctx context.Context, id int64) (*model.TaarufRequest, error) {
	row := r.db.QueryRowContext(ctx, selectRequest+` WHERE id=$1`, id)
	return scanRequest(row)
}

func scanRequest(row *sql.Row) (*model.TaarufRequest, error) {
	var req model.TaarufRequest
	err := row.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.RejectionReason, &req.CreatedAt, &req.DecidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repo) MarkAccepted(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	const q = `
UPDATE taaruf_requests
SET status='ACCEPTED', decided_at=now()
WHERE id=$1 AND status='PENDING'`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *repo) MarkRejected(ctx context.Context, tx *sql.Tx, id int64, reason *string) (bool, error) {
	const q = `
UPDATE taaruf_requests
SET status='REJECTED', decided_at=now(), rejection_reason=$2
WHERE id=$1 AND status='PENDING'`
	res, err := tx.ExecContext(ctx, q, id, reason)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *repo) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
UPDATE taaruf_requests
SET status='EXPIRED', decided_at=now()
WHERE status='PENDING' AND created_at < $1`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) InsertSession(ctx context.Context, tx *sql.Tx, s *model.TaarufSession) error {
	const q = `
INSERT INTO taaruf_sessions (request_id, taaruf_code, user_a, user_b, status, stage)
VALUES ($1,$2,$3,$4,'ACTIVE','Pengajuan')
RETURNING id, started_at`
	err := tx.QueryRowContext(ctx, q, s.RequestID, s.Code, s.UserA, s.UserB).Scan(&s.ID, &s.StartedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == "taaruf_sessions_request_id_key" {
				return ErrSessionExists
			}
			// taaruf_code collision; caller regenerates and retries
			return fmt.Errorf("taaruf code collision: %w", err)
		}
		return err
	}
	s.Status = model.SessionActive
	s.Stage = model.StagePengajuan
	return nil
}

const selectSession = `
SELECT id, request_id, taaruf_code, user_a, user_b, status, stage, started_at, ended_at
FROM taaruf_sessions`

func (r *repo) SessionByID(ctx context.Context, id int64) (*model.TaarufSession, error) {
	return scanSession(r.db.QueryRowContext(ctx, selectSession+` WHERE id=$1`, id))
}

func (r *repo) SessionByRequestID(ctx context.Context, requestID int64) (*model.TaarufSession, error) {
	return scanSession(r.db.QueryRowContext(ctx, selectSession+` WHERE request_id=$1`, requestID))
}

func scanSession(row *sql.Row) (*model.TaarufSession, error) {
	var s model.TaarufSession
	err := row.Scan(&s.ID, &s.RequestID, &s.Code, &s.UserA, &s.UserB, &s.Status, &s.Stage, &s.StartedAt, &s.EndedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) HasActiveSession(ctx context.Context, userID int64) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM taaruf_sessions
  WHERE status='ACTIVE' AND (user_a=$1 OR user_b=$1)
)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&exists)
	return exists, err
}

func (r *repo) SetStage(ctx context.Context, tx *sql.Tx, sessionID int64, stage model.Stage) error {
	const q = `UPDATE taaruf_sessions SET stage=$2 WHERE id=$1 AND status='ACTIVE'`
	res, err := tx.ExecContext(ctx, q, sessionID, stage)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) FinishSession(ctx context.Context, tx *sql.Tx, sessionID int64) error {
	const q = `
UPDATE taaruf_sessions
SET status='FINISHED', stage='Selesai', ended_at=now()
WHERE id=$1 AND status='ACTIVE'`
	res, err := tx.ExecContext(ctx, q, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) NextTaarufCode(ctx context.Context, tx *sql.Tx) (string, error) {
	const q = `
SELECT COALESCE(MAX(NULLIF(regexp_replace(taaruf_code, '\D', '', 'g'), '')::bigint), 0)
FROM taaruf_sessions
WHERE taaruf_code LIKE 'TAARUF%'`
	var maxSeq int64
	if err := tx.QueryRowContext(ctx, q).Scan(&maxSeq); err != nil {
		return "", err
	}
	return fmt.Sprintf("TAARUF%d", maxSeq+1), nil
}

func (r *repo) ListIncoming(ctx context.Context, userID int64) ([]model.TaarufRequest, error) {
	return r.listRequests(ctx, selectRequest+` WHERE to_user_id=$1 AND status='PENDING' ORDER BY created_at DESC`, userID)
}

func (r *repo) ListSent(ctx context.Context, userID int64) ([]model.TaarufRequest, error) {
	return r.listRequests(ctx, selectRequest+` WHERE from_user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *repo) listRequests(ctx context.Context, q string, userID int64) ([]model.TaarufRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TaarufRequest
	for rows.Next() {
		var req model.TaarufRequest
		if err := rows.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.RejectionReason, &req.CreatedAt, &req.DecidedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *repo) ListActiveSessions(ctx context.Context, userID int64) ([]model.TaarufSession, error) {
	rows, err := r.db.QueryContext(ctx, selectSession+` WHERE status='ACTIVE' AND (user_a=$1 OR user_b=$1) ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TaarufSession
	for rows.Next() {
		var s model.TaarufSession
		if err := rows.Scan(&s.ID, &s.RequestID, &s.Code, &s.UserA, &s.UserB, &s.Status, &s.Stage, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
