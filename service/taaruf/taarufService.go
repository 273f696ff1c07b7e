package taarufsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/azamazri/roomah-sub001/model"
	cvrepo "github.com/azamazri/roomah-sub001/repository/cv"
	ledgerrepo "github.com/azamazri/roomah-sub001/repository/ledger"
	notificationrepo "github.com/azamazri/roomah-sub001/repository/notification"
	taarufrepo "github.com/azamazri/roomah-sub001/repository/taaruf"
)

// errors used by controllers

type ErrCode string

const (
	ErrSelfRequest       ErrCode = "SELF_REQUEST"
	ErrCVNotApproved     ErrCode = "CV_NOT_APPROVED"
	ErrCandidateNotFound ErrCode = "CANDIDATE_NOT_FOUND"
	ErrSameGender        ErrCode = "SAME_GENDER"
	ErrActiveTaaruf      ErrCode = "ACTIVE_TAARUF_EXISTS"
	ErrTargetUnavailable ErrCode = "TARGET_UNAVAILABLE"
	ErrDuplicatePending  ErrCode = "DUPLICATE_PENDING_REQUEST"
	ErrInsufficientCoins ErrCode = "INSUFFICIENT_COINS"
	ErrRequestNotFound   ErrCode = "REQUEST_NOT_FOUND"
	ErrNotResponder      ErrCode = "NOT_RESPONDER"
	ErrNotPending        ErrCode = "REQUEST_NOT_PENDING"
	ErrSessionNotFound   ErrCode = "SESSION_NOT_FOUND"
	ErrInvalidStage      ErrCode = "INVALID_STAGE"
	ErrSessionFinished   ErrCode = "SESSION_FINISHED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the machine-readable error code, or "" for other errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type SubmitResult struct {
	RequestID    int64 `json:"request_id"`
	KoinDeducted int64 `json:"koin_deducted"`
}

type Service interface {
	// Submit charges the fee and creates a PENDING request atomically;
	// any guard failure aborts with no debit.
	Submit(ctx context.Context, fromUserID, toUserID int64) (*SubmitResult, error)

	// Accept flips PENDING to ACCEPTED and creates the single session for
	// the request. A replay, or the loser of a concurrent accept, gets
	// the existing session back instead of an error.
	Accept(ctx context.Context, requestID, byUserID int64) (*model.TaarufSession, error)

	// Reject records the decision. The submission fee is not refunded.
	Reject(ctx context.Context, requestID, byUserID int64, reason string) error

	// AdvanceStage is admin-driven. Khitbah suppresses both participants
	// from the directory; Selesai finishes the session and re-admits them.
	AdvanceStage(ctx context.Context, sessionID int64, newStage model.Stage) (*model.TaarufSession, error)

	// ExpireStale times out undecided requests older than the window.
	ExpireStale(ctx context.Context) (int64, error)

	Incoming(ctx context.Context, userID int64) ([]model.TaarufRequest, error)
	Sent(ctx context.Context, userID int64) ([]model.TaarufRequest, error)
	Active(ctx context.Context, userID int64) ([]model.TaarufSession, error)
}

type service struct {
	db     *sql.DB
	tr     taarufrepo.Repo
	cr     cvrepo.Repo
	lr     ledgerrepo.Repo
	nt     notificationrepo.Notifier
	fee    int64
	expiry ExpiryWindow
	log    *slog.Logger
}

func New(db *sql.DB, tr taarufrepo.Repo, cr cvrepo.Repo, lr ledgerrepo.Repo, nt notificationrepo.Notifier, fee int64, expiry ExpiryWindow, log *slog.Logger) Service {
	return &service{db: db, tr: tr, cr: cr, lr: lr, nt: nt, fee: fee, expiry: expiry, log: log}
}

func (s *service) Submit(ctx context.Context, fromUserID, toUserID int64) (res *SubmitResult, err error) {
	if fromUserID == toUserID {
		return nil, makeErr(ErrSelfRequest)
	}

	fromCV, err := s.cr.ByUserID(ctx, fromUserID)
	if err != nil {
		if errors.Is(err, cvrepo.ErrNotFound) {
			return nil, makeErr(ErrCVNotApproved)
		}
		return nil, err
	}
	if fromCV.Status != model.CVApproved {
		return nil, makeErr(ErrCVNotApproved)
	}

	toCV, err := s.cr.ByUserID(ctx, toUserID)
	if err != nil {
		if errors.Is(err, cvrepo.ErrNotFound) {
			return nil, makeErr(ErrCandidateNotFound)
		}
		return nil, err
	}
	if toCV.Status != model.CVApproved {
		return nil, makeErr(ErrCandidateNotFound)
	}
	if toCV.Gender == fromCV.Gender {
		return nil, makeErr(ErrSameGender)
	}

	if active, aerr := s.tr.HasActiveSession(ctx, fromUserID); aerr != nil {
		return nil, aerr
	} else if active {
		return nil, makeErr(ErrActiveTaaruf)
	}
	// A user in an active session cannot be targeted either.
	if active, aerr := s.tr.HasActiveSession(ctx, toUserID); aerr != nil {
		return nil, aerr
	} else if active {
		return nil, makeErr(ErrTargetUnavailable)
	}
	if toCV.TaarufStatus != nil && *toCV.TaarufStatus == model.TaarufDalamKhitbah {
		return nil, makeErr(ErrTargetUnavailable)
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

	// Re-derive the balance under the user row lock so concurrent
	// submissions cannot both pass the check.
	balance, err := s.lr.BalanceForUpdate(ctx, tx, fromUserID)
	if err != nil {
		return nil, err
	}
	if balance < s.fee {
		err = makeErr(ErrInsufficientCoins)
		return nil, err
	}

	req, err := s.tr.InsertRequest(ctx, tx, fromUserID, toUserID)
	if err != nil {
		if errors.Is(err, taarufrepo.ErrDuplicatePending) {
			err = makeErr(ErrDuplicatePending)
		}
		return nil, err
	}

	_, err = s.lr.Record(ctx, tx, ledgerrepo.Entry{
		UserID:         fromUserID,
		Direction:      model.LedgerDebit,
		Amount:         s.fee,
		Reason:         model.ReasonTaarufFee,
		IdempotencyKey: fmt.Sprintf("taaruf-fee-%d-%s", req.ID, uuid.NewString()),
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.notify(ctx, toUserID, notificationrepo.Event{
		Type:     "taaruf_request",
		Message:  "Ada pengajuan taaruf baru untuk Anda",
		TaarufID: req.ID,
	})
	return &SubmitResult{RequestID: req.ID, KoinDeducted: s.fee}, nil
}

func (s *service) Accept(ctx context.Context, requestID, byUserID int64) (*model.TaarufSession, error) {
	req, err := s.tr.RequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, taarufrepo.ErrNotFound) {
			return nil, makeErr(ErrRequestNotFound)
		}
		return nil, err
	}
	if req.ToUserID != byUserID {
		return nil, makeErr(ErrNotResponder)
	}

	session, err := s.acceptTx(ctx, req)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, req.FromUserID, notificationrepo.Event{
		Type:     "taaruf_accepted",
		Message:  fmt.Sprintf("Pengajuan taaruf Anda diterima (%s)", session.Code),
		TaarufID: session.ID,
	})
	s.notify(ctx, req.ToUserID, notificationrepo.Event{
		Type:     "taaruf_accepted",
		Message:  fmt.Sprintf("Taaruf %s dimulai", session.Code),
		TaarufID: session.ID,
	})
	return session, nil
}

func (s *service) acceptTx(ctx context.Context, req *model.TaarufRequest) (*model.TaarufSession, error) {
	// A unique-violation aborts the whole transaction, so a taaruf code
	// collision retries the transaction from scratch, not just the insert.
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		session, retry, err := s.tryAccept(ctx, req)
		if err == nil {
			return session, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) tryAccept(ctx context.Context, req *model.TaarufRequest) (session *model.TaarufSession, retry bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	decided, err := s.tr.MarkAccepted(ctx, tx, req.ID)
	if err != nil {
		return nil, false, err
	}
	if !decided {
		// Someone got there first. If it was an accept, hand back the
		// winner's session instead of erroring.
		_ = tx.Rollback()
		cur, cerr := s.tr.RequestByID(ctx, req.ID)
		if cerr != nil {
			return nil, false, cerr
		}
		if cur.Status != model.RequestAccepted {
			return nil, false, makeErr(ErrNotPending)
		}
		session, err = s.tr.SessionByRequestID(ctx, req.ID)
		return session, false, err
	}

	session = &model.TaarufSession{
		RequestID: req.ID,
		UserA:     req.FromUserID,
		UserB:     req.ToUserID,
	}
	session.Code, err = s.tr.NextTaarufCode(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	if err = s.tr.InsertSession(ctx, tx, session); err != nil {
		if errors.Is(err, taarufrepo.ErrSessionExists) {
			_ = tx.Rollback()
			session, serr := s.tr.SessionByRequestID(ctx, req.ID)
			return session, false, serr
		}
		// code collision: retry the whole transaction
		return nil, true, err
	}

	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	return session, false, nil
}

func (s *service) Reject(ctx context.Context, requestID, byUserID int64, reason string) (err error) {
	req, err := s.tr.RequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, taarufrepo.ErrNotFound) {
			return makeErr(ErrRequestNotFound)
		}
		return err
	}
	if req.ToUserID != byUserID {
		return makeErr(ErrNotResponder)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	decided, err := s.tr.MarkRejected(ctx, tx, requestID, reasonPtr)
	if err != nil {
		return err
	}
	if !decided {
		err = makeErr(ErrNotPending)
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	s.notify(ctx, req.FromUserID, notificationrepo.Event{
		Type:     "taaruf_rejected",
		Message:  "Pengajuan taaruf Anda ditolak",
		TaarufID: requestID,
	})
	return nil
}

func (s *service) AdvanceStage(ctx context.Context, sessionID int64, newStage model.Stage) (out *model.TaarufSession, err error) {
	if !model.ValidStage(newStage) {
		return nil, makeErr(ErrInvalidStage)
	}

	session, err := s.tr.SessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, taarufrepo.ErrNotFound) {
			return nil, makeErr(ErrSessionNotFound)
		}
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, makeErr(ErrSessionFinished)
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

	switch newStage {
	case model.StageSelesai:
		if err = s.tr.FinishSession(ctx, tx, sessionID); err != nil {
			err = mapFinishedRace(err)
			return nil, err
		}
		// Both participants become visible in the directory again.
		if err = s.cr.SetTaarufStatus(ctx, tx, session.UserA, session.UserB, nil); err != nil {
			return nil, err
		}
	case model.StageKhitbah:
		if err = s.tr.SetStage(ctx, tx, sessionID, newStage); err != nil {
			err = mapFinishedRace(err)
			return nil, err
		}
		status := model.TaarufDalamKhitbah
		if err = s.cr.SetTaarufStatus(ctx, tx, session.UserA, session.UserB, &status); err != nil {
			return nil, err
		}
	default:
		if err = s.tr.SetStage(ctx, tx, sessionID, newStage); err != nil {
			err = mapFinishedRace(err)
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	for _, uid := range []int64{session.UserA, session.UserB} {
		s.notify(ctx, uid, notificationrepo.Event{
			Type:     "taaruf_stage",
			Message:  fmt.Sprintf("Taaruf %s memasuki tahap %s", session.Code, newStage),
			TaarufID: session.ID,
		})
	}
	return s.tr.SessionByID(ctx, sessionID)
}

// mapFinishedRace translates a zero-row guarded update into the coded
// error. The session was active when loaded, so a miss here means a
// concurrent Selesai already closed it.
func mapFinishedRace(err error) error {
	if errors.Is(err, taarufrepo.ErrNotFound) {
		return makeErr(ErrSessionFinished)
	}
	return err
}

func (s *service) Incoming(ctx context.Context, userID int64) ([]model.TaarufRequest, error) {
	return s.tr.ListIncoming(ctx, userID)
}

func (s *service) Sent(ctx context.Context, userID int64) ([]model.TaarufRequest, error) {
	return s.tr.ListSent(ctx, userID)
}

func (s *service) Active(ctx context.Context, userID int64) ([]model.TaarufSession, error) {
	return s.tr.ListActiveSessions(ctx, userID)
}

// notify is fire-and-forget: delivery failure never fails the transition.
func (s *service) notify(ctx context.Context, userID int64, ev notificationrepo.Event) {
	if err := s.nt.Push(ctx, userID, ev); err != nil {
		s.log.Warn("notification push failed", "user_id", userID, "type", ev.Type, "err", err)
	}
}
