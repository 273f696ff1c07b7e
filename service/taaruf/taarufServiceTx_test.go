// service/taaruf/taaruf_service_tx_test.go
//
// Covers the transactional paths: the repos are mocked, so the *sql.Tx
// handed to them comes from a driver whose Begin/Commit/Rollback are
// no-ops and never reaches a database.
package taarufsvc_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azamazri/roomah-sub001/model"
	ledgerrepo "github.com/azamazri/roomah-sub001/repository/ledger"
	notificationrepo "github.com/azamazri/roomah-sub001/repository/notification"
	taarufrepo "github.com/azamazri/roomah-sub001/repository/taaruf"
	taarufsvc "github.com/azamazri/roomah-sub001/service/taaruf"
)

func noopFeed() notificationrepo.Notifier { return notificationrepo.New("") }
func expiry7d() taarufsvc.ExpiryWindow    { return taarufsvc.ExpiryWindow(7 * 24 * time.Hour) }
func discardLog() *slog.Logger            { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("no statements") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() { sql.Register("taarufsvc-stub", stubDriver{}) }

func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("taarufsvc-stub", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func oppositeGenderCVs() *cvRepoMock {
	return &cvRepoMock{byUserIDFn: func(ctx context.Context, userID int64) (*model.CV, error) {
		if userID == 1 {
			return approvedCV(1, model.GenderIkhwan), nil
		}
		return approvedCV(2, model.GenderAkhwat), nil
	}}
}

func TestSubmit_DebitsFeeWithRequest(t *testing.T) {
	tr := &taarufRepoMock{
		insertRequestFn: func(ctx context.Context, tx *sql.Tx, fromID, toID int64) (*model.TaarufRequest, error) {
			return &model.TaarufRequest{ID: 42, FromUserID: fromID, ToUserID: toID, Status: model.RequestPending}, nil
		},
	}
	var debit ledgerrepo.Entry
	lr := &ledgerRepoMock{
		balanceForUpdateFn: func(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
			return 10, nil
		},
		recordFn: func(ctx context.Context, tx *sql.Tx, e ledgerrepo.Entry) (bool, error) {
			debit = e
			return false, nil
		},
	}
	svc := taarufsvc.New(stubDB(t), tr, oppositeGenderCVs(), lr, noopFeed(), 5, expiry7d(), discardLog())

	out, err := svc.Submit(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(42), out.RequestID)
	require.Equal(t, int64(5), out.KoinDeducted)

	require.Equal(t, int64(1), debit.UserID)
	require.Equal(t, model.LedgerDebit, debit.Direction)
	require.Equal(t, int64(5), debit.Amount)
	require.Equal(t, model.ReasonTaarufFee, debit.Reason)
	require.True(t, strings.HasPrefix(debit.IdempotencyKey, "taaruf-fee-42-"))
}

func TestSubmit_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	tr := &taarufRepoMock{
		insertRequestFn: func(ctx context.Context, tx *sql.Tx, fromID, toID int64) (*model.TaarufRequest, error) {
			t.Fatal("request inserted despite insufficient balance")
			return nil, nil
		},
	}
	lr := &ledgerRepoMock{
		balanceForUpdateFn: func(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
			return 4, nil
		},
		recordFn: func(ctx context.Context, tx *sql.Tx, e ledgerrepo.Entry) (bool, error) {
			t.Fatal("ledger written despite insufficient balance")
			return false, nil
		},
	}
	svc := taarufsvc.New(stubDB(t), tr, oppositeGenderCVs(), lr, noopFeed(), 5, expiry7d(), discardLog())

	_, err := svc.Submit(context.Background(), 1, 2)
	require.Equal(t, taarufsvc.ErrInsufficientCoins, taarufsvc.Code(err))
}

func TestAccept_CreatesSession(t *testing.T) {
	tr := &taarufRepoMock{
		requestByIDFn: func(ctx context.Context, id int64) (*model.TaarufRequest, error) {
			return &model.TaarufRequest{ID: id, FromUserID: 1, ToUserID: 2, Status: model.RequestPending}, nil
		},
		markAcceptedFn: func(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
			return true, nil
		},
		nextTaarufCodeFn: func(ctx context.Context, tx *sql.Tx) (string, error) {
			return "TA-0007", nil
		},
		insertSessionFn: func(ctx context.Context, tx *sql.Tx, s *model.TaarufSession) error {
			s.ID = 77
			return nil
		},
	}
	svc := taarufsvc.New(stubDB(t), tr, &cvRepoMock{}, &ledgerRepoMock{}, noopFeed(), 5, expiry7d(), discardLog())

	session, err := svc.Accept(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Equal(t, int64(77), session.ID)
	require.Equal(t, "TA-0007", session.Code)
	require.Equal(t, int64(1), session.UserA)
	require.Equal(t, int64(2), session.UserB)
}

func TestAccept_ReplayReturnsExistingSession(t *testing.T) {
	// The update matched zero rows because the request was already
	// decided. An earlier accept must hand back that accept's session.
	existing := &model.TaarufSession{ID: 77, RequestID: 10, UserA: 1, UserB: 2, Code: "TA-0007", Status: model.SessionActive}
	calls := 0
	tr := &taarufRepoMock{
		requestByIDFn: func(ctx context.Context, id int64) (*model.TaarufRequest, error) {
			calls++
			status := model.RequestPending
			if calls > 1 {
				status = model.RequestAccepted
			}
			return &model.TaarufRequest{ID: id, FromUserID: 1, ToUserID: 2, Status: status}, nil
		},
		markAcceptedFn: func(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
			return false, nil
		},
		sessionByRequestFn: func(ctx context.Context, requestID int64) (*model.TaarufSession, error) {
			require.Equal(t, int64(10), requestID)
			return existing, nil
		},
		insertSessionFn: func(ctx context.Context, tx *sql.Tx, s *model.TaarufSession) error {
			t.Fatal("second session created for an accepted request")
			return nil
		},
	}
	svc := taarufsvc.New(stubDB(t), tr, &cvRepoMock{}, &ledgerRepoMock{}, noopFeed(), 5, expiry7d(), discardLog())

	session, err := svc.Accept(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Equal(t, existing, session)
}

func TestReject_NeverTouchesLedger(t *testing.T) {
	tr := &taarufRepoMock{
		requestByIDFn: func(ctx context.Context, id int64) (*model.TaarufRequest, error) {
			return &model.TaarufRequest{ID: id, FromUserID: 1, ToUserID: 2, Status: model.RequestPending}, nil
		},
		markRejectedFn: func(ctx context.Context, tx *sql.Tx, id int64, reason *string) (bool, error) {
			return true, nil
		},
	}
	lr := &ledgerRepoMock{recordFn: func(ctx context.Context, tx *sql.Tx, e ledgerrepo.Entry) (bool, error) {
		t.Fatal("reject produced a ledger entry")
		return false, nil
	}}
	svc := taarufsvc.New(stubDB(t), tr, &cvRepoMock{}, lr, noopFeed(), 5, expiry7d(), discardLog())

	err := svc.Reject(context.Background(), 10, 2, "tidak cocok")
	require.NoError(t, err)
}

func TestAdvanceStage_KhitbahSuppressesBoth(t *testing.T) {
	active := &model.TaarufSession{ID: 3, UserA: 1, UserB: 2, Code: "TA-0003", Status: model.SessionActive, Stage: model.StageZoom2}
	tr := &taarufRepoMock{
		sessionByIDFn: func(ctx context.Context, id int64) (*model.TaarufSession, error) {
			return active, nil
		},
		setStageFn: func(ctx context.Context, tx *sql.Tx, sessionID int64, stage model.Stage) error {
			require.Equal(t, model.StageKhitbah, stage)
			return nil
		},
	}
	var gotA, gotB int64
	var gotStatus *string
	cr := &cvRepoMock{setTaarufStatusFn: func(ctx context.Context, tx *sql.Tx, a, b int64, s *string) error {
		gotA, gotB, gotStatus = a, b, s
		return nil
	}}
	svc := taarufsvc.New(stubDB(t), tr, cr, &ledgerRepoMock{}, noopFeed(), 5, expiry7d(), discardLog())

	_, err := svc.AdvanceStage(context.Background(), 3, model.StageKhitbah)
	require.NoError(t, err)
	require.Equal(t, int64(1), gotA)
	require.Equal(t, int64(2), gotB)
	require.NotNil(t, gotStatus)
	require.Equal(t, model.TaarufDalamKhitbah, *gotStatus)
}

func TestAdvanceStage_SelesaiFinishesAndReadmits(t *testing.T) {
	active := &model.TaarufSession{ID: 3, UserA: 1, UserB: 2, Code: "TA-0003", Status: model.SessionActive, Stage: model.StageKhitbah}
	finished := false
	tr := &taarufRepoMock{
		sessionByIDFn: func(ctx context.Context, id int64) (*model.TaarufSession, error) {
			return active, nil
		},
		finishSessionFn: func(ctx context.Context, tx *sql.Tx, sessionID int64) error {
			finished = true
			return nil
		},
	}
	cleared := false
	cr := &cvRepoMock{setTaarufStatusFn: func(ctx context.Context, tx *sql.Tx, a, b int64, s *string) error {
		require.Equal(t, int64(1), a)
		require.Equal(t, int64(2), b)
		require.Nil(t, s)
		cleared = true
		return nil
	}}
	svc := taarufsvc.New(stubDB(t), tr, cr, &ledgerRepoMock{}, noopFeed(), 5, expiry7d(), discardLog())

	_, err := svc.AdvanceStage(context.Background(), 3, model.StageSelesai)
	require.NoError(t, err)
	require.True(t, finished)
	require.True(t, cleared)
}

func TestAdvanceStage_ConcurrentFinishConflicts(t *testing.T) {
	// The guarded update misses when another admin finished the session
	// between the load and the write. That is a conflict, not a 500.
	active := &model.TaarufSession{ID: 3, UserA: 1, UserB: 2, Status: model.SessionActive, Stage: model.StageZoom1}
	tr := &taarufRepoMock{
		sessionByIDFn: func(ctx context.Context, id int64) (*model.TaarufSession, error) {
			return active, nil
		},
		setStageFn: func(ctx context.Context, tx *sql.Tx, sessionID int64, stage model.Stage) error {
			return taarufrepo.ErrNotFound
		},
	}
	svc := taarufsvc.New(stubDB(t), tr, &cvRepoMock{}, &ledgerRepoMock{}, noopFeed(), 5, expiry7d(), discardLog())

	_, err := svc.AdvanceStage(context.Background(), 3, model.StageZoom2)
	require.Equal(t, taarufsvc.ErrSessionFinished, taarufsvc.Code(err))
}
