package taaruf

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/azamazri/roomah-sub001/model"
	ts "github.com/azamazri/roomah-sub001/service/taaruf"
)

// codeErr satisfies the Code() contract the controller switches on.
type codeErr ts.ErrCode

func (e codeErr) Error() string    { return string(e) }
func (e codeErr) Code() ts.ErrCode { return ts.ErrCode(e) }

type svcMock struct {
	submitFn func(ctx context.Context, fromUserID, toUserID int64) (*ts.SubmitResult, error)
}

var _ ts.Service = (*svcMock)(nil)

func (m *svcMock) Submit(ctx context.Context, fromUserID, toUserID int64) (*ts.SubmitResult, error) {
	return m.submitFn(ctx, fromUserID, toUserID)
}
func (m *svcMock) Accept(ctx context.Context, requestID, byUserID int64) (*model.TaarufSession, error) {
	return nil, nil
}
func (m *svcMock) Reject(ctx context.Context, requestID, byUserID int64, reason string) error {
	return nil
}
func (m *svcMock) AdvanceStage(ctx context.Context, sessionID int64, newStage model.Stage) (*model.TaarufSession, error) {
	return nil, nil
}
func (m *svcMock) ExpireStale(ctx context.Context) (int64, error) { return 0, nil }
func (m *svcMock) Incoming(ctx context.Context, userID int64) ([]model.TaarufRequest, error) {
	return nil, nil
}
func (m *svcMock) Sent(ctx context.Context, userID int64) ([]model.TaarufRequest, error) {
	return nil, nil
}
func (m *svcMock) Active(ctx context.Context, userID int64) ([]model.TaarufSession, error) {
	return nil, nil
}

func submitCtx(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/taaruf/requests", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", int64(1))
	return c, rec
}

func testController(svc ts.Service) *Controller {
	return &Controller{
		Svc: svc,
		V:   validator.New(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSubmit_RespondsOK(t *testing.T) {
	svc := &svcMock{submitFn: func(ctx context.Context, fromUserID, toUserID int64) (*ts.SubmitResult, error) {
		require.Equal(t, int64(1), fromUserID)
		require.Equal(t, int64(2), toUserID)
		return &ts.SubmitResult{RequestID: 42, KoinDeducted: 5}, nil
	}}
	c, rec := submitCtx(`{"to_user_id":2}`)

	require.NoError(t, testController(svc).Submit(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"request_id":42,"status":"PENDING","koin_deducted":5}`, rec.Body.String())
}

func TestSubmit_InsufficientCoins(t *testing.T) {
	svc := &svcMock{submitFn: func(ctx context.Context, fromUserID, toUserID int64) (*ts.SubmitResult, error) {
		return nil, codeErr(ts.ErrInsufficientCoins)
	}}
	c, rec := submitCtx(`{"to_user_id":2}`)

	require.NoError(t, testController(svc).Submit(c))
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestSubmit_ValidationError(t *testing.T) {
	c, rec := submitCtx(`{"to_user_id":0}`)

	require.NoError(t, testController(&svcMock{}).Submit(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
