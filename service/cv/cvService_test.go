// service/cv/cv_service_test.go
package cvsvc_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azamazri/roomah-sub001/model"
	cvrepo "github.com/azamazri/roomah-sub001/repository/cv"
	cvsvc "github.com/azamazri/roomah-sub001/service/cv"
)

type cvRepoMock struct {
	byUserIDFn func(ctx context.Context, userID int64) (*model.CV, error)
	upsertFn   func(ctx context.Context, cv *model.CV) error
}

var _ cvrepo.Repo = (*cvRepoMock)(nil)

func (m *cvRepoMock) ByUserID(ctx context.Context, userID int64) (*model.CV, error) {
	return m.byUserIDFn(ctx, userID)
}
func (m *cvRepoMock) Upsert(ctx context.Context, cv *model.CV) error {
	return m.upsertFn(ctx, cv)
}
func (m *cvRepoMock) SetApproved(ctx context.Context, u int64, c string) error { return nil }
func (m *cvRepoMock) SetRevisi(ctx context.Context, u int64, n string) error   { return nil }
func (m *cvRepoMock) NextCandidateCode(ctx context.Context, g model.Gender) (string, error) {
	return "", nil
}
func (m *cvRepoMock) SetTaarufStatus(ctx context.Context, tx *sql.Tx, a, b int64, s *string) error {
	return nil
}
func (m *cvRepoMock) ListByStatus(ctx context.Context, s model.CVStatus, l, o int) ([]model.CV, int64, error) {
	return nil, 0, nil
}

func TestSubmit_GoesToReview(t *testing.T) {
	var saved *model.CV
	m := &cvRepoMock{upsertFn: func(ctx context.Context, cv *model.CV) error {
		saved = cv
		return nil
	}}
	s := cvsvc.New(m)

	out, err := s.Submit(context.Background(), 7, cvsvc.SubmitReq{
		Gender:     model.GenderIkhwan,
		BirthDate:  time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC),
		Education:  model.EduS1,
		ProvinceID: 31,
		City:       "Jakarta Selatan",
		Bio:        "Alhamdulillah",
	})
	require.NoError(t, err)
	require.Equal(t, model.CVReview, out.Status)
	require.NotNil(t, saved)
	require.Equal(t, int64(7), saved.UserID)
	require.Equal(t, model.CVReview, saved.Status)
}

func TestMine_NotFound(t *testing.T) {
	m := &cvRepoMock{byUserIDFn: func(ctx context.Context, userID int64) (*model.CV, error) {
		return nil, cvrepo.ErrNotFound
	}}
	s := cvsvc.New(m)

	_, err := s.Mine(context.Background(), 7)
	require.ErrorIs(t, err, cvsvc.ErrNotFound)
}
