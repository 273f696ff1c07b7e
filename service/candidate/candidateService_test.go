// service/candidate/candidate_service_test.go
package candidatesvc_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azamazri/roomah-sub001/model"
	candidaterepo "github.com/azamazri/roomah-sub001/repository/candidate"
	cvrepo "github.com/azamazri/roomah-sub001/repository/cv"
	candidatesvc "github.com/azamazri/roomah-sub001/service/candidate"
)

type candRepoMock struct {
	searchFn   func(ctx context.Context, f candidaterepo.Filters, excludeUserID int64, limit, offset int) ([]candidaterepo.Row, int64, error)
	byUserIDFn func(ctx context.Context, userID int64) (*candidaterepo.Row, error)
}

var _ candidaterepo.Repo = (*candRepoMock)(nil)

func (m *candRepoMock) Search(ctx context.Context, f candidaterepo.Filters, excludeUserID int64, limit, offset int) ([]candidaterepo.Row, int64, error) {
	return m.searchFn(ctx, f, excludeUserID, limit, offset)
}
func (m *candRepoMock) ByUserID(ctx context.Context, userID int64) (*candidaterepo.Row, error) {
	return m.byUserIDFn(ctx, userID)
}

type cvRepoMock struct {
	byUserIDFn func(ctx context.Context, userID int64) (*model.CV, error)
}

var _ cvrepo.Repo = (*cvRepoMock)(nil)

func (m *cvRepoMock) ByUserID(ctx context.Context, userID int64) (*model.CV, error) {
	if m.byUserIDFn == nil {
		return nil, cvrepo.ErrNotFound
	}
	return m.byUserIDFn(ctx, userID)
}
func (m *cvRepoMock) Upsert(ctx context.Context, cv *model.CV) error           { return nil }
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

func TestSearch_ForcesOppositeGenderForApprovedCaller(t *testing.T) {
	var got candidaterepo.Filters
	cand := &candRepoMock{searchFn: func(ctx context.Context, f candidaterepo.Filters, excludeUserID int64, limit, offset int) ([]candidaterepo.Row, int64, error) {
		got = f
		require.Equal(t, int64(1), excludeUserID)
		return nil, 0, nil
	}}
	cv := &cvRepoMock{byUserIDFn: func(ctx context.Context, userID int64) (*model.CV, error) {
		return &model.CV{UserID: userID, Status: model.CVApproved, Gender: model.GenderIkhwan}, nil
	}}
	s := candidatesvc.New(cand, cv)

	// the caller asks for his own gender; the service overrides it
	same := model.GenderIkhwan
	res, err := s.Search(context.Background(), 1, candidatesvc.SearchReq{Gender: &same})
	require.NoError(t, err)
	require.True(t, res.GenderLocked)
	require.NotNil(t, got.Gender)
	require.Equal(t, model.GenderAkhwat, *got.Gender)
}

func TestSearch_KeepsRequestedFilterForUnapprovedCaller(t *testing.T) {
	var got candidaterepo.Filters
	cand := &candRepoMock{searchFn: func(ctx context.Context, f candidaterepo.Filters, excludeUserID int64, limit, offset int) ([]candidaterepo.Row, int64, error) {
		got = f
		return nil, 0, nil
	}}
	s := candidatesvc.New(cand, &cvRepoMock{})

	g := model.GenderAkhwat
	res, err := s.Search(context.Background(), 1, candidatesvc.SearchReq{Gender: &g})
	require.NoError(t, err)
	require.False(t, res.GenderLocked)
	require.NotNil(t, got.Gender)
	require.Equal(t, model.GenderAkhwat, *got.Gender)
}

func TestSearch_PaginationDefaultsAndCap(t *testing.T) {
	var gotLimit, gotOffset int
	cand := &candRepoMock{searchFn: func(ctx context.Context, f candidaterepo.Filters, excludeUserID int64, limit, offset int) ([]candidaterepo.Row, int64, error) {
		gotLimit, gotOffset = limit, offset
		return nil, 42, nil
	}}
	s := candidatesvc.New(cand, &cvRepoMock{})

	res, err := s.Search(context.Background(), 1, candidatesvc.SearchReq{})
	require.NoError(t, err)
	require.Equal(t, 12, gotLimit)
	require.Equal(t, 0, gotOffset)
	require.Equal(t, 1, res.Page)
	require.Equal(t, int64(42), res.Total)

	_, err = s.Search(context.Background(), 1, candidatesvc.SearchReq{Page: 3, PageSize: 999})
	require.NoError(t, err)
	require.Equal(t, 50, gotLimit)
	require.Equal(t, 100, gotOffset)
}

func TestDetail_ExcludesSelf(t *testing.T) {
	s := candidatesvc.New(&candRepoMock{}, &cvRepoMock{})
	_, err := s.Detail(context.Background(), 7, 7)
	require.ErrorIs(t, err, candidatesvc.ErrNotFound)
}

func TestDetail_NotFound(t *testing.T) {
	cand := &candRepoMock{byUserIDFn: func(ctx context.Context, userID int64) (*candidaterepo.Row, error) {
		return nil, candidaterepo.ErrNotFound
	}}
	s := candidatesvc.New(cand, &cvRepoMock{})

	_, err := s.Detail(context.Background(), 1, 2)
	require.ErrorIs(t, err, candidatesvc.ErrNotFound)
}
