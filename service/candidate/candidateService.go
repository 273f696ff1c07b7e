package candidatesvc

import (
	"context"
	"errors"

	"github.com/azamazri/roomah-sub001/model"
	candidaterepo "github.com/azamazri/roomah-sub001/repository/candidate"
	cvrepo "github.com/azamazri/roomah-sub001/repository/cv"
)

var ErrNotFound = errors.New("candidate not found")

const (
	defaultPageSize = 12
	maxPageSize     = 50
)

type SearchReq struct {
	Gender     *model.Gender
	AgeMin     *int
	AgeMax     *int
	Education  *model.Education
	ProvinceID *int64
	Page       int
	PageSize   int
}

type SearchResult struct {
	Items []candidaterepo.Row `json:"items"`
	Page  int                 `json:"page"`
	Size  int                 `json:"page_size"`
	Total int64               `json:"total"`
	// GenderLocked is set when the caller's approved CV forces the gender
	// filter to the opposite of their own; the UI hides the selector.
	GenderLocked bool `json:"gender_locked"`
}

type Service interface {
	Search(ctx context.Context, userID int64, req SearchReq) (*SearchResult, error)
	Detail(ctx context.Context, userID, candidateID int64) (*candidaterepo.Row, error)
}

type service struct {
	cand candidaterepo.Repo
	cv   cvrepo.Repo
}

func New(cand candidaterepo.Repo, cv cvrepo.Repo) Service {
	return &service{cand: cand, cv: cv}
}

func (s *service) Search(ctx context.Context, userID int64, req SearchReq) (*SearchResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filters := candidaterepo.Filters{
		Gender:     req.Gender,
		AgeMin:     req.AgeMin,
		AgeMax:     req.AgeMax,
		Education:  req.Education,
		ProvinceID: req.ProvinceID,
	}

	// Approved users only see prospective opposite-gender matches; their
	// gender filter is forced regardless of what they asked for.
	genderLocked := false
	own, err := s.cv.ByUserID(ctx, userID)
	if err != nil && !errors.Is(err, cvrepo.ErrNotFound) {
		return nil, err
	}
	if own != nil && own.Status == model.CVApproved {
		opposite := own.Gender.Opposite()
		filters.Gender = &opposite
		genderLocked = true
	}

	items, total, err := s.cand.Search(ctx, filters, userID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Items: items, Page: page, Size: size, Total: total, GenderLocked: genderLocked}, nil
}

func (s *service) Detail(ctx context.Context, userID, candidateID int64) (*candidaterepo.Row, error) {
	if userID == candidateID {
		return nil, ErrNotFound
	}
	row, err := s.cand.ByUserID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, candidaterepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row, nil
}
