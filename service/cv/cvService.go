package cvsvc

import (
	"context"
	"errors"
	"time"

	"github.com/azamazri/roomah-sub001/model"
	cvrepo "github.com/azamazri/roomah-sub001/repository/cv"
)

var ErrNotFound = errors.New("cv not found")

type SubmitReq struct {
	Gender     model.Gender
	BirthDate  time.Time
	Education  model.Education
	ProvinceID int64
	City       string
	Bio        string
}

type Service interface {
	// Mine returns the caller's own CV including moderation state.
	Mine(ctx context.Context, userID int64) (*model.CV, error)

	// Submit upserts the CV and moves it to REVIEW for moderation.
	Submit(ctx context.Context, userID int64, req SubmitReq) (*model.CV, error)
}

type service struct{ cv cvrepo.Repo }

func New(cv cvrepo.Repo) Service { return &service{cv: cv} }

func (s *service) Mine(ctx context.Context, userID int64) (*model.CV, error) {
	cv, err := s.cv.ByUserID(ctx, userID)
	if errors.Is(err, cvrepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return cv, err
}

func (s *service) Submit(ctx context.Context, userID int64, req SubmitReq) (*model.CV, error) {
	cv := &model.CV{
		UserID:     userID,
		Status:     model.CVReview,
		Gender:     req.Gender,
		BirthDate:  req.BirthDate,
		Education:  req.Education,
		ProvinceID: req.ProvinceID,
		City:       req.City,
		Bio:        req.Bio,
	}
	if err := s.cv.Upsert(ctx, cv); err != nil {
		return nil, err
	}
	return cv, nil
}
