package adminsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/azamazri/roomah-sub001/model"
	cvrepo "github.com/azamazri/roomah-sub001/repository/cv"
)

type ErrCode string

const (
	ErrCVNotFound   ErrCode = "CV_NOT_FOUND"
	ErrNotInReview  ErrCode = "CV_NOT_IN_REVIEW"
	ErrNoGender     ErrCode = "CV_MISSING_GENDER"
	ErrNoteRequired ErrCode = "NOTE_REQUIRED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// ApproveCV approves a CV under review and assigns a candidate code in
	// the gender-coded namespace. Re-approving a CV that already carries a
	// code keeps the code (idempotent).
	ApproveCV(ctx context.Context, userID int64) (code string, err error)

	// RequestRevision flags the CV for rework; the candidate code is
	// withdrawn until re-approval.
	RequestRevision(ctx context.Context, userID int64, note string) error

	PendingCVs(ctx context.Context, limit, offset int) ([]model.CV, int64, error)
}

type service struct {
	cv cvrepo.Repo
}

func New(cv cvrepo.Repo) Service { return &service{cv: cv} }

func (s *service) ApproveCV(ctx context.Context, userID int64) (string, error) {
	cv, err := s.cv.ByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, cvrepo.ErrNotFound) {
			return "", makeErr(ErrCVNotFound)
		}
		return "", err
	}
	if cv.Status == model.CVApproved && cv.CandidateCode != nil {
		// replayed approval; keep the assigned code
		return *cv.CandidateCode, nil
	}
	if cv.Status != model.CVReview {
		return "", makeErr(ErrNotInReview)
	}
	if cv.Gender != model.GenderIkhwan && cv.Gender != model.GenderAkhwat {
		return "", makeErr(ErrNoGender)
	}

	if cv.CandidateCode != nil {
		// code survives a REVIEW round-trip only if it was never cleared
		if err := s.cv.SetApproved(ctx, userID, *cv.CandidateCode); err != nil {
			return "", err
		}
		return *cv.CandidateCode, nil
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		code, err := s.cv.NextCandidateCode(ctx, cv.Gender)
		if err != nil {
			return "", err
		}
		err = s.cv.SetApproved(ctx, userID, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, cvrepo.ErrCodeCollision) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (s *service) RequestRevision(ctx context.Context, userID int64, note string) error {
	if strings.TrimSpace(note) == "" {
		return makeErr(ErrNoteRequired)
	}
	err := s.cv.SetRevisi(ctx, userID, note)
	if errors.Is(err, cvrepo.ErrNotFound) {
		return makeErr(ErrCVNotFound)
	}
	return err
}

func (s *service) PendingCVs(ctx context.Context, limit, offset int) ([]model.CV, int64, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.cv.ListByStatus(ctx, model.CVReview, limit, offset)
}
