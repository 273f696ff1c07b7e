package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/azamazri/roomah-sub001/model"
	userrepo "github.com/azamazri/roomah-sub001/repository/user"
	"github.com/azamazri/roomah-sub001/util/hash"
	jwtutil "github.com/azamazri/roomah-sub001/util/jwt"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrBadInput     = errors.New("bad input")
	ErrInvalidCreds = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         "user",
		PasswordHash: hashed,
	}

	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, u.Role, 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if strings.Contains(strings.ToLower(pgErr.ConstraintName), "email") ||
			strings.Contains(strings.ToLower(pgErr.Message), "email") {
			return ErrEmailTaken
		}
		return ErrBadInput
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.ur.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	token, err := jwtutil.Issue(s.secret, u.ID, u.Role, 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
