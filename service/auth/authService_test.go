// service/auth/auth_service_test.go
package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/azamazri/roomah-sub001/model"
	userrepo "github.com/azamazri/roomah-sub001/repository/user"
	"github.com/azamazri/roomah-sub001/util/hash"
)

type mockRepo struct {
	createFn  func(ctx context.Context, u *model.User) error
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, userrepo.ErrNotFound
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, userrepo.ErrNotFound
	}
	return m.byIDFn(ctx, id)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()

	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {

			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	req := model.RegisterReq{
		FirstName: "Azam",
		LastName:  "Azri",
		Email:     "azam@example.com",
		Password:  "supersecret",
	}

	u, tok, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user", u.Role)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "users_email_lower_key",
			}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		FirstName: "Azam",
		Email:     "azam@example.com",
		Password:  "supersecret",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	stored := &model.User{
		ID:           7,
		Email:        "azam@example.com",
		Role:         "user",
		PasswordHash: mustHash(t, "supersecret"),
	}
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "azam@example.com", email)
			return stored, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(context.Background(), model.LoginReq{
		Email:    "azam@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, tok)
}

func TestLogin_WrongPassword(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, PasswordHash: mustHash(t, "supersecret")}, nil
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Login(context.Background(), model.LoginReq{
		Email:    "azam@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogin_UnknownEmail(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errors.New("sql: no rows in result set")
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Login(context.Background(), model.LoginReq{
		Email:    "nobody@example.com",
		Password: "supersecret",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}
