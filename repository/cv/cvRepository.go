package cvrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/azamazri/roomah-sub001/model"
)

var (
	ErrNotFound      = errors.New("cv not found")
	ErrCodeCollision = errors.New("candidate code collision")
)

type Repo interface {
	ByUserID(ctx context.Context, userID int64) (*model.CV, error)
	Upsert(ctx context.Context, cv *model.CV) error

	// SetApproved assigns the code and flips status to APPROVED in one
	// guarded write. A unique violation on candidate_code surfaces as
	// ErrCodeCollision so the caller can regenerate and retry.
	SetApproved(ctx context.Context, userID int64, code string) error
	SetRevisi(ctx context.Context, userID int64, note string) error

	// NextCandidateCode computes {prefix}{maxNumericSuffix+1} for the
	// gender-coded namespace (IKHWAN.../AKHWAT...).
	NextCandidateCode(ctx context.Context, gender model.Gender) (string, error)

	// SetTaarufStatus writes the suppression flag for both participants
	// of a session; pass nil to clear it.
	SetTaarufStatus(ctx context.Context, tx *sql.Tx, userA, userB int64, status *string) error

	ListByStatus(ctx context.Context, status model.CVStatus, limit, offset int) ([]model.CV, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const selectCV = `
SELECT user_id, status, candidate_code, gender, birth_date, education, province_id, city, bio, revision_note, taaruf_status, updated_at
FROM cv_data`

func (r *repo) ByUserID(ctx context.Context, userID int64) (*model.CV, error) {
	row := r.db.QueryRowContext(ctx, selectCV+` WHERE user_id=$1`, userID)
	cv, err := scanCV(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return cv, err
}

func scanCV(row *sql.Row) (*model.CV, error) {
	var cv model.CV
	err := row.Scan(&cv.UserID, &cv.Status, &cv.CandidateCode, &cv.Gender, &cv.BirthDate, &cv.Education,
		&cv.ProvinceID, &cv.City, &cv.Bio, &cv.RevisionNote, &cv.TaarufStatus, &cv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *repo) Upsert(ctx context.Context, cv *model.CV) error {
	const q = `
INSERT INTO cv_data (user_id, status, gender, birth_date, education, province_id, city, bio, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
ON CONFLICT (user_id) DO UPDATE
SET status=EXCLUDED.status,
    gender=EXCLUDED.gender,
    birth_date=EXCLUDED.birth_date,
    education=EXCLUDED.education,
    province_id=EXCLUDED.province_id,
    city=EXCLUDED.city,
    bio=EXCLUDED.bio,
    revision_note=NULL,
    updated_at=now()
RETURNING updated_at`
	return r.db.QueryRowContext(ctx, q,
		cv.UserID, cv.Status, cv.Gender, cv.BirthDate, cv.Education, cv.ProvinceID, cv.City, cv.Bio,
	).Scan(&cv.UpdatedAt)
}

func (r *repo) SetApproved(ctx context.Context, userID int64, code string) error {
	const q = `
UPDATE cv_data
SET status='APPROVED', candidate_code=$2, revision_note=NULL, updated_at=now()
WHERE user_id=$1`
	res, err := r.db.ExecContext(ctx, q, userID, code)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrCodeCollision
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) SetRevisi(ctx context.Context, userID int64, note string) error {
	const q = `
UPDATE cv_data
SET status='REVISI', candidate_code=NULL, revision_note=$2, updated_at=now()
WHERE user_id=$1`
	res, err := r.db.ExecContext(ctx, q, userID, note)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) NextCandidateCode(ctx context.Context, gender model.Gender) (string, error) {
	const q = `
SELECT COALESCE(MAX(NULLIF(regexp_replace(candidate_code, '\D', '', 'g'), '')::bigint), 0)
FROM cv_data
WHERE candidate_code LIKE $1 || '%'`
	var maxSeq int64
	if err := r.db.QueryRowContext(ctx, q, string(gender)).Scan(&maxSeq); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", gender, maxSeq+1), nil
}

func (r *repo) SetTaarufStatus(ctx context.Context, tx *sql.Tx, userA, userB int64, status *string) error {
	const q = `UPDATE cv_data SET taaruf_status=$3, updated_at=now() WHERE user_id IN ($1,$2)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, q, userA, userB, status)
	} else {
		_, err = r.db.ExecContext(ctx, q, userA, userB, status)
	}
	return err
}

func (r *repo) ListByStatus(ctx context.Context, status model.CVStatus, limit, offset int) ([]model.CV, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cv_data WHERE status=$1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, selectCV+` WHERE status=$1 ORDER BY updated_at ASC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.CV
	for rows.Next() {
		var cv model.CV
		if err := rows.Scan(&cv.UserID, &cv.Status, &cv.CandidateCode, &cv.Gender, &cv.BirthDate, &cv.Education,
			&cv.ProvinceID, &cv.City, &cv.Bio, &cv.RevisionNote, &cv.TaarufStatus, &cv.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, cv)
	}
	return out, total, rows.Err()
}
