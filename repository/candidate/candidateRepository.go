package candidaterepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azamazri/roomah-sub001/model"
)

var ErrNotFound = errors.New("candidate not found")

// Row is the public projection of an approved CV shown in the directory.
type Row struct {
	UserID        int64           `json:"user_id"`
	CandidateCode string          `json:"candidate_code"`
	Gender        model.Gender    `json:"gender"`
	Age           int             `json:"age"`
	Education     model.Education `json:"education"`
	ProvinceID    int64           `json:"province_id"`
	City          string          `json:"city"`
	Bio           string          `json:"bio"`
}

type Filters struct {
	Gender     *model.Gender
	AgeMin     *int
	AgeMax     *int
	Education  *model.Education
	ProvinceID *int64
}

type Repo interface {
	// Search lists approved, visible candidates. Users in khitbah are
	// always excluded, as is excludeUserID. Total reflects the filtered
	// count, not the raw table size.
	Search(ctx context.Context, f Filters, excludeUserID int64, limit, offset int) ([]Row, int64, error)
	ByUserID(ctx context.Context, userID int64) (*Row, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const baseWhere = `
FROM cv_data
WHERE status='APPROVED'
  AND candidate_code IS NOT NULL
  AND (taaruf_status IS NULL OR taaruf_status <> 'DALAM_KHITBAH')
  AND user_id <> $1`

func (r *repo) Search(ctx context.Context, f Filters, excludeUserID int64, limit, offset int) ([]Row, int64, error) {
	var (
		conds []string
		args  = []any{excludeUserID}
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Gender != nil {
		add("gender = $%d", *f.Gender)
	}
	if f.Education != nil {
		add("education = $%d", *f.Education)
	}
	if f.ProvinceID != nil {
		add("province_id = $%d", *f.ProvinceID)
	}
	now := time.Now().UTC()
	if f.AgeMax != nil {
		// age <= max: born on or after now - (max+1) years
		add("birth_date > $%d", now.AddDate(-(*f.AgeMax+1), 0, 0))
	}
	if f.AgeMin != nil {
		// age >= min: born on or before now - min years
		add("birth_date <= $%d", now.AddDate(-*f.AgeMin, 0, 0))
	}

	where := baseWhere
	if len(conds) > 0 {
		where += " AND " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(args, limit, offset)
	q := fmt.Sprintf(`
SELECT user_id, candidate_code, date_part('year', age(birth_date))::int, gender, education, province_id, city, bio
%s
ORDER BY updated_at DESC, user_id DESC
LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, q, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var c Row
		if err := rows.Scan(&c.UserID, &c.CandidateCode, &c.Age, &c.Gender, &c.Education, &c.ProvinceID, &c.City, &c.Bio); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repo) ByUserID(ctx context.Context, userID int64) (*Row, error) {
	const q = `
SELECT user_id, candidate_code, date_part('year', age(birth_date))::int, gender, education, province_id, city, bio
FROM cv_data
WHERE user_id=$1
  AND status='APPROVED'
  AND candidate_code IS NOT NULL
  AND (taaruf_status IS NULL OR taaruf_status <> 'DALAM_KHITBAH')`
	var c Row
	err := r.db.QueryRowContext(ctx, q, userID).
		Scan(&c.UserID, &c.CandidateCode, &c.Age, &c.Gender, &c.Education, &c.ProvinceID, &c.City, &c.Bio)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
