package model

import "time"

type CVStatus string

const (
	CVDraft    CVStatus = "DRAFT"
	CVReview   CVStatus = "REVIEW"
	CVRevisi   CVStatus = "REVISI"
	CVApproved CVStatus = "APPROVED"
)

type Gender string

const (
	GenderIkhwan Gender = "IKHWAN" // male
	GenderAkhwat Gender = "AKHWAT" // female
)

// Opposite returns the other gender category.
func (g Gender) Opposite() Gender {
	if g == GenderIkhwan {
		return GenderAkhwat
	}
	return GenderIkhwan
}

type Education string

const (
	EduSMASMK Education = "SMA_SMK"
	EduD3     Education = "D3"
	EduS1     Education = "S1"
	EduS2     Education = "S2"
	EduS3     Education = "S3"
)

// TaarufFlag marks a candidate's visibility state in the directory.
// A user in khitbah is suppressed from all search results.
const TaarufDalamKhitbah = "DALAM_KHITBAH"

type CV struct {
	UserID        int64     `json:"user_id"`
	Status        CVStatus  `json:"status"`
	CandidateCode *string   `json:"candidate_code,omitempty"`
	Gender        Gender    `json:"gender"`
	BirthDate     time.Time `json:"birth_date"`
	Education     Education `json:"education"`
	ProvinceID    int64     `json:"province_id"`
	City          string    `json:"city"`
	Bio           string    `json:"bio"`
	RevisionNote  *string   `json:"revision_note,omitempty"`
	TaarufStatus  *string   `json:"taaruf_status,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
