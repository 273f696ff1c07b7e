package model

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
	RequestExpired  RequestStatus = "EXPIRED"
)

type TaarufRequest struct {
	ID              int64         `json:"id"`
	FromUserID      int64         `json:"from_user_id"`
	ToUserID        int64         `json:"to_user_id"`
	Status          RequestStatus `json:"status"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty"`
}

type SessionStatus string

const (
	SessionActive   SessionStatus = "ACTIVE"
	SessionFinished SessionStatus = "FINISHED"
)

type Stage string

// Ordered stages of an active taaruf. Admins may jump freely; only
// Khitbah and Selesai carry side effects.
const (
	StagePengajuan Stage = "Pengajuan"
	StageZoom1     Stage = "Zoom1"
	StageZoom2     Stage = "Zoom2"
	StageKhitbah   Stage = "Khitbah"
	StageSelesai   Stage = "Selesai"
)

// ValidStage reports whether s is one of the known stages.
func ValidStage(s Stage) bool {
	switch s {
	case StagePengajuan, StageZoom1, StageZoom2, StageKhitbah, StageSelesai:
		return true
	}
	return false
}

type TaarufSession struct {
	ID        int64         `json:"id"`
	RequestID int64         `json:"request_id"`
	Code      string        `json:"taaruf_code"`
	UserA     int64         `json:"user_a"`
	UserB     int64         `json:"user_b"`
	Status    SessionStatus `json:"status"`
	Stage     Stage         `json:"stage"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
}
