package taaruf

type SubmitReq struct {
	ToUserID int64 `json:"to_user_id" validate:"required,gt=0"`
}

type RejectReq struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
