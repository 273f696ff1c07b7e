package admin

type ReviseCVReq struct {
	Note string `json:"note" validate:"required,max=1000"`
}

type AdvanceStageReq struct {
	Stage string `json:"stage" validate:"required,oneof=Pengajuan Zoom1 Zoom2 Khitbah Selesai"`
}
