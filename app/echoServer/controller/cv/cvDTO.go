package cv

type SubmitCVReq struct {
	Gender     string `json:"gender" validate:"required,oneof=IKHWAN AKHWAT"`
	BirthDate  string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Education  string `json:"education" validate:"required,oneof=SMA_SMK D3 S1 S2 S3"`
	ProvinceID int64  `json:"province_id" validate:"required,gt=0"`
	City       string `json:"city" validate:"required,max=100"`
	Bio        string `json:"bio" validate:"omitempty,max=2000"`
}
