package candidate

type SearchReq struct {
	Gender     string `query:"gender" validate:"omitempty,oneof=IKHWAN AKHWAT"`
	AgeMin     int    `query:"age_min" validate:"omitempty,gte=17,lte=80"`
	AgeMax     int    `query:"age_max" validate:"omitempty,gte=17,lte=80"`
	Education  string `query:"education" validate:"omitempty,oneof=SMA_SMK D3 S1 S2 S3"`
	ProvinceID int64  `query:"province_id" validate:"omitempty,gt=0"`
	Page       int    `query:"page" validate:"omitempty,gte=1"`
	PageSize   int    `query:"page_size" validate:"omitempty,gte=1,lte=50"`
}
