package koin

type CreateTopupReq struct {
	CoinAmount int64 `json:"coin_amount" validate:"required,gt=0"`
}
