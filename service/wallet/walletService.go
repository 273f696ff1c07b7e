package walletsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/azamazri/roomah-sub001/model"
	ledgerrepo "github.com/azamazri/roomah-sub001/repository/ledger"
	midtransrepo "github.com/azamazri/roomah-sub001/repository/midtrans"
	topuprepo "github.com/azamazri/roomah-sub001/repository/topup"
	userrepo "github.com/azamazri/roomah-sub001/repository/user"
)

// CoinPriceIDR is the price of one koin charged through the gateway.
const CoinPriceIDR = 10_000

type TopupCreated struct {
	OrderID     string `json:"order_id"`
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url"`
	CoinAmount  int64  `json:"coin_amount"`
	GrossAmount int64  `json:"gross_amount"`
}

type Service interface {
	// CreateTopup creates a PENDING order and a Snap transaction for it.
	// Nothing is credited here; credit happens only on reconciliation.
	CreateTopup(ctx context.Context, userID, coinAmount int64) (*TopupCreated, error)

	// Saldo is the derived wallet balance (sum over ledger entries).
	Saldo(ctx context.Context, userID int64) (int64, error)

	Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

type service struct {
	lr ledgerrepo.Repo
	tr topuprepo.Repo
	ur userrepo.Repo
	mt midtransrepo.Repo
}

func New(lr ledgerrepo.Repo, tr topuprepo.Repo, ur userrepo.Repo, mt midtransrepo.Repo) Service {
	return &service{lr: lr, tr: tr, ur: ur, mt: mt}
}

func (s *service) CreateTopup(ctx context.Context, userID, coinAmount int64) (*TopupCreated, error) {
	if coinAmount <= 0 {
		return nil, errors.New("invalid coin amount")
	}

	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	order := &model.TopupOrder{
		OrderID:     fmt.Sprintf("KOIN-%s", uuid.NewString()),
		UserID:      userID,
		CoinAmount:  coinAmount,
		GrossAmount: coinAmount * CoinPriceIDR,
		Status:      model.TopupPending,
	}
	if err := s.tr.Insert(ctx, order); err != nil {
		return nil, err
	}

	snap, err := s.mt.CreateSnapTransaction(ctx, midtransrepo.SnapReq{
		OrderID:     order.OrderID,
		GrossAmount: order.GrossAmount,
		FirstName:   u.FirstName,
		Email:       u.Email,
	})
	if err != nil {
		// Order stays PENDING; the client can retry with a fresh order.
		return nil, err
	}

	return &TopupCreated{
		OrderID:     order.OrderID,
		SnapToken:   snap.Token,
		RedirectURL: snap.RedirectURL,
		CoinAmount:  order.CoinAmount,
		GrossAmount: order.GrossAmount,
	}, nil
}

func (s *service) Saldo(ctx context.Context, userID int64) (int64, error) {
	return s.lr.Balance(ctx, userID)
}

func (s *service) Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return s.lr.List(ctx, userID)
}
