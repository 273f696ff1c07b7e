package midtransrepo

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/azamazri/roomah-sub001/util/httpx"
)

const (
	snapURLProd    = "https://app.midtrans.com/snap/v1/transactions"
	snapURLSandbox = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	apiURLProd     = "https://api.midtrans.com/v2"
	apiURLSandbox  = "https://api.sandbox.midtrans.com/v2"
)

type httpRepo struct {
	serverKey string
	snapURL   string
	apiURL    string
	client    *http.Client
}

func NewHTTP(serverKey string, prod bool) Repo {
	r := &httpRepo{serverKey: serverKey, snapURL: snapURLSandbox, apiURL: apiURLSandbox, client: httpx.Client()}
	if prod {
		r.snapURL = snapURLProd
		r.apiURL = apiURLProd
	}
	return r
}

func (r *httpRepo) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(r.serverKey+":"))
}

func (r *httpRepo) CreateSnapTransaction(ctx context.Context, req SnapReq) (*SnapResp, error) {
	body := map[string]any{
		"transaction_details": map[string]any{
			"order_id":     req.OrderID,
			"gross_amount": req.GrossAmount,
		},
		"customer_details": map[string]any{
			"first_name": req.FirstName,
			"email":      req.Email,
		},
	}
	b, _ := json.Marshal(body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.snapURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", r.authHeader())
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("midtrans snap request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("midtrans snap failed: %s", resp.Status)
	}

	var out struct {
		Token       string `json:"token"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("midtrans: empty snap token")
	}
	return &SnapResp{Token: out.Token, RedirectURL: out.RedirectURL}, nil
}

func (r *httpRepo) GetTransactionStatus(ctx context.Context, orderID string) (*TransactionStatus, error) {
	url := fmt.Sprintf("%s/%s/status", r.apiURL, orderID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", r.authHeader())
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("midtrans status request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("midtrans status failed: %s", resp.Status)
	}

	var out struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
		FraudStatus       string `json:"fraud_status"`
		PaymentType       string `json:"payment_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &TransactionStatus{
		OrderID:           out.OrderID,
		TransactionStatus: out.TransactionStatus,
		FraudStatus:       out.FraudStatus,
		PaymentType:       out.PaymentType,
	}, nil
}

func (r *httpRepo) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + r.serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}
