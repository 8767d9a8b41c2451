// Package chain asks the block explorer whether a deposit address has been funded.
package chain

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lottery/config"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Status is the confirmation answer for one deposit address. Only Confirmed means the
// expected amount has arrived; anything else is passed back to the caller untouched.
type Status string

const (
	Confirmed   Status = "confirmed"
	CheckFailed Status = "error checking deposit"
)

func Pending(observed decimal.Decimal) Status {
	return Status("pending:" + observed.String())
}

func (s Status) IsConfirmed() bool {
	return s == Confirmed
}

// BscScan reads an address's token balance through the BscScan account API.
type BscScan struct {
	apiURL   string
	apiKey   string
	contract string
	decimals int32
	client   *http.Client
}

func NewBscScan(cfg config.BscScanConfig) *BscScan {
	return &BscScan{
		apiURL:   cfg.APIURL,
		apiKey:   cfg.APIKey,
		contract: cfg.TokenContract,
		decimals: cfg.TokenDecimals,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenBalanceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func (b *BscScan) CheckDeposit(ctx context.Context, address string, expected decimal.Decimal) Status {
	balance, err := b.tokenBalance(ctx, address)
	if err != nil {
		log.Printf("❌ deposit check for %s: %v", address, err)
		return CheckFailed
	}
	if balance.GreaterThanOrEqual(expected) {
		return Confirmed
	}
	return Pending(balance)
}

func (b *BscScan) tokenBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if b.contract == "" || b.apiKey == "" {
		return decimal.Zero, errors.New("missing USDT_CONTRACT or BSCSCAN_API_KEY")
	}

	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "tokenbalance")
	query.Set("contractaddress", b.contract)
	query.Set("address", address)
	query.Set("tag", "latest")
	query.Set("apikey", b.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "build request")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "call bscscan")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Errorf("bscscan responded %d", resp.StatusCode)
	}

	var body tokenBalanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, errors.Wrap(err, "decode bscscan response")
	}
	if body.Status == "0" && !strings.EqualFold(body.Message, "OK") {
		return decimal.Zero, errors.Errorf("bscscan: %s: %s", body.Message, body.Result)
	}

	raw, err := decimal.NewFromString(strings.TrimSpace(body.Result))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse token balance %q", body.Result)
	}
	return raw.Shift(-b.decimals), nil
}
