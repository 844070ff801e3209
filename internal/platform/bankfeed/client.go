// Package bankfeed implements the bank transaction fetch contract against the
// provider's HTTP API.
package bankfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Client fetches bank transactions over HTTP. Network failures and provider
// 5xx/429 responses are reported as apperrors.ErrTransient so callers retry;
// auth and request errors are not.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a bank feed client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

var _ portssvc.BankTransactionFetcher = (*Client)(nil)

type transactionRecord struct {
	Reference    string          `json:"reference"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
}

type transactionsResponse struct {
	Transactions []transactionRecord `json:"transactions"`
}

// FetchTransactions retrieves the account's transactions in [from, to).
func (c *Client) FetchTransactions(ctx context.Context, bankAccountID string, from, to time.Time) ([]domain.BankTransaction, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/transactions?%s",
		c.baseURL,
		url.PathEscape(bankAccountID),
		url.Values{
			"from": []string{from.Format(time.RFC3339)},
			"to":   []string{to.Format(time.RFC3339)},
		}.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, apperrors.NewAppError(503, "bank API unreachable", apperrors.ErrTransient)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, apperrors.NewAppError(resp.StatusCode,
			fmt.Sprintf("bank API returned %d", resp.StatusCode), apperrors.ErrTransient)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.NewAppError(resp.StatusCode, "bank API authentication failed", nil)
	default:
		return nil, apperrors.NewAppError(resp.StatusCode,
			fmt.Sprintf("bank API returned %d", resp.StatusCode), nil)
	}

	var body transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode bank API response: %w", err)
	}

	txns := make([]domain.BankTransaction, 0, len(body.Transactions))
	for _, rec := range body.Transactions {
		var txnType domain.BankTransactionType
		switch rec.Type {
		case "CREDIT":
			txnType = domain.BankCredit
		case "DEBIT":
			txnType = domain.BankDebit
		default:
			// A type we cannot classify must not silently count as revenue.
			return nil, apperrors.NewAppError(422,
				fmt.Sprintf("bank API returned unknown transaction type %q for reference %s", rec.Type, rec.Reference), nil)
		}
		txns = append(txns, domain.BankTransaction{
			BankReference: rec.Reference,
			Type:          txnType,
			Amount:        rec.Amount,
			BalanceAfter:  rec.BalanceAfter,
			Description:   rec.Description,
			Date:          rec.Date,
		})
	}
	return txns, nil
}
