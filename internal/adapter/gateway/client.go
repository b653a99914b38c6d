package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const (
	transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

	headerAPIKeyID     = "Tbk-Api-Key-Id"
	headerAPIKeySecret = "Tbk-Api-Key-Secret"

	refundReversed = "REVERSED"
	maxErrorBody   = 2048
)

// Options configures HTTPClient.
type Options struct {
	BaseURL      string
	CommerceCode string
	APIKey       string
	Timeout      time.Duration
	RPS          float64
}

// HTTPClient talks to the card gateway REST API.
type HTTPClient struct {
	baseURL      *url.URL
	commerceCode string
	apiKey       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
}

type createRequest struct {
	BuyOrder  string `json:"buy_order"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	ReturnURL string `json:"return_url"`
}

type createResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type cardDetail struct {
	CardNumber string `json:"card_number"`
}

// transactionResponse is returned by both confirm and status.
type transactionResponse struct {
	VCI                string     `json:"vci"`
	Amount             int64      `json:"amount"`
	Status             string     `json:"status"`
	BuyOrder           string     `json:"buy_order"`
	SessionID          string     `json:"session_id"`
	CardDetail         cardDetail `json:"card_detail"`
	AccountingDate     string     `json:"accounting_date"`
	TransactionDate    *time.Time `json:"transaction_date"`
	AuthorizationCode  string     `json:"authorization_code"`
	PaymentTypeCode    string     `json:"payment_type_code"`
	ResponseCode       *int       `json:"response_code"`
	InstallmentsAmount int64      `json:"installments_amount"`
	InstallmentsNumber int        `json:"installments_number"`
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

type refundResponse struct {
	Type              string `json:"type"`
	AuthorizationCode string `json:"authorization_code"`
	AuthorizationDate string `json:"authorization_date"`
	NullifiedAmount   int64  `json:"nullified_amount"`
	Balance           int64  `json:"balance"`
	ResponseCode      *int   `json:"response_code"`
}

type errorResponse struct {
	ErrorMessage string `json:"error_message"`
}

// NewHTTPClient validates options and builds a rate limited client.
func NewHTTPClient(opts Options, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	if opts.CommerceCode == "" || opts.APIKey == "" {
		return nil, fmt.Errorf("gateway credentials must be provided")
	}

	burst := int(opts.RPS)
	if burst < 1 {
		burst = 1
	}
	return &HTTPClient{
		baseURL:      parsed,
		commerceCode: opts.CommerceCode,
		apiKey:       opts.APIKey,
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Limit(opts.RPS), burst),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}, nil
}

// CreateTransaction opens a gateway transaction and returns its token and form URL.
func (c *HTTPClient) CreateTransaction(ctx context.Context, req model.TransactionRequest) (*model.Transaction, error) {
	var resp createResponse
	body := createRequest{BuyOrder: req.BuyOrder, SessionID: req.SessionID, Amount: req.Amount, ReturnURL: req.ReturnURL}
	if err := c.do(ctx, "create", http.MethodPost, c.endpoint(), body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.URL == "" {
		return nil, &domainErrors.GatewayError{Op: "create", Detail: "response without token or url"}
	}
	return &model.Transaction{Token: resp.Token, URL: resp.URL}, nil
}

// ConfirmTransaction commits the transaction identified by token.
func (c *HTTPClient) ConfirmTransaction(ctx context.Context, token string) (*model.Confirmation, error) {
	var resp transactionResponse
	if err := c.do(ctx, "confirm", http.MethodPut, c.endpoint(token), nil, &resp); err != nil {
		return nil, err
	}
	return resp.confirmation(), nil
}

// TransactionStatus reads the current gateway state without committing.
func (c *HTTPClient) TransactionStatus(ctx context.Context, token string) (*model.Confirmation, error) {
	var resp transactionResponse
	if err := c.do(ctx, "status", http.MethodGet, c.endpoint(token), nil, &resp); err != nil {
		return nil, err
	}
	return resp.confirmation(), nil
}

// Refund reverses or nullifies amount of a confirmed transaction.
func (c *HTTPClient) Refund(ctx context.Context, token string, amount int64) (*model.RefundOutcome, error) {
	var resp refundResponse
	if err := c.do(ctx, "refund", http.MethodPost, c.endpoint(token, "refunds"), refundRequest{Amount: amount}, &resp); err != nil {
		return nil, err
	}
	success := resp.Type == refundReversed || (resp.ResponseCode != nil && *resp.ResponseCode == 0)
	return &model.RefundOutcome{
		Success:           success,
		Type:              resp.Type,
		AuthorizationCode: resp.AuthorizationCode,
		ResponseCode:      resp.ResponseCode,
		NullifiedAmount:   resp.NullifiedAmount,
		Balance:           resp.Balance,
	}, nil
}

func (r transactionResponse) confirmation() *model.Confirmation {
	code := -1
	if r.ResponseCode != nil {
		code = *r.ResponseCode
	}
	return &model.Confirmation{
		BuyOrder:           r.BuyOrder,
		SessionID:          r.SessionID,
		Amount:             r.Amount,
		Status:             r.Status,
		AuthorizationCode:  r.AuthorizationCode,
		ResponseCode:       code,
		IsApproved:         r.ResponseCode != nil && code == 0,
		CardNumber:         r.CardDetail.CardNumber,
		PaymentTypeCode:    r.PaymentTypeCode,
		InstallmentsNumber: r.InstallmentsNumber,
		InstallmentsAmount: r.InstallmentsAmount,
		TransactionDate:    r.TransactionDate,
	}
}

// endpoint joins path-escaped segments onto the transactions path.
func (c *HTTPClient) endpoint(parts ...string) string {
	segments := append([]string{transactionsPath}, escapeAll(parts)...)
	return c.baseURL.JoinPath(segments...).String()
}

func escapeAll(parts []string) []string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return escaped
}

func (c *HTTPClient) do(ctx context.Context, op, method, endpoint string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domainErrors.GatewayError{Op: op, Err: classify(err)}
	}

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAPIKeyID, c.commerceCode)
	req.Header.Set(headerAPIKeySecret, c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed",
			slog.String("op", op),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return &domainErrors.GatewayError{Op: op, Err: classify(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := string(raw)
		var parsed errorResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.ErrorMessage != "" {
			detail = parsed.ErrorMessage
		}
		c.logger.Error("gateway rejected request",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("body", detail))
		return &domainErrors.GatewayError{Op: op, StatusCode: resp.StatusCode, Detail: detail}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domainErrors.GatewayError{Op: op, Detail: "malformed response", Err: err}
	}
	return nil
}

// classify turns transport deadlines into ErrGatewayTimeout.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domainErrors.ErrGatewayTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", domainErrors.ErrGatewayTimeout, err)
	}
	return err
}
