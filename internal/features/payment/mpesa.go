package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MpesaClient talks to the Safaricom Daraja API: OAuth token, STK
// push and status query. The access token is fetched per request,
// matching how the gateway expects short-lived tokens to be used.
type MpesaClient struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	shortcode      string
	passkey        string
	callbackURL    string
	httpClient     *http.Client
}

func NewMpesaClient(baseURL, consumerKey, consumerSecret, shortcode, passkey, callbackURL string) *MpesaClient {
	return &MpesaClient{
		baseURL:        baseURL,
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		shortcode:      shortcode,
		passkey:        passkey,
		callbackURL:    callbackURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// StkResult is the useful part of the STK push response.
type StkResult struct {
	CheckoutRequestID string
	ResponseCode      string
	Description       string
}

func (m *MpesaClient) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(m.consumerKey, m.consumerSecret)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa auth: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("mpesa auth response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("mpesa auth: empty token (status %d)", resp.StatusCode)
	}
	return body.AccessToken, nil
}

// password builds the STK password: base64(shortcode+passkey+timestamp)
// with the timestamp in Nairobi time, as the gateway requires.
func (m *MpesaClient) password(now time.Time) (string, string) {
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		loc = time.FixedZone("EAT", 3*60*60)
	}
	ts := now.In(loc).Format("20060102150405")
	raw := m.shortcode + m.passkey + ts
	return base64.StdEncoding.EncodeToString([]byte(raw)), ts
}

// InitiateSTKPush asks the gateway to pop a payment prompt on the
// buyer's phone. phone must already be in the 2547XXXXXXXX form.
func (m *MpesaClient) InitiateSTKPush(ctx context.Context, phone string, amount int64, reference, description string) (*StkResult, error) {
	token, err := m.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	password, ts := m.password(time.Now())
	payload := map[string]any{
		"BusinessShortCode": m.shortcode,
		"Password":          password,
		"Timestamp":         ts,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phone,
		"PartyB":            m.shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       m.callbackURL + "?reference=" + reference,
		"AccountReference":  reference,
		"TransactionDesc":   description,
	}

	data, err := m.post(ctx, "/mpesa/stkpush/v1/processrequest", token, payload)
	if err != nil {
		return nil, err
	}

	var body struct {
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
		ErrorMessage        string `json:"errorMessage"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("stk push response: %w", err)
	}
	if body.ErrorMessage != "" {
		return nil, fmt.Errorf("stk push rejected: %s", body.ErrorMessage)
	}
	return &StkResult{
		CheckoutRequestID: body.CheckoutRequestID,
		ResponseCode:      body.ResponseCode,
		Description:       body.ResponseDescription,
	}, nil
}

// QueryStatus polls an in-flight STK push.
func (m *MpesaClient) QueryStatus(ctx context.Context, checkoutRequestID string) (resultCode, resultDesc string, err error) {
	token, err := m.accessToken(ctx)
	if err != nil {
		return "", "", err
	}

	password, ts := m.password(time.Now())
	payload := map[string]any{
		"BusinessShortCode": m.shortcode,
		"Password":          password,
		"Timestamp":         ts,
		"CheckoutRequestID": checkoutRequestID,
	}

	data, err := m.post(ctx, "/mpesa/stkpushquery/v1/query", token, payload)
	if err != nil {
		return "", "", err
	}

	var body struct {
		ResultCode   string `json:"ResultCode"`
		ResultDesc   string `json:"ResultDesc"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", "", fmt.Errorf("stk query response: %w", err)
	}
	if body.ErrorMessage != "" {
		return "", "", fmt.Errorf("stk query rejected: %s", body.ErrorMessage)
	}
	return body.ResultCode, body.ResultDesc, nil
}

func (m *MpesaClient) post(ctx context.Context, path, token string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mpesa request: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
