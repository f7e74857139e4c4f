package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

// Gateway is the payment collaborator. Settlement happens on the provider's side; the
// ticketing core only creates an intent and asks for it to be processed.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, eventID, buyerID string) (*Intent, error)
	ListMethods(ctx context.Context) ([]Method, error)
	ProcessPayment(ctx context.Context, intentID string, method Method, amount int64, phone string) (*Result, error)
}

type Intent struct {
	IntentID string `json:"intent_id"`
}

type Method struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// Network reports which network the method settles on.
func (m Method) Network() (Network, bool) {
	return ParseNetwork(m.Provider)
}

type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// MethodFor returns the first method settling on network.
func MethodFor(methods []Method, network Network) (Method, bool) {
	for _, m := range methods {
		if n, ok := m.Network(); ok && n == network {
			return m, true
		}
	}
	return Method{}, false
}

type httpGateway struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	HTTPClient *http.Client
}

// NewHTTPGateway returns a Gateway talking JSON to the mobile-money aggregator at baseURL.
func NewHTTPGateway(baseURL, apiKey, apiSecret string, timeout time.Duration) Gateway {
	return &httpGateway{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		APISecret:  apiSecret,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type createIntentRequest struct {
	Amount  int64  `json:"amount"`
	EventID string `json:"event_id"`
	BuyerID string `json:"buyer_id"`
}

type processRequest struct {
	MethodID string `json:"method_id"`
	Provider string `json:"provider"`
	Amount   int64  `json:"amount"`
	Phone    string `json:"phone"`
}

type listMethodsResponse struct {
	Methods []Method `json:"methods"`
}

func (g *httpGateway) CreateIntent(ctx context.Context, amount int64, eventID, buyerID string) (*Intent, error) {
	var intent Intent
	err := g.do(ctx, http.MethodPost, "/intents", "", createIntentRequest{Amount: amount, EventID: eventID, BuyerID: buyerID}, &intent)
	if err != nil {
		return nil, fmt.Errorf("createIntent: %w", err)
	}
	if intent.IntentID == "" {
		return nil, fmt.Errorf("createIntent: provider returned no intent id")
	}
	return &intent, nil
}

func (g *httpGateway) ListMethods(ctx context.Context) ([]Method, error) {
	var res listMethodsResponse
	if err := g.do(ctx, http.MethodGet, "/methods", "", nil, &res); err != nil {
		return nil, fmt.Errorf("listMethods: %w", err)
	}
	return res.Methods, nil
}

func (g *httpGateway) ProcessPayment(ctx context.Context, intentID string, method Method, amount int64, phone string) (*Result, error) {
	var res Result
	path := fmt.Sprintf("/intents/%s/process", intentID)
	err := g.do(ctx, http.MethodPost, path, processKey(intentID), processRequest{MethodID: method.ID, Provider: method.Provider, Amount: amount, Phone: phone}, &res)
	if err != nil {
		return nil, fmt.Errorf("processPayment: %w", err)
	}
	return &res, nil
}

// processKey lets the provider deduplicate a resubmitted process call for the same intent.
func processKey(intentID string) string {
	return "process-" + intentID
}

func (g *httpGateway) do(ctx context.Context, method, path, idempotencyKey string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("do: error marshalling request: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("do: error creating request: %w", err)
	}
	req.SetBasicAuth(g.APIKey, g.APISecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	res, err := g.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("do: error calling provider: %w", err)
	}
	defer res.Body.Close()

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("do: error reading response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("do: provider responded %d: %s", res.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("do: error unmarshalling response body: %w", err)
	}
	return nil
}
