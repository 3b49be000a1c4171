package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

// StripeGateway implements Gateway against the Stripe REST API
type StripeGateway struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ Gateway = (*StripeGateway)(nil)

// StripeOption configures a StripeGateway
type StripeOption func(*StripeGateway)

// WithBaseURL overrides the API base URL (used in tests)
func WithBaseURL(baseURL string) StripeOption {
	return func(g *StripeGateway) {
		g.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) StripeOption {
	return func(g *StripeGateway) {
		g.client = client
	}
}

// NewStripeGateway creates a Stripe-backed gateway
func NewStripeGateway(apiKey string, opts ...StripeOption) *StripeGateway {
	g := &StripeGateway{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetSubscriptionDetails fetches a subscription by identifier
func (g *StripeGateway) GetSubscriptionDetails(ctx context.Context, subscriptionID string) (*Subscription, error) {
	const op = "get_subscription"

	endpoint := fmt.Sprintf("%s/v1/subscriptions/%s", g.baseURL, url.PathEscape(subscriptionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: apiError(resp.Body)}
	}

	var sub Subscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &sub, nil
}

// UpdateMembers adjusts the seat quantity of the subscription's member item
// by delta. The resulting quantity never drops below one.
func (g *StripeGateway) UpdateMembers(ctx context.Context, subscriptionID string, delta int64) error {
	const op = "update_members"

	sub, err := g.GetSubscriptionDetails(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if len(sub.Items.Data) == 0 {
		return &UpstreamError{Op: op, Err: fmt.Errorf("subscription %s has no line items", subscriptionID)}
	}

	item := sub.Items.Data[0]
	quantity := item.Quantity + delta
	if quantity < 1 {
		quantity = 1
	}

	form := url.Values{}
	form.Set("quantity", strconv.FormatInt(quantity, 10))

	endpoint := fmt.Sprintf("%s/v1/subscription_items/%s", g.baseURL, url.PathEscape(item.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: apiError(resp.Body)}
	}
	return nil
}

// apiError extracts the provider's error message from a failed response body
func apiError(body io.Reader) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Error.Message == "" {
		return fmt.Errorf("provider returned an error")
	}
	return fmt.Errorf("%s: %s", payload.Error.Type, payload.Error.Message)
}
