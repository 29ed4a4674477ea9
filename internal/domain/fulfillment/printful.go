// internal/domain/fulfillment/printful.go
package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/berkelium/storefront/internal/pkg/httpclient"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	PrintfulIdentifier = "printful"

	variantMetadataKey = "printful_variant_id"
	orderIDKey         = "printful_order_id"
	statusKey          = "printful_status"
	mockPrefix         = "mock_"
	placeholderMarker  = "placeholder"
)

// ProviderError is a non-2xx answer from the print provider
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return "printful API error: " + e.Message
}

type printfulRecipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Email       string `json:"email"`
}

type printfulItem struct {
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
}

type printfulOrder struct {
	Recipient printfulRecipient `json:"recipient"`
	Items     []printfulItem    `json:"items"`
}

type printfulResponse struct {
	Code   int `json:"code"`
	Result *struct {
		ID     json.Number `json:"id"`
		Status string      `json:"status"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// PrintfulProvider forwards orders to the Printful REST API. A placeholder
// API key turns failed submissions into draft mock orders.
type PrintfulProvider struct {
	baseURL string
	apiKey  string
	http    httpclient.Doer
	logger  *logrus.Logger
	now     func() time.Time
	upper   cases.Caser
}

// NewPrintfulProvider creates the Printful provider
func NewPrintfulProvider(cfg *config.Config, doer httpclient.Doer, logger *logrus.Logger) *PrintfulProvider {
	return &PrintfulProvider{
		baseURL: strings.TrimRight(cfg.Fulfillment.BaseURL, "/"),
		apiKey:  cfg.Fulfillment.APIKey,
		http:    doer,
		logger:  logger,
		now:     time.Now,
		upper:   cases.Upper(language.Und),
	}
}

func (p *PrintfulProvider) Identifier() string {
	return PrintfulIdentifier
}

// ListOptions returns the fixed service tiers
func (p *PrintfulProvider) ListOptions(context.Context) ([]Option, error) {
	return []Option{
		{ID: "printful-standard"},
		{ID: "printful-express"},
	}, nil
}

// Validate accepts any data unchanged
func (p *PrintfulProvider) Validate(_ context.Context, _, data Data) (Data, error) {
	return data, nil
}

func (p *PrintfulProvider) ValidateOption(context.Context, Data) (bool, error) {
	return true, nil
}

// SupportsDynamicPricing is false: shipping prices are flat and set upstream
func (p *PrintfulProvider) SupportsDynamicPricing() bool {
	return false
}

func (p *PrintfulProvider) CalculatePrice(context.Context, Data, Data) (int64, error) {
	return 0, fmt.Errorf("printful uses fixed shipping prices: %w", ErrUnsupportedOperation)
}

// CreateFulfillment submits the order to Printful
func (p *PrintfulProvider) CreateFulfillment(ctx context.Context, _ Data, items []commerce.LineItem, order Order, _ Fulfillment) (*Result, error) {
	mapped, err := p.mapItems(items)
	if err != nil {
		return nil, err
	}

	body := printfulOrder{
		Recipient: p.recipient(order),
		Items:     mapped,
	}

	id, status, err := p.submit(ctx, body)
	if err != nil {
		if strings.Contains(p.apiKey, placeholderMarker) {
			mockID := fmt.Sprintf("%s%d", mockPrefix, p.now().UnixMilli())
			p.logger.WithError(err).WithFields(logrus.Fields{
				"order_id":          order.ID,
				"printful_order_id": mockID,
			}).Warn("printful submission failed with placeholder key, returning mock order")
			return &Result{
				Data:   Data{orderIDKey: mockID, statusKey: "draft"},
				Labels: []Label{},
			}, nil
		}
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"order_id":          order.ID,
		"printful_order_id": id,
		"printful_status":   status,
	}).Info("printful order created")

	return &Result{
		Data:   Data{orderIDKey: id, statusKey: status},
		Labels: []Label{},
	}, nil
}

// CancelFulfillment deletes the Printful order. Mock orders are skipped and
// remote failures are only logged.
func (p *PrintfulProvider) CancelFulfillment(ctx context.Context, f Fulfillment) (Data, error) {
	id := ExternalOrderID(f.Data)
	if id == "" || strings.HasPrefix(id, mockPrefix) {
		return Data{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.baseURL+"/orders/"+url.PathEscape(id), nil)
	if err != nil {
		p.logger.WithError(err).Warn("failed to build printful cancel request")
		return Data{}, nil
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		p.logger.WithError(err).WithField("printful_order_id", id).Warn("printful cancel failed")
		return Data{}, nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		p.logger.WithFields(logrus.Fields{
			"printful_order_id": id,
			"status":            resp.StatusCode,
		}).Warn("printful cancel rejected")
	}
	return Data{}, nil
}

// CreateReturnFulfillment is a no-op; returns are handled in the Printful dashboard
func (p *PrintfulProvider) CreateReturnFulfillment(context.Context, Fulfillment) (*Result, error) {
	return &Result{Data: Data{}, Labels: []Label{}}, nil
}

func (p *PrintfulProvider) submit(ctx context.Context, order printfulOrder) (string, string, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal printful order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("printful request failed: %w", err)
	}
	defer resp.Body.Close()

	var result printfulResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", "", &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", "", fmt.Errorf("failed to parse printful response: %w", decodeErr)
	}
	if result.Result == nil {
		return "", "", fmt.Errorf("printful response has no result")
	}
	return result.Result.ID.String(), result.Result.Status, nil
}

func (p *PrintfulProvider) mapItems(items []commerce.LineItem) ([]printfulItem, error) {
	mapped := make([]printfulItem, 0, len(items))
	var missing []string

	for _, item := range items {
		id := printfulVariantID(item)
		if id <= 0 {
			missing = append(missing, item.ID)
			continue
		}
		mapped = append(mapped, printfulItem{
			VariantID: id,
			Quantity:  item.Quantity,
			Name:      item.Title,
		})
	}

	if len(missing) > 0 {
		return nil, &MissingVariantError{ItemIDs: missing}
	}
	return mapped, nil
}

func (p *PrintfulProvider) recipient(order Order) printfulRecipient {
	a := order.ShippingAddress
	if a == nil {
		a = &commerce.Address{}
	}
	return printfulRecipient{
		Name:        strings.TrimSpace(a.FirstName + " " + a.LastName),
		Address1:    a.Address1,
		Address2:    a.Address2,
		City:        a.City,
		StateCode:   a.Province,
		CountryCode: p.upper.String(a.CountryCode),
		Zip:         a.PostalCode,
		Email:       order.Email,
	}
}

// printfulVariantID reads the mapping from the line item metadata first and
// the variant metadata second. Zero or less means missing.
func printfulVariantID(item commerce.LineItem) int64 {
	if id := metadataInt(item.Metadata, variantMetadataKey); id > 0 {
		return id
	}
	if item.Variant != nil {
		return metadataInt(item.Variant.Metadata, variantMetadataKey)
	}
	return 0
}

func metadataInt(md map[string]any, key string) int64 {
	switch v := md[key].(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) {
			return 0
		}
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// ExternalOrderID reads printful_order_id from fulfillment data
func ExternalOrderID(data Data) string {
	switch v := data[orderIDKey].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// IsMockOrderID reports whether id was generated by the placeholder fallback
func IsMockOrderID(id string) bool {
	return strings.HasPrefix(id, mockPrefix)
}
