// Package webhook is the client for the automation backend: order sync,
// product detail fetch and save, ready toggles, ASIN updates, title
// generation, translation, competition lookup, financial data and bulk
// import uploads.
//
// Every endpoint has its own URL. Requests are never retried; a failure is
// returned once and the caller decides how to surface it.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/listingdesk/internal/config"
	"github.com/go-resty/resty/v2"
)

const statusSuccess = "success"

// Endpoints holds the absolute URL of every automation endpoint.
type Endpoints struct {
	Sync        string
	Details     string
	Save        string
	Ready       string
	ASIN        string
	Title       string
	Translate   string
	Competition string
	Financial   string
	Upload      string
}

// EndpointsFromConfig maps the webhook configuration onto Endpoints.
func EndpointsFromConfig(cfg config.WebhookConfig) Endpoints {
	return Endpoints{
		Sync:        cfg.SyncURL,
		Details:     cfg.DetailsURL,
		Save:        cfg.SaveURL,
		Ready:       cfg.ReadyURL,
		ASIN:        cfg.ASINURL,
		Title:       cfg.TitleURL,
		Translate:   cfg.TranslateURL,
		Competition: cfg.CompetitionURL,
		Financial:   cfg.FinancialURL,
		Upload:      cfg.UploadURL,
	}
}

// Client talks to the automation backend.
type Client struct {
	http      *resty.Client
	endpoints Endpoints
	logger    *slog.Logger
}

// NewClient builds a client from the webhook configuration.
func NewClient(cfg config.WebhookConfig) *Client {
	return NewClientWithEndpoints(EndpointsFromConfig(cfg), resty.New().SetTimeout(cfg.Timeout))
}

// NewClientWithEndpoints builds a client over an existing resty client.
func NewClientWithEndpoints(endpoints Endpoints, http *resty.Client) *Client {
	http.SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &Client{
		http:      http,
		endpoints: endpoints,
		logger:    slog.Default().With("component", "webhook"),
	}
}

// FetchOrders runs a full order sync for the access code.
func (c *Client) FetchOrders(ctx context.Context, code string) (map[string][]ProductRecord, error) {
	var out OrdersResponse
	if err := c.postJSON(ctx, "sync", c.endpoints.Sync, map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	if out.Status != statusSuccess {
		return nil, fmt.Errorf("%w: sync returned %q", ErrStatusNotSuccess, out.Status)
	}
	if out.Data == nil {
		return map[string][]ProductRecord{}, nil
	}
	return out.Data, nil
}

// FetchDetails fetches detail records for asins in a single call. The
// backend nests its answer; the first "products" object found anywhere in
// the body is used.
func (c *Client) FetchDetails(ctx context.Context, asins []string) (map[string]DetailRecord, error) {
	var raw any
	if err := c.postJSON(ctx, "details", c.endpoints.Details, map[string][]string{"asins": asins}, &raw); err != nil {
		return nil, err
	}

	products, ok := findProducts(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no products object in details response", ErrMalformedResponse)
	}

	out := make(map[string]DetailRecord, len(products))
	for asin, v := range products {
		encoded, err := json.Marshal(v)
		if err != nil {
			continue
		}
		var rec DetailRecord
		if err := json.Unmarshal(encoded, &rec); err != nil {
			c.logger.Warn("skipping undecodable detail record", "asin", asin, "error", err)
			continue
		}
		out[asin] = rec
	}
	return out, nil
}

// findProducts searches v depth-first for an object under a "products" key.
func findProducts(v any) (map[string]any, bool) {
	switch node := v.(type) {
	case map[string]any:
		if p, ok := node["products"].(map[string]any); ok {
			return p, true
		}
		for _, child := range node {
			if p, ok := findProducts(child); ok {
				return p, true
			}
		}
	case []any:
		for _, child := range node {
			if p, ok := findProducts(child); ok {
				return p, true
			}
		}
	}
	return nil, false
}

// SaveDetails PATCHes the full detail record for asin. Only the status code
// is inspected.
func (c *Client) SaveDetails(ctx context.Context, asin string, details DetailRecord) error {
	body := struct {
		ASIN        string       `json:"asin"`
		UpdatedData DetailRecord `json:"updatedData"`
	}{asin, details}

	url, err := c.endpoint("save", c.endpoints.Save)
	if err != nil {
		return err
	}
	resp, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Patch(url)
	return c.check("save", resp, err)
}

// SetReady toggles the ready-to-list flag. Any 2xx with a JSON body counts
// as success.
func (c *Client) SetReady(ctx context.Context, req ReadyRequest) error {
	var ignored any
	return c.postJSON(ctx, "ready", c.endpoints.Ready, req, &ignored)
}

// UpdateASIN replaces a product ASIN. The backend must answer status success.
func (c *Client) UpdateASIN(ctx context.Context, req ASINUpdateRequest) error {
	var out statusResponse
	if err := c.postJSON(ctx, "asin", c.endpoints.ASIN, req, &out); err != nil {
		return err
	}
	if out.Status != statusSuccess {
		if out.Message != "" {
			return fmt.Errorf("%w: %s", ErrStatusNotSuccess, out.Message)
		}
		return fmt.Errorf("%w: asin update returned %q", ErrStatusNotSuccess, out.Status)
	}
	return nil
}

// GenerateTitle returns the generated title.
func (c *Client) GenerateTitle(ctx context.Context, req TitleRequest) (string, error) {
	var out titleResponse
	if err := c.postJSON(ctx, "title", c.endpoints.Title, req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Output) == "" {
		return "", fmt.Errorf("%w: empty title output", ErrMalformedResponse)
	}
	return out.Output, nil
}

// Translate triggers translation of asin into language. The body is ignored.
func (c *Client) Translate(ctx context.Context, asin, language string) error {
	url, err := c.endpoint("translate", c.endpoints.Translate)
	if err != nil {
		return err
	}
	resp, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"asin": asin, "language": language}).
		Post(url)
	return c.check("translate", resp, err)
}

// Competition returns the opaque competition report for asin.
func (c *Client) Competition(ctx context.Context, asin string) (map[string]any, error) {
	var out map[string]any
	if err := c.postJSON(ctx, "competition", c.endpoints.Competition, map[string]string{"asin": asin}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// FetchFinancial returns the raw financial payload. Shape checks belong to
// the caller since the backend answers with either an object or an array.
func (c *Client) FetchFinancial(ctx context.Context) (json.RawMessage, error) {
	url, err := c.endpoint("financial", c.endpoints.Financial)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err := c.check("financial", resp, err); err != nil {
		return nil, err
	}
	body := bytes.TrimSpace(resp.Body())
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: financial body is not JSON", ErrMalformedResponse)
	}
	return json.RawMessage(body), nil
}

// Upload sends the bulk import archive and its manifest PDF as multipart
// parts "zip" and "pdf".
func (c *Client) Upload(ctx context.Context, zip, pdf File) error {
	if zip.Reader == nil || zip.Size <= 0 || pdf.Reader == nil || pdf.Size <= 0 {
		return ErrMissingFile
	}
	url, err := c.endpoint("upload", c.endpoints.Upload)
	if err != nil {
		return err
	}

	resp, err := c.http.R().SetContext(ctx).
		SetFileReader("zip", zip.Name, zip.Reader).
		SetFileReader("pdf", pdf.Name, pdf.Reader).
		Post(url)
	if err := c.check("upload", resp, err); err != nil {
		return err
	}

	var out statusResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Status != statusSuccess {
		return fmt.Errorf("%w: upload returned %q", ErrStatusNotSuccess, out.Status)
	}
	return nil
}

func (c *Client) endpoint(name, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%w: %s", ErrEndpointNotConfigured, name)
	}
	return url, nil
}

// postJSON posts body and decodes the 2xx response into out.
func (c *Client) postJSON(ctx context.Context, name, url string, body, out any) error {
	url, err := c.endpoint(name, url)
	if err != nil {
		return err
	}
	resp, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(url)
	if err := c.check(name, resp, err); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, name, err)
	}
	return nil
}

// check converts transport failures and non-2xx responses into errors.
func (c *Client) check(name string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Warn("webhook request failed", "endpoint", name, "error", err)
		return fmt.Errorf("webhook %s request: %w", name, err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		apiErr := &APIError{
			Endpoint:   name,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       strings.TrimSpace(resp.String()),
		}
		c.logger.Warn("webhook returned error status", "endpoint", name, "status", resp.StatusCode())
		return apiErr
	}
	c.logger.Debug("webhook ok", "endpoint", name, "status", resp.StatusCode(), "duration", resp.Time())
	return nil
}
