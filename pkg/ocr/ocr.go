// Package ocr is a thin client for an external receipt-scanning service.
// The service takes a receipt image and returns structured line items; the
// caller turns those into an expense draft for the user to confirm.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client represents an OCR client.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

// ReceiptItem is one line item parsed off a receipt.
type ReceiptItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Receipt is the structured result of scanning a receipt image.
type Receipt struct {
	MerchantName  string        `json:"merchant_name"`
	Datetime      string        `json:"datetime"`
	Items         []ReceiptItem `json:"items"`
	SubTotal      float64       `json:"sub_total"`
	Tax           float64       `json:"tax"`
	ServiceCharge float64       `json:"service_charge"`
	Total         float64       `json:"total"`
}

// NewClient creates a new OCR client. apiKey may be empty if the service
// does not require one.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether a scanning service is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiURL != ""
}

// ScanReceipt uploads a receipt image and returns the parsed result.
func (c *Client) ScanReceipt(ctx context.Context, image io.Reader, filename string) (*Receipt, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to copy image to form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("scan service returned %d: %s", resp.StatusCode, raw)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("failed to decode scan response: %w", err)
	}
	return &receipt, nil
}
