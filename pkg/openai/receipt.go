package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Categories are the spending categories a receipt is sorted into.
var Categories = []string{
	"groceries",
	"dining",
	"transport",
	"shopping",
	"entertainment",
	"health",
	"utilities",
	"travel",
	"other",
}

// ReceiptItem is a single line on a receipt.
type ReceiptItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Receipt is the structured content of a scanned receipt.
type Receipt struct {
	Merchant string        `json:"merchant"`
	Total    float64       `json:"total"`
	Currency string        `json:"currency"`
	Category string        `json:"category"`
	Items    []ReceiptItem `json:"items"`
}

// TotalCents returns Total in minor units.
func (r Receipt) TotalCents() int64 {
	return int64(math.Round(r.Total * 100))
}

const receiptPrompt = `Extract the receipt in the image as a JSON object with the keys
"merchant" (string), "total" (number), "currency" (ISO 4217 code),
"category" (one of: %s) and "items" (array of {"name", "amount"}).
Reply with the JSON object only. If the image is not a receipt reply {"total": 0}.`

var zero = 0.0

// ParseReceipt reads a receipt image with the vision model.
func (c *Client) ParseReceipt(ctx context.Context, contentType string, image []byte) (*Receipt, error) {
	if len(image) == 0 {
		return nil, ErrUnreadableImage
	}

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
	resp, err := c.complete(ctx, completionRequest{
		Model: c.visionModel,
		Messages: []requestMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: fmt.Sprintf(receiptPrompt, strings.Join(Categories, ", "))},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL, Detail: "high"}},
			},
		}},
		MaxTokens:      c.maxTokens,
		Temperature:    &zero,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	return decodeReceipt(resp.Content)
}

func decodeReceipt(content string) (*Receipt, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var r Receipt
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &r); err != nil {
		return nil, errors.Join(ErrUnreadableImage, err)
	}
	if r.Total <= 0 {
		return nil, ErrUnreadableImage
	}

	r.Merchant = strings.TrimSpace(r.Merchant)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if len(r.Currency) != 3 {
		r.Currency = "USD"
	}
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	if !slices.Contains(Categories, r.Category) {
		r.Category = "other"
	}
	if r.Items == nil {
		r.Items = []ReceiptItem{}
	}
	return &r, nil
}
