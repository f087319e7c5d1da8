package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	CGSTRate = decimal.RequireFromString("0.025")
	SGSTRate = decimal.RequireFromString("0.025")
)

var (
	ErrTransport       = errors.New("transport failure")
	ErrReceiptNotFound = errors.New("receipt not found")
)

// Dish is a catalog item. ID is the only key used for equality and cart
// aggregation. CuisineID is filled in at catalog fetch time when the
// endpoint allows it.
type Dish struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Rating    string          `json:"rating,omitempty"`
	CuisineID string          `json:"cuisine_id,omitempty"`
}

type Cuisine struct {
	CuisineID       string `json:"cuisine_id"`
	CuisineName     string `json:"cuisine_name"`
	CuisineImageURL string `json:"cuisine_image_url,omitempty"`
	Items           []Dish `json:"items,omitempty"`
}

// UnmarshalJSON stamps the cuisine id onto every embedded dish.
func (c *Cuisine) UnmarshalJSON(data []byte) error {
	type plain Cuisine
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = Cuisine(decoded)
	for i := range c.Items {
		if c.Items[i].CuisineID == "" {
			c.Items[i].CuisineID = c.CuisineID
		}
	}
	return nil
}

type CartLine struct {
	Dish     Dish `json:"dish"`
	Quantity int  `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Dish.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Totals struct {
	Net   decimal.Decimal
	CGST  decimal.Decimal
	SGST  decimal.Decimal
	Grand decimal.Decimal
	Items int
}

func ComputeTotals(lines []CartLine) Totals {
	net := decimal.Zero
	items := 0
	for _, line := range lines {
		net = net.Add(line.LineTotal())
		items += line.Quantity
	}
	cgst := net.Mul(CGSTRate)
	sgst := net.Mul(SGSTRate)
	return Totals{
		Net:   net,
		CGST:  cgst,
		SGST:  sgst,
		Grand: net.Add(cgst).Add(sgst),
		Items: items,
	}
}

func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"net_total":   t.Net.StringFixed(2),
		"cgst":        t.CGST.StringFixed(2),
		"sgst":        t.SGST.StringFixed(2),
		"grand_total": t.Grand.StringFixed(2),
		"total_items": t.Items,
	})
}

type CartSnapshot struct {
	Lines  []CartLine `json:"lines"`
	Totals Totals     `json:"totals"`
}

type Receipt struct {
	ID          string          `json:"id"`
	Reference   string          `json:"reference"`
	SessionID   string          `json:"session_id"`
	Message     string          `json:"message"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalItems  int             `json:"total_items"`
	QRCode      string          `json:"qr_code,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Lines       []ReceiptLine   `json:"lines"`
}

type ReceiptLine struct {
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	CuisineID string          `json:"cuisine_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

const (
	EventOrderPlaced = "order_placed"
	EventOrderFailed = "order_failed"
)

type OrderEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	SessionID   string    `json:"session_id"`
	Reference   string    `json:"reference,omitempty"`
	TotalAmount string    `json:"total_amount"`
	TotalItems  int       `json:"total_items"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
