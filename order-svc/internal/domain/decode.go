package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownDishSchema = errors.New("dish payload has neither id nor item_id")

// The partner API returns dishes in two shapes: list and filter endpoints
// use plain keys, the item endpoint prefixes every key with "item_".
type dishSchema int

const (
	schemaUnknown dishSchema = iota
	schemaCatalog
	schemaItem
)

func detectDishSchema(fields map[string]json.RawMessage) dishSchema {
	if _, ok := fields["id"]; ok {
		return schemaCatalog
	}
	if _, ok := fields["item_id"]; ok {
		return schemaItem
	}
	return schemaUnknown
}

type catalogDish struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ImageURL  string     `json:"image_url"`
	Price     flexString `json:"price"`
	Rating    flexString `json:"rating"`
	CuisineID string     `json:"cuisine_id"`
}

type itemDish struct {
	ItemID       string     `json:"item_id"`
	ItemName     string     `json:"item_name"`
	ItemImageURL string     `json:"item_image_url"`
	ItemPrice    flexString `json:"item_price"`
	ItemRating   flexString `json:"item_rating"`
	CuisineID    string     `json:"cuisine_id"`
}

func (d *Dish) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	switch detectDishSchema(fields) {
	case schemaCatalog:
		var raw catalogDish
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode catalog dish: %w", err)
		}
		*d = Dish{
			ID:        raw.ID,
			Name:      raw.Name,
			ImageURL:  raw.ImageURL,
			Price:     ParsePrice(string(raw.Price)),
			Rating:    string(raw.Rating),
			CuisineID: raw.CuisineID,
		}
	case schemaItem:
		var raw itemDish
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode item dish: %w", err)
		}
		*d = Dish{
			ID:        raw.ItemID,
			Name:      raw.ItemName,
			ImageURL:  raw.ItemImageURL,
			Price:     ParsePrice(string(raw.ItemPrice)),
			Rating:    string(raw.ItemRating),
			CuisineID: raw.CuisineID,
		}
	default:
		return ErrUnknownDishSchema
	}
	return nil
}

// ParsePrice reads a decimal price, falling back to zero on bad input.
func ParsePrice(s string) decimal.Decimal {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return price
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}
