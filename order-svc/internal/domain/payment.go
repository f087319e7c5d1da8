package domain

import (
	"encoding/json"
)

// StatusSuccess is the value both embedded status codes carry on success.
const StatusSuccess = 200

type ResponseStatus struct {
	ResponseCode    int    `json:"response_code"`
	OutcomeCode     int    `json:"outcome_code"`
	ResponseMessage string `json:"response_message"`
}

func (s ResponseStatus) Succeeded() bool {
	return s.ResponseCode == StatusSuccess && s.OutcomeCode == StatusSuccess
}

type PaymentRequest struct {
	TotalAmount string        `json:"total_amount"`
	TotalItems  int           `json:"total_items"`
	Data        []PaymentLine `json:"data"`
}

type PaymentLine struct {
	CuisineID    string      `json:"cuisine_id"`
	ItemID       string      `json:"item_id"`
	ItemPrice    json.Number `json:"item_price"`
	ItemQuantity int         `json:"item_quantity"`
}

// NewPaymentRequest builds the payment payload from one cart snapshot.
func NewPaymentRequest(snapshot CartSnapshot) PaymentRequest {
	lines := make([]PaymentLine, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		lines = append(lines, PaymentLine{
			CuisineID:    line.Dish.CuisineID,
			ItemID:       line.Dish.ID,
			ItemPrice:    json.Number(line.Dish.Price.StringFixed(2)),
			ItemQuantity: line.Quantity,
		})
	}
	return PaymentRequest{
		TotalAmount: snapshot.Totals.Grand.StringFixed(2),
		TotalItems:  snapshot.Totals.Items,
		Data:        lines,
	}
}

type PaymentResponse struct {
	ResponseStatus
	TxnRefNo string `json:"txn_ref_no"`
}

type ItemListResponse struct {
	ResponseStatus
	Page       int       `json:"page"`
	Count      int       `json:"count"`
	TotalPages int       `json:"total_pages"`
	TotalItems int       `json:"total_items"`
	Cuisines   []Cuisine `json:"cuisines"`
}

type ItemByFilterResponse struct {
	ResponseStatus
	Cuisines []Cuisine `json:"cuisines"`
}

type ItemByIDResponse struct {
	ResponseStatus
	CuisineID       string      `json:"cuisine_id"`
	CuisineName     string      `json:"cuisine_name"`
	CuisineImageURL string      `json:"cuisine_image_url"`
	ItemID          string      `json:"item_id"`
	ItemName        string      `json:"item_name"`
	ItemPrice       json.Number `json:"item_price"`
	ItemRating      json.Number `json:"item_rating"`
	ItemImageURL    string      `json:"item_image_url"`
}

func (r ItemByIDResponse) Dish() Dish {
	return Dish{
		ID:        r.ItemID,
		Name:      r.ItemName,
		ImageURL:  r.ItemImageURL,
		Price:     ParsePrice(r.ItemPrice.String()),
		Rating:    r.ItemRating.String(),
		CuisineID: r.CuisineID,
	}
}
