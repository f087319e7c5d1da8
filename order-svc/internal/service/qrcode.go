package service

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(reference string) ([]byte, error)
}

// DefaultQRGenerator encodes a link to the receipt page as a PNG.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Generate(reference string) ([]byte, error) {
	qrData := fmt.Sprintf("%s/receipts/%s", strings.TrimRight(g.BaseURL, "/"), reference)
	return qrcode.Encode(qrData, qrcode.Medium, 256)
}
