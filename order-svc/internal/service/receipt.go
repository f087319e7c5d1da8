package service

import (
	"context"
	"errors"
	"fmt"

	"restaurant-app/order-svc/internal/domain"

	"go.uber.org/zap"
)

// ReceiptService keeps the history of placed orders.
type ReceiptService struct {
	repo      ReceiptRepository
	qrEncoder QRGenerator
	logger    *zap.Logger
}

func NewReceiptService(repo ReceiptRepository, qr QRGenerator, logger *zap.Logger) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{repo: repo, qrEncoder: qr, logger: logger}
}

func (s *ReceiptService) Record(ctx context.Context, receipt *domain.Receipt) error {
	if receipt == nil || receipt.Reference == "" || len(receipt.Lines) == 0 {
		return errors.New("invalid receipt payload")
	}
	if err := s.repo.CreateReceipt(ctx, receipt); err != nil {
		return fmt.Errorf("failed to create receipt %s: %w", receipt.Reference, err)
	}

	if s.qrEncoder != nil {
		qr, err := s.qrEncoder.Generate(receipt.Reference)
		if err != nil {
			s.logger.Warn("failed to generate receipt qr code", zap.String("reference", receipt.Reference), zap.Error(err))
			return nil
		}
		if err := s.repo.SaveQRCode(ctx, receipt.Reference, qr); err != nil {
			s.logger.Warn("failed to save receipt qr code", zap.String("reference", receipt.Reference), zap.Error(err))
			return nil
		}
		receipt.QRCode = s.QRLink(receipt.Reference)
	}

	s.logger.Info("receipt recorded",
		zap.String("reference", receipt.Reference),
		zap.String("total_amount", receipt.TotalAmount.StringFixed(2)))
	return nil
}

func (s *ReceiptService) Get(ctx context.Context, reference string) (*domain.Receipt, error) {
	receipt, err := s.repo.GetReceipt(ctx, reference)
	if err != nil {
		return nil, err
	}
	receipt.QRCode = s.QRLink(receipt.Reference)
	return receipt, nil
}

func (s *ReceiptService) List(ctx context.Context) ([]domain.Receipt, error) {
	receipts, err := s.repo.ListReceipts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range receipts {
		receipts[i].QRCode = s.QRLink(receipts[i].Reference)
	}
	return receipts, nil
}

// QRCode returns the stored code, regenerating it when the receipt has none.
func (s *ReceiptService) QRCode(ctx context.Context, reference string) ([]byte, error) {
	qr, err := s.repo.GetQRCode(ctx, reference)
	if err != nil {
		return nil, err
	}
	if len(qr) == 0 && s.qrEncoder != nil {
		if regenerated, err := s.qrEncoder.Generate(reference); err == nil {
			if err := s.repo.SaveQRCode(ctx, reference, regenerated); err != nil {
				s.logger.Warn("failed to save regenerated qr code", zap.String("reference", reference), zap.Error(err))
			}
			return regenerated, nil
		}
	}
	return qr, nil
}

func (s *ReceiptService) QRLink(reference string) string {
	return fmt.Sprintf("/api/receipts/%s/qrcode", reference)
}
