package service

import (
	"context"

	"restaurant-app/order-svc/internal/domain"
)

type PaymentGateway interface {
	MakePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResponse, error)
}

type CatalogGateway interface {
	GetItemList(ctx context.Context, page, count int) (*domain.ItemListResponse, error)
	GetItemByID(ctx context.Context, itemID string) (*domain.ItemByIDResponse, error)
	GetItemByFilter(ctx context.Context, minRating float64) (*domain.ItemByFilterResponse, error)
}

type CatalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

type ReceiptRepository interface {
	CreateReceipt(ctx context.Context, receipt *domain.Receipt) error
	SaveQRCode(ctx context.Context, reference string, qr []byte) error
	GetReceipt(ctx context.Context, reference string) (*domain.Receipt, error)
	ListReceipts(ctx context.Context) ([]domain.Receipt, error)
	GetQRCode(ctx context.Context, reference string) ([]byte, error)
}

type ReceiptRecorder interface {
	Record(ctx context.Context, receipt *domain.Receipt) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type CatalogServiceInterface interface {
	ListCuisines(ctx context.Context, page, count int) (*domain.ItemListResponse, error)
	TopDishes(ctx context.Context, minRating float64) ([]domain.Dish, error)
	GetDish(ctx context.Context, itemID string) (*domain.Dish, error)
}

type ReceiptServiceInterface interface {
	ReceiptRecorder
	Get(ctx context.Context, reference string) (*domain.Receipt, error)
	List(ctx context.Context) ([]domain.Receipt, error)
	QRCode(ctx context.Context, reference string) ([]byte, error)
	QRLink(reference string) string
}

type SessionProvider interface {
	Session(id string) *Session
}

var (
	_ CatalogServiceInterface = (*CatalogService)(nil)
	_ ReceiptServiceInterface = (*ReceiptService)(nil)
	_ SessionProvider         = (*Sessions)(nil)
)
