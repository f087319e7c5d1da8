package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"restaurant-app/order-svc/internal/domain"
	"restaurant-app/order-svc/internal/mocks"
	"restaurant-app/order-svc/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var okStatus = domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 200, ResponseMessage: "ok"}

func TestCatalogService_ListCuisines(t *testing.T) {
	listResponse := &domain.ItemListResponse{
		ResponseStatus: okStatus,
		Page:           1,
		Count:          10,
		TotalPages:     2,
		Cuisines:       []domain.Cuisine{{CuisineID: "1", CuisineName: "Indian"}},
	}

	tests := []struct {
		name       string
		page       int
		count      int
		cacheHit   bool
		cacheErr   error
		response   *domain.ItemListResponse
		gatewayErr error
		wantErr    error
		wantStore  bool
	}{
		{
			name:      "cache miss fetches and stores",
			page:      1,
			count:     10,
			response:  listResponse,
			wantStore: true,
		},
		{
			name:     "cache hit skips gateway",
			page:     1,
			count:    10,
			cacheHit: true,
		},
		{
			name:      "cache error falls through to gateway",
			page:      1,
			count:     10,
			cacheErr:  errors.New("redis down"),
			response:  listResponse,
			wantStore: true,
		},
		{
			name:  "rejected by partner",
			page:  1,
			count: 10,
			response: &domain.ItemListResponse{
				ResponseStatus: domain.ResponseStatus{ResponseCode: 400, OutcomeCode: 400, ResponseMessage: "bad page"},
			},
			wantErr: service.ErrCatalogRejected,
		},
		{
			name:       "transport failure",
			page:       1,
			count:      10,
			gatewayErr: domain.ErrTransport,
			wantErr:    domain.ErrTransport,
		},
		{
			name:    "invalid page",
			page:    0,
			count:   10,
			wantErr: service.ErrInvalidCatalogQuery,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			gateway := mocks.NewCatalogGateway(t)
			cache := mocks.NewCatalogCache(t)
			svc := service.NewCatalogService(gateway, cache, nil)

			if testCase.page > 0 {
				cache.On("Get", mock.Anything, "catalog:list:1:10", mock.Anything).
					Run(func(args mock.Arguments) {
						if testCase.cacheHit {
							*args.Get(2).(*domain.ItemListResponse) = *listResponse
						}
					}).
					Return(testCase.cacheHit, testCase.cacheErr).Once()
			}
			if testCase.page > 0 && !testCase.cacheHit {
				gateway.On("GetItemList", mock.Anything, testCase.page, testCase.count).
					Return(testCase.response, testCase.gatewayErr).Once()
			}
			if testCase.wantStore {
				cache.On("Set", mock.Anything, "catalog:list:1:10", testCase.response).Return(nil).Once()
			}

			result, err := svc.ListCuisines(context.Background(), testCase.page, testCase.count)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Indian", result.Cuisines[0].CuisineName)
			assert.Equal(t, 2, result.TotalPages)
		})
	}
}

func TestCatalogService_TopDishes(t *testing.T) {
	gateway := mocks.NewCatalogGateway(t)
	svc := service.NewCatalogService(gateway, nil, nil)

	gateway.On("GetItemByFilter", mock.Anything, 4.5).Return(&domain.ItemByFilterResponse{
		ResponseStatus: okStatus,
		Cuisines: []domain.Cuisine{
			{CuisineID: "1", Items: []domain.Dish{dish("11", "100", "1"), dish("12", "120", "1")}},
			{CuisineID: "2", Items: []domain.Dish{dish("21", "80", "2")}},
		},
	}, nil).Once()

	dishes, err := svc.TopDishes(context.Background(), 4.5)

	require.NoError(t, err)
	require.Len(t, dishes, 3)
	assert.Equal(t, []string{"11", "12", "21"}, []string{dishes[0].ID, dishes[1].ID, dishes[2].ID})
	assert.Equal(t, "2", dishes[2].CuisineID)
}

func TestCatalogService_GetDish(t *testing.T) {
	tests := []struct {
		name     string
		itemID   string
		response *domain.ItemByIDResponse
		wantErr  error
	}{
		{
			name:   "found",
			itemID: "41",
			response: &domain.ItemByIDResponse{
				ResponseStatus: okStatus,
				CuisineID:      "4",
				ItemID:         "41",
				ItemName:       "Burrito",
				ItemPrice:      "150",
			},
		},
		{
			name:   "rejected",
			itemID: "404",
			response: &domain.ItemByIDResponse{
				ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 404, ResponseMessage: "not found"},
			},
			wantErr: service.ErrCatalogRejected,
		},
		{
			name:    "empty id",
			itemID:  "",
			wantErr: service.ErrInvalidCatalogQuery,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			gateway := mocks.NewCatalogGateway(t)
			svc := service.NewCatalogService(gateway, nil, nil)
			if testCase.response != nil {
				gateway.On("GetItemByID", mock.Anything, testCase.itemID).Return(testCase.response, nil).Once()
			}

			result, err := svc.GetDish(context.Background(), testCase.itemID)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Burrito", result.Name)
			assert.Equal(t, "4", result.CuisineID)
			assert.Equal(t, "150.00", result.Price.StringFixed(2))
		})
	}
}

func newTestReceipt(reference string) *domain.Receipt {
	return &domain.Receipt{
		ID:          "r-" + reference,
		Reference:   reference,
		SessionID:   "s-1",
		TotalAmount: decimal.RequireFromString("105.00"),
		TotalItems:  1,
		Lines: []domain.ReceiptLine{
			{ItemID: "D1", ItemName: "Dish D1", CuisineID: "1", Price: decimal.RequireFromString("100"), Quantity: 1},
		},
	}
}

func TestReceiptService_Record(t *testing.T) {
	tests := []struct {
		name      string
		receipt   *domain.Receipt
		createErr error
		qrErr     error
		wantErr   bool
		wantQR    bool
	}{
		{
			name:    "stores receipt and qr code",
			receipt: newTestReceipt("TXN-1"),
			wantQR:  true,
		},
		{
			name:    "qr failure still records receipt",
			receipt: newTestReceipt("TXN-2"),
			qrErr:   errors.New("encoder failed"),
		},
		{
			name:      "repository error",
			receipt:   newTestReceipt("TXN-3"),
			createErr: assert.AnError,
			wantErr:   true,
		},
		{
			name:    "missing reference",
			receipt: &domain.Receipt{Lines: []domain.ReceiptLine{{ItemID: "D1"}}},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewReceiptRepository(t)
			qr := mocks.NewQRGenerator(t)
			svc := service.NewReceiptService(repo, qr, nil)

			if testCase.receipt.Reference != "" {
				repo.On("CreateReceipt", mock.Anything, testCase.receipt).Return(testCase.createErr).Once()
				if testCase.createErr == nil {
					if testCase.qrErr != nil {
						qr.On("Generate", testCase.receipt.Reference).Return(nil, testCase.qrErr).Once()
					} else {
						qr.On("Generate", testCase.receipt.Reference).Return([]byte("png"), nil).Once()
						repo.On("SaveQRCode", mock.Anything, testCase.receipt.Reference, []byte("png")).Return(nil).Once()
					}
				}
			}

			err := svc.Record(context.Background(), testCase.receipt)

			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if testCase.wantQR {
				assert.Equal(t, "/api/receipts/"+testCase.receipt.Reference+"/qrcode", testCase.receipt.QRCode)
			} else {
				assert.Empty(t, testCase.receipt.QRCode)
			}
		})
	}
}

func TestReceiptService_QRCode(t *testing.T) {
	tests := []struct {
		name      string
		stored    []byte
		getErr    error
		wantQR    []byte
		wantErrIs error
	}{
		{
			name:   "stored code",
			stored: []byte("stored"),
			wantQR: []byte("stored"),
		},
		{
			name:   "missing code is regenerated",
			stored: nil,
			wantQR: []byte("fresh"),
		},
		{
			name:      "unknown receipt",
			getErr:    domain.ErrReceiptNotFound,
			wantErrIs: domain.ErrReceiptNotFound,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo := mocks.NewReceiptRepository(t)
			qr := mocks.NewQRGenerator(t)
			svc := service.NewReceiptService(repo, qr, nil)

			repo.On("GetQRCode", mock.Anything, "TXN-1").Return(testCase.stored, testCase.getErr).Once()
			if testCase.getErr == nil && len(testCase.stored) == 0 {
				qr.On("Generate", "TXN-1").Return([]byte("fresh"), nil).Once()
				repo.On("SaveQRCode", mock.Anything, "TXN-1", []byte("fresh")).Return(nil).Once()
			}

			result, err := svc.QRCode(context.Background(), "TXN-1")

			if testCase.wantErrIs != nil {
				assert.ErrorIs(t, err, testCase.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.wantQR, result)
		})
	}
}

func TestReceiptService_ListSetsQRLinks(t *testing.T) {
	repo := mocks.NewReceiptRepository(t)
	svc := service.NewReceiptService(repo, nil, nil)

	repo.On("ListReceipts", mock.Anything).Return([]domain.Receipt{*newTestReceipt("A"), *newTestReceipt("B")}, nil).Once()

	receipts, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "/api/receipts/A/qrcode", receipts[0].QRCode)
	assert.Equal(t, "/api/receipts/B/qrcode", receipts[1].QRCode)
}

func TestDefaultQRGenerator(t *testing.T) {
	gen := &service.DefaultQRGenerator{BaseURL: "http://localhost:8081/"}
	qr, err := gen.Generate("TXN-123")

	assert.NoError(t, err)
	assert.NotEmpty(t, qr)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, qr[:4])
}

func newBareSession(id string) *service.Session {
	return &service.Session{ID: id, Cart: service.NewCartStore(nil)}
}

func TestSessions_ReusesSessionPerID(t *testing.T) {
	created := 0
	sessions := service.NewSessions(service.SessionsConfig{}, func(id string) *service.Session {
		created++
		return newBareSession(id)
	}, nil)

	first := sessions.Session("a")
	again := sessions.Session("a")
	other := sessions.Session("b")

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, created)
}

func TestSessions_SweepDropsIdleSessions(t *testing.T) {
	now := time.Unix(1700000000, 0)
	sessions := service.NewSessions(service.SessionsConfig{
		IdleTTL: time.Minute,
		Now:     func() time.Time { return now },
	}, newBareSession, nil)

	first := sessions.Session("a")
	now = now.Add(30 * time.Second)
	sessions.Session("b")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, sessions.Sweep())
	assert.Equal(t, 1, sessions.Len())
	assert.NotSame(t, first, sessions.Session("a"))
}

func TestSessions_BoundEvictsLeastRecentlyUsed(t *testing.T) {
	sessions := service.NewSessions(service.SessionsConfig{MaxSessions: 2}, newBareSession, nil)

	a := sessions.Session("a")
	b := sessions.Session("b")
	sessions.Session("a")
	sessions.Session("c")

	assert.Equal(t, 2, sessions.Len())
	assert.Same(t, a, sessions.Session("a"))
	assert.NotSame(t, b, sessions.Session("b"))
}

func TestSessions_KeepsSessionWithSubmissionInFlight(t *testing.T) {
	now := time.Unix(1700000000, 0)
	var clock sync.Mutex
	tick := func(d time.Duration) {
		clock.Lock()
		now = now.Add(d)
		clock.Unlock()
	}

	payments := mocks.NewPaymentGateway(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	payments.On("MakePayment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(nil, domain.ErrTransport).Once()

	sessions := service.NewSessions(service.SessionsConfig{
		IdleTTL:     time.Minute,
		MaxSessions: 2,
		Now: func() time.Time {
			clock.Lock()
			defer clock.Unlock()
			return now
		},
	}, func(id string) *service.Session {
		cart := service.NewCartStore(nil)
		checkout := service.NewCheckout(service.CheckoutConfig{SessionID: id, Timeout: time.Minute}, cart, payments, nil, nil, nil)
		return &service.Session{ID: id, Cart: cart, Checkout: checkout}
	}, nil)

	busy := sessions.Session("busy")
	busy.Cart.AddDish(dish("D1", "100", "1"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		busy.Checkout.Submit(context.Background())
	}()
	<-entered
	require.True(t, busy.Busy())

	sessions.Session("idle")
	tick(2 * time.Minute)

	assert.Equal(t, 1, sessions.Sweep())
	assert.Same(t, busy, sessions.Session("busy"))

	tick(2 * time.Minute)
	sessions.Session("x")
	sessions.Session("y")
	assert.Same(t, busy, sessions.Session("busy"))

	close(release)
	<-done
	assert.False(t, busy.Busy())
}
