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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	cart      *service.CartStore
	checkout  *service.Checkout
	gateway   *mocks.PaymentGateway
	receipts  *mocks.ReceiptRecorder
	publisher *mocks.EventPublisher
}

func newCheckoutFixture(t *testing.T, timeout time.Duration) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		cart:      service.NewCartStore(nil),
		gateway:   mocks.NewPaymentGateway(t),
		receipts:  mocks.NewReceiptRecorder(t),
		publisher: mocks.NewEventPublisher(t),
	}
	f.checkout = service.NewCheckout(service.CheckoutConfig{SessionID: "s-1", Timeout: timeout},
		f.cart, f.gateway, f.receipts, f.publisher, nil)
	return f
}

func publishedEvent(eventType string) interface{} {
	return mock.MatchedBy(func(event domain.OrderEvent) bool {
		return event.Type == eventType && event.SessionID == "s-1" && event.EventID != ""
	})
}

func TestCheckout_Submit(t *testing.T) {
	tests := []struct {
		name        string
		response    *domain.PaymentResponse
		gatewayErr  error
		wantPhase   domain.Phase
		wantKind    domain.ErrorKind
		wantReason  string
		wantErrIs   error
		wantCleared bool
	}{
		{
			name: "success clears cart",
			response: &domain.PaymentResponse{
				ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 200, ResponseMessage: "Payment successful"},
				TxnRefNo:       "TXN-1",
			},
			wantPhase:   domain.PhaseSucceeded,
			wantCleared: true,
		},
		{
			name: "business failure preserves cart",
			response: &domain.PaymentResponse{
				ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 400, ResponseMessage: "Insufficient balance"},
			},
			wantPhase:  domain.PhaseFailed,
			wantKind:   domain.KindBusiness,
			wantReason: "Insufficient balance",
			wantErrIs:  service.ErrBusinessRejected,
		},
		{
			name: "business failure without message",
			response: &domain.PaymentResponse{
				ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 402, ResponseMessage: " "},
			},
			wantPhase:  domain.PhaseFailed,
			wantKind:   domain.KindBusiness,
			wantReason: service.ErrBusinessRejected.Error(),
			wantErrIs:  service.ErrBusinessRejected,
		},
		{
			name:       "transport failure",
			gatewayErr: errors.Join(domain.ErrTransport, errors.New("http error 503")),
			wantPhase:  domain.PhaseFailed,
			wantKind:   domain.KindTransport,
			wantErrIs:  domain.ErrTransport,
		},
		{
			name:       "unclassified failure",
			gatewayErr: errors.New("boom"),
			wantPhase:  domain.PhaseFailed,
			wantKind:   domain.KindUnknown,
			wantReason: service.ErrUnexpected.Error(),
		},
		{
			name:       "nil response is a transport failure",
			wantPhase:  domain.PhaseFailed,
			wantKind:   domain.KindTransport,
			wantErrIs:  domain.ErrTransport,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newCheckoutFixture(t, time.Second)
			f.cart.AddDish(dish("D1", "100.00", "1"))
			f.cart.AddDish(dish("D2", "50.00", "2"))
			f.cart.AddDish(dish("D2", "50.00", "2"))
			before := f.cart.Lines()

			f.gateway.On("MakePayment", mock.Anything, mock.MatchedBy(func(req domain.PaymentRequest) bool {
				return req.TotalAmount == "210.00" && req.TotalItems == 3 && len(req.Data) == 2
			})).Return(testCase.response, testCase.gatewayErr).Once()

			if testCase.wantPhase == domain.PhaseSucceeded {
				f.receipts.On("Record", mock.Anything, mock.MatchedBy(func(r *domain.Receipt) bool {
					return r.Reference == "TXN-1" && r.SessionID == "s-1" && len(r.Lines) == 2 &&
						r.TotalAmount.StringFixed(2) == "210.00"
				})).Return(nil).Once()
				f.publisher.On("PublishOrderEvent", mock.Anything, publishedEvent(domain.EventOrderPlaced)).Return(nil).Once()
			} else {
				f.publisher.On("PublishOrderEvent", mock.Anything, publishedEvent(domain.EventOrderFailed)).Return(nil).Once()
			}

			outcome, err := f.checkout.Submit(context.Background())

			assert.Equal(t, testCase.wantPhase, outcome.Phase)
			assert.Equal(t, outcome, f.checkout.Status())
			if testCase.wantPhase == domain.PhaseSucceeded {
				require.NoError(t, err)
				assert.Equal(t, "TXN-1", outcome.Reference)
				assert.Equal(t, "Payment successful", outcome.Message)
				assert.True(t, f.cart.IsEmpty())
				return
			}

			var submitErr *service.SubmitError
			require.ErrorAs(t, err, &submitErr)
			assert.NotEmpty(t, err.Error())
			assert.Equal(t, testCase.wantKind, submitErr.Kind)
			assert.Equal(t, testCase.wantKind, outcome.Kind)
			if testCase.wantReason != "" {
				assert.Equal(t, testCase.wantReason, outcome.Reason)
			}
			if testCase.wantErrIs != nil {
				assert.ErrorIs(t, err, testCase.wantErrIs)
			}
			assert.Equal(t, before, f.cart.Lines())
		})
	}
}

func TestCheckout_Validation(t *testing.T) {
	tests := []struct {
		name      string
		fill      func(cart *service.CartStore)
		wantErrIs error
	}{
		{
			name:      "empty cart",
			fill:      func(cart *service.CartStore) {},
			wantErrIs: service.ErrEmptyCart,
		},
		{
			name: "dish without cuisine",
			fill: func(cart *service.CartStore) {
				cart.AddDish(dish("D1", "100", "1"))
				cart.AddDish(dish("D2", "50", ""))
			},
			wantErrIs: service.ErrMissingCuisine,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newCheckoutFixture(t, time.Second)
			testCase.fill(f.cart)

			outcome, err := f.checkout.Submit(context.Background())

			var submitErr *service.SubmitError
			require.ErrorAs(t, err, &submitErr)
			assert.Equal(t, domain.KindValidation, submitErr.Kind)
			assert.ErrorIs(t, err, testCase.wantErrIs)
			assert.Equal(t, domain.PhaseFailed, outcome.Phase)
			assert.Equal(t, domain.KindValidation, outcome.Kind)
			f.gateway.AssertNotCalled(t, "MakePayment", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckout_RejectsConcurrentSubmit(t *testing.T) {
	f := newCheckoutFixture(t, 5*time.Second)
	f.cart.AddDish(dish("D1", "100", "1"))

	entered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&domain.PaymentResponse{
			ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 200},
			TxnRefNo:       "TXN-2",
		}, nil).Once()
	f.receipts.On("Record", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.checkout.Submit(context.Background())
		done <- err
	}()

	<-entered
	assert.Equal(t, domain.PhaseSubmitting, f.checkout.Status().Phase)

	outcome, err := f.checkout.Submit(context.Background())
	assert.ErrorIs(t, err, service.ErrSubmissionInProgress)
	assert.Equal(t, domain.PhaseSubmitting, outcome.Phase)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, domain.PhaseSucceeded, f.checkout.Status().Phase)
	f.gateway.AssertNumberOfCalls(t, "MakePayment", 1)
}

func TestCheckout_CancelReturnsToIdle(t *testing.T) {
	f := newCheckoutFixture(t, 5*time.Second)
	f.cart.AddDish(dish("D1", "100", "1"))

	ctx, cancel := context.WithCancel(context.Background())
	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled).Once()

	outcome, err := f.checkout.Submit(ctx)

	assert.ErrorIs(t, err, service.ErrSubmissionCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.PhaseIdle, outcome.Phase)
	assert.Len(t, f.cart.Lines(), 1)
	f.publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
}

func TestCheckout_TimeoutIsTransportFailure(t *testing.T) {
	f := newCheckoutFixture(t, 20*time.Millisecond)
	f.cart.AddDish(dish("D1", "100", "1"))

	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).Once()
	f.publisher.On("PublishOrderEvent", mock.Anything, publishedEvent(domain.EventOrderFailed)).Return(nil).Once()

	outcome, err := f.checkout.Submit(context.Background())

	var submitErr *service.SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, domain.KindTransport, submitErr.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.PhaseFailed, outcome.Phase)
	assert.Len(t, f.cart.Lines(), 1)
}

func TestCheckout_GatewayPanicIsUnknownFailure(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	f.cart.AddDish(dish("D1", "100", "1"))

	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("decoder exploded") }).
		Return(nil, nil).Once()
	f.publisher.On("PublishOrderEvent", mock.Anything, publishedEvent(domain.EventOrderFailed)).Return(nil).Once()

	outcome, err := f.checkout.Submit(context.Background())

	var submitErr *service.SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, domain.KindUnknown, submitErr.Kind)
	assert.ErrorIs(t, err, service.ErrUnexpected)
	assert.Equal(t, domain.PhaseFailed, outcome.Phase)
	assert.Len(t, f.cart.Lines(), 1)
}

func TestCheckout_ObserversSeeOrderedTransitions(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	f.cart.AddDish(dish("D1", "100", "1"))

	var cartEmptyAtSuccess bool
	var phases []domain.Phase
	f.checkout.Subscribe(func(outcome domain.Outcome) {
		phases = append(phases, outcome.Phase)
		if outcome.Phase == domain.PhaseSucceeded {
			cartEmptyAtSuccess = f.cart.IsEmpty()
		}
	})

	var cartEvents int
	f.cart.Subscribe(func(domain.CartSnapshot) { cartEvents++ })

	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Return(&domain.PaymentResponse{
			ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 200},
			TxnRefNo:       "TXN-3",
		}, nil).Once()
	f.receipts.On("Record", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := f.checkout.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Phase{domain.PhaseSubmitting, domain.PhaseSucceeded}, phases)
	assert.False(t, cartEmptyAtSuccess)
	assert.True(t, f.cart.IsEmpty())
	assert.Equal(t, 1, cartEvents)

	assert.Equal(t, domain.PhaseIdle, f.checkout.Dismiss().Phase)
	assert.Equal(t, []domain.Phase{domain.PhaseSubmitting, domain.PhaseSucceeded, domain.PhaseIdle}, phases)
}

func TestCheckout_BookkeepingFailuresDoNotFailOrder(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	f.cart.AddDish(dish("D1", "100", "1"))

	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Return(&domain.PaymentResponse{
			ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 200},
			TxnRefNo:       "TXN-4",
		}, nil).Once()
	f.receipts.On("Record", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	outcome, err := f.checkout.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSucceeded, outcome.Phase)
	assert.True(t, f.cart.IsEmpty())
}

func TestCheckout_ResubmitAfterFailure(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	f.cart.AddDish(dish("D1", "100", "1"))

	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Return(&domain.PaymentResponse{
			ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 400, ResponseMessage: "Insufficient balance"},
		}, nil).Once()
	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Return(&domain.PaymentResponse{
			ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 200},
			TxnRefNo:       "TXN-5",
		}, nil).Once()
	f.receipts.On("Record", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil).Twice()

	_, err := f.checkout.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance", f.checkout.Status().Reason)

	outcome, err := f.checkout.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TXN-5", outcome.Reference)
}

func TestCheckout_ConcurrentSubmitsCallGatewayOnce(t *testing.T) {
	f := newCheckoutFixture(t, time.Second)
	f.cart.AddDish(dish("D1", "100", "1"))

	f.gateway.On("MakePayment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(20 * time.Millisecond) }).
		Return(&domain.PaymentResponse{
			ResponseStatus: domain.ResponseStatus{ResponseCode: 200, OutcomeCode: 200},
			TxnRefNo:       "TXN-6",
		}, nil).Once()
	f.receipts.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.checkout.Submit(context.Background())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			}
		}()
	}
	wg.Wait()

	f.gateway.AssertNumberOfCalls(t, "MakePayment", 1)
	assert.Equal(t, 1, successes)
}
