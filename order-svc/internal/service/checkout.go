package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"restaurant-app/order-svc/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultSubmitTimeout = 30 * time.Second

type CheckoutObserver func(outcome domain.Outcome)

type checkoutSubscription struct {
	id       int
	observer CheckoutObserver
}

type CheckoutConfig struct {
	SessionID string
	Timeout   time.Duration
}

// Checkout places orders from one cart. At most one submission is in
// flight, from validation until the cart is cleared or the failure is
// settled; a second Submit in that window is rejected. Observers must not
// call Submit or Dismiss from inside the callback.
type Checkout struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	outcome   domain.Outcome
	inFlight  bool
	observers []checkoutSubscription
	nextID    int

	config    CheckoutConfig
	cart      *CartStore
	gateway   PaymentGateway
	receipts  ReceiptRecorder
	publisher EventPublisher
	logger    *zap.Logger
}

func NewCheckout(config CheckoutConfig, cart *CartStore, gateway PaymentGateway, receipts ReceiptRecorder, publisher EventPublisher, logger *zap.Logger) *Checkout {
	if config.Timeout <= 0 {
		config.Timeout = DefaultSubmitTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{
		outcome:   domain.Outcome{Phase: domain.PhaseIdle},
		config:    config,
		cart:      cart,
		gateway:   gateway,
		receipts:  receipts,
		publisher: publisher,
		logger:    logger.With(zap.String("session_id", config.SessionID)),
	}
}

func (c *Checkout) Status() domain.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// InFlight reports whether a submission has been accepted and not yet settled.
func (c *Checkout) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Checkout) Subscribe(observer CheckoutObserver) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers = append(c.observers, checkoutSubscription{id: id, observer: observer})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.observers {
			if sub.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// Dismiss returns a finished checkout to idle.
func (c *Checkout) Dismiss() domain.Outcome {
	outcome, _ := c.transition(func(current domain.Outcome) (domain.Outcome, error) {
		if current.Phase == domain.PhaseSucceeded || current.Phase == domain.PhaseFailed {
			return domain.Outcome{Phase: domain.PhaseIdle}, nil
		}
		return current, nil
	})
	return outcome
}

// Submit validates the cart, sends the payment and settles the outcome.
// Failures are returned as *SubmitError and leave the cart untouched.
func (c *Checkout) Submit(ctx context.Context) (domain.Outcome, error) {
	var (
		snapshot  domain.CartSnapshot
		request   domain.PaymentRequest
		rejection *SubmitError
	)

	outcome, err := c.transition(func(current domain.Outcome) (domain.Outcome, error) {
		if c.inFlight {
			return current, ErrSubmissionInProgress
		}
		snapshot = c.cart.Snapshot()
		if rejection = validateSnapshot(snapshot); rejection != nil {
			return failedOutcome(rejection), nil
		}
		request = domain.NewPaymentRequest(snapshot)
		c.inFlight = true
		return domain.Outcome{Phase: domain.PhaseSubmitting}, nil
	})
	if err != nil {
		c.logger.Warn("checkout rejected", zap.Error(err))
		return outcome, err
	}
	if rejection != nil {
		c.logger.Warn("attempted to place an invalid order", zap.String("reason", rejection.Reason))
		return outcome, rejection
	}

	c.logger.Info("placing order",
		zap.String("total_amount", request.TotalAmount),
		zap.Int("total_items", request.TotalItems),
		zap.Int("lines", len(request.Data)))

	return c.settle(ctx, snapshot, request)
}

func (c *Checkout) settle(ctx context.Context, snapshot domain.CartSnapshot, request domain.PaymentRequest) (domain.Outcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.callGateway(callCtx, request)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			outcome, _ := c.transition(func(domain.Outcome) (domain.Outcome, error) {
				return domain.Outcome{Phase: domain.PhaseIdle}, nil
			})
			c.release()
			c.logger.Info("order submission canceled")
			return outcome, fmt.Errorf("%w: %w", ErrSubmissionCanceled, ctx.Err())
		}
		return c.fail(ctx, request, classify(err))
	}

	if !resp.Succeeded() {
		reason := resp.ResponseMessage
		if strings.TrimSpace(reason) == "" {
			reason = ErrBusinessRejected.Error()
		}
		return c.fail(ctx, request, &SubmitError{
			Kind:   domain.KindBusiness,
			Reason: reason,
			Err:    fmt.Errorf("%w: response_code=%d outcome_code=%d", ErrBusinessRejected, resp.ResponseCode, resp.OutcomeCode),
		})
	}

	outcome, _ := c.transition(func(domain.Outcome) (domain.Outcome, error) {
		return domain.Outcome{
			Phase:     domain.PhaseSucceeded,
			Reference: resp.TxnRefNo,
			Message:   resp.ResponseMessage,
		}, nil
	})
	c.cart.Clear()
	c.release()
	c.logger.Info("order placed", zap.String("txn_ref_no", resp.TxnRefNo))

	// receipts and events outlive caller cancellation
	bookkeeping := context.WithoutCancel(ctx)
	if c.receipts != nil {
		if err := c.receipts.Record(bookkeeping, newReceipt(c.config.SessionID, resp, snapshot)); err != nil {
			c.logger.Error("failed to record receipt", zap.String("txn_ref_no", resp.TxnRefNo), zap.Error(err))
		}
	}
	c.publish(bookkeeping, domain.OrderEvent{
		Type:        domain.EventOrderPlaced,
		Reference:   resp.TxnRefNo,
		TotalAmount: request.TotalAmount,
		TotalItems:  request.TotalItems,
	})

	return outcome, nil
}

func (c *Checkout) fail(ctx context.Context, request domain.PaymentRequest, failure *SubmitError) (domain.Outcome, error) {
	outcome, _ := c.transition(func(domain.Outcome) (domain.Outcome, error) {
		return failedOutcome(failure), nil
	})
	c.release()
	c.logger.Error("payment failed",
		zap.String("kind", string(failure.Kind)),
		zap.String("reason", failure.Reason),
		zap.Error(failure.Err))

	c.publish(context.WithoutCancel(ctx), domain.OrderEvent{
		Type:        domain.EventOrderFailed,
		TotalAmount: request.TotalAmount,
		TotalItems:  request.TotalItems,
		Reason:      failure.Reason,
	})
	return outcome, failure
}

func (c *Checkout) release() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Checkout) callGateway(ctx context.Context, request domain.PaymentRequest) (resp *domain.PaymentResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = &SubmitError{
				Kind:   domain.KindUnknown,
				Reason: ErrUnexpected.Error(),
				Err:    fmt.Errorf("%w: payment gateway panicked: %v", ErrUnexpected, r),
			}
		}
	}()

	resp, err = c.gateway.MakePayment(ctx, request)
	if err == nil && resp == nil {
		err = fmt.Errorf("%w: empty payment response", domain.ErrTransport)
	}
	return resp, err
}

func (c *Checkout) publish(ctx context.Context, event domain.OrderEvent) {
	if c.publisher == nil {
		return
	}
	event.EventID = uuid.NewString()
	event.SessionID = c.config.SessionID
	event.Timestamp = time.Now().UTC()
	if err := c.publisher.PublishOrderEvent(ctx, event); err != nil {
		c.logger.Warn("failed to publish order event", zap.String("type", event.Type), zap.Error(err))
	}
}

// transition applies next under the state lock and notifies observers in
// order once the lock is released.
func (c *Checkout) transition(next func(current domain.Outcome) (domain.Outcome, error)) (domain.Outcome, error) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	current := c.outcome
	outcome, err := next(current)
	if err != nil {
		c.mu.Unlock()
		return current, err
	}
	if outcome == current {
		c.mu.Unlock()
		return current, nil
	}
	if !domain.CanTransition(current.Phase, outcome.Phase) {
		c.mu.Unlock()
		return current, fmt.Errorf("invalid checkout transition %s -> %s", current.Phase, outcome.Phase)
	}
	c.outcome = outcome
	observers := make([]checkoutSubscription, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, sub := range observers {
		sub.observer(outcome)
	}
	return outcome, nil
}

func validateSnapshot(snapshot domain.CartSnapshot) *SubmitError {
	if len(snapshot.Lines) == 0 {
		return validationError(ErrEmptyCart.Error(), ErrEmptyCart)
	}
	for _, line := range snapshot.Lines {
		if line.Dish.CuisineID == "" {
			return validationError(
				fmt.Sprintf("%s: %s", ErrMissingCuisine, line.Dish.ID),
				fmt.Errorf("%w: %s", ErrMissingCuisine, line.Dish.ID),
			)
		}
	}
	return nil
}

func classify(err error) *SubmitError {
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return submitErr
	}
	if errors.Is(err, domain.ErrTransport) || errors.Is(err, context.DeadlineExceeded) {
		return &SubmitError{Kind: domain.KindTransport, Reason: err.Error(), Err: err}
	}
	return &SubmitError{Kind: domain.KindUnknown, Reason: ErrUnexpected.Error(), Err: err}
}

func failedOutcome(failure *SubmitError) domain.Outcome {
	return domain.Outcome{
		Phase:  domain.PhaseFailed,
		Kind:   failure.Kind,
		Reason: failure.Reason,
	}
}

func newReceipt(sessionID string, resp *domain.PaymentResponse, snapshot domain.CartSnapshot) *domain.Receipt {
	lines := make([]domain.ReceiptLine, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		lines = append(lines, domain.ReceiptLine{
			ItemID:    line.Dish.ID,
			ItemName:  line.Dish.Name,
			CuisineID: line.Dish.CuisineID,
			Price:     line.Dish.Price,
			Quantity:  line.Quantity,
		})
	}
	return &domain.Receipt{
		ID:          uuid.NewString(),
		Reference:   resp.TxnRefNo,
		SessionID:   sessionID,
		Message:     resp.ResponseMessage,
		TotalAmount: snapshot.Totals.Grand.Round(2),
		TotalItems:  snapshot.Totals.Items,
		Lines:       lines,
	}
}
