package service

import (
	"context"
	"fmt"
	"strconv"

	"restaurant-app/order-svc/internal/domain"

	"go.uber.org/zap"
)

type CatalogService struct {
	gateway CatalogGateway
	cache   CatalogCache
	logger  *zap.Logger
}

func NewCatalogService(gateway CatalogGateway, cache CatalogCache, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{gateway: gateway, cache: cache, logger: logger}
}

func (s *CatalogService) ListCuisines(ctx context.Context, page, count int) (*domain.ItemListResponse, error) {
	if page < 1 || count < 1 {
		return nil, fmt.Errorf("%w: page and count must be positive", ErrInvalidCatalogQuery)
	}

	key := "catalog:list:" + strconv.Itoa(page) + ":" + strconv.Itoa(count)
	var cached domain.ItemListResponse
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	resp, err := s.gateway.GetItemList(ctx, page, count)
	if err != nil {
		return nil, fmt.Errorf("failed to list cuisines: %w", err)
	}
	if !resp.Succeeded() {
		return nil, fmt.Errorf("%w: %s", ErrCatalogRejected, resp.ResponseMessage)
	}

	s.store(ctx, key, resp)
	return resp, nil
}

// TopDishes flattens the dishes of every cuisine rated at least minRating.
func (s *CatalogService) TopDishes(ctx context.Context, minRating float64) ([]domain.Dish, error) {
	key := "catalog:filter:" + strconv.FormatFloat(minRating, 'f', -1, 64)
	var cached []domain.Dish
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	resp, err := s.gateway.GetItemByFilter(ctx, minRating)
	if err != nil {
		return nil, fmt.Errorf("failed to filter dishes: %w", err)
	}
	if !resp.Succeeded() {
		return nil, fmt.Errorf("%w: %s", ErrCatalogRejected, resp.ResponseMessage)
	}

	dishes := []domain.Dish{}
	for _, cuisine := range resp.Cuisines {
		dishes = append(dishes, cuisine.Items...)
	}

	s.store(ctx, key, dishes)
	return dishes, nil
}

func (s *CatalogService) GetDish(ctx context.Context, itemID string) (*domain.Dish, error) {
	if itemID == "" {
		return nil, fmt.Errorf("%w: item id is required", ErrInvalidCatalogQuery)
	}

	key := "catalog:item:" + itemID
	var cached domain.Dish
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	resp, err := s.gateway.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dish %s: %w", itemID, err)
	}
	if !resp.Succeeded() {
		return nil, fmt.Errorf("%w: %s", ErrCatalogRejected, resp.ResponseMessage)
	}

	dish := resp.Dish()
	s.store(ctx, key, dish)
	return &dish, nil
}

func (s *CatalogService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *CatalogService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
