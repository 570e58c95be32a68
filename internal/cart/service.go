package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// StockReader is the advisory stock view used to clamp cart quantities.
// Cart mutation never reserves or decrements real stock; the count read here
// is authoritative only at checkout.
type StockReader interface {
	AvailableStock(productID int64) int
}

// Service owns cart line mutation. One logical owner mutates a given cart,
// so operations are sequential per owner; the repository and cache handle
// their own concurrency.
type Service struct {
	repo  Repository
	cache Cache
	stock StockReader
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache, stock StockReader) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		stock: stock,
	}
}

// GetCart returns the owner's cart, an empty one if none exists yet.
func (s *Service) GetCart(ctx context.Context, ownerID string) (*Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		if s.cache != nil {
			cached, cacheErr := s.cache.Get(ctx, ownerID)
			if cacheErr == nil {
				return cached, nil
			}
			if !errors.Is(cacheErr, ErrCacheMiss) {
				log.Printf("cache get error: %v", cacheErr) // log cache error but continue
			}
		}

		loaded, errGet := s.repo.GetCart(ctx, ownerID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) {
			return &Cart{
				OwnerID:   ownerID,
				Lines:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		if s.cache != nil {
			go func() {
				if errSet := s.cache.Set(context.Background(), ownerID, loaded); errSet != nil {
					log.Printf("cache set error: %v", errSet)
				}
			}()
		}

		return loaded, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*Cart), nil
}

// AddLine adds quantity of a product to the cart. If the product has no
// available stock the call is a no-op. The resulting line quantity is clamped
// to the currently available stock.
func (s *Service) AddLine(ctx context.Context, ownerID string, productID int64, quantity int) (*Cart, error) {
	current, err := s.loadForUpdate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	available := s.stock.AvailableStock(productID)
	if quantity <= 0 || available <= 0 {
		return current, nil
	}

	if i := current.FindLine(productID); i >= 0 {
		current.Lines[i].Quantity = clamp(current.Lines[i].Quantity+quantity, 1, available)
	} else {
		current.Lines = append(current.Lines, Line{
			ProductID: productID,
			Quantity:  clamp(quantity, 1, available),
			AddedAt:   time.Now(),
		})
	}

	return s.store(ctx, current)
}

// ChangeQuantity applies a delta to an existing line, clamped to
// [0, available stock]. A resulting quantity of zero removes the line.
// Unknown products are a no-op.
func (s *Service) ChangeQuantity(ctx context.Context, ownerID string, productID int64, delta int) (*Cart, error) {
	current, err := s.loadForUpdate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	i := current.FindLine(productID)
	if i < 0 {
		return current, nil
	}

	available := s.stock.AvailableStock(productID)
	next := clamp(current.Lines[i].Quantity+delta, 0, available)
	if next == 0 {
		current.Lines = append(current.Lines[:i], current.Lines[i+1:]...)
	} else {
		current.Lines[i].Quantity = next
	}

	return s.store(ctx, current)
}

// RemoveLine removes the product's line unconditionally.
func (s *Service) RemoveLine(ctx context.Context, ownerID string, productID int64) (*Cart, error) {
	current, err := s.loadForUpdate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	i := current.FindLine(productID)
	if i < 0 {
		return current, nil
	}
	current.Lines = append(current.Lines[:i], current.Lines[i+1:]...)

	return s.store(ctx, current)
}

// Clear empties the owner's cart.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	if err := s.repo.DeleteCart(ctx, ownerID); err != nil {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(ownerID)
	return nil
}

func (s *Service) loadForUpdate(ctx context.Context, ownerID string) (*Cart, error) {
	current, err := s.repo.GetCart(ctx, ownerID)
	if errors.Is(err, ErrCartNotFound) {
		return &Cart{OwnerID: ownerID}, nil
	}
	if err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) store(ctx context.Context, c *Cart) (*Cart, error) {
	if err := s.repo.UpsertCart(ctx, c); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}

	s.invalidateCache(c.OwnerID)
	return c, nil
}

func (s *Service) invalidateCache(ownerID string) {
	if s.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
