// Package catalog manages categories and products, including the manual
// display ordering the terminals use for their button grids.
package catalog

import (
	"context"
	"fmt"

	"cafe-pos/internal/bus"
	"cafe-pos/internal/models"
	"cafe-pos/internal/store"
	"cafe-pos/internal/util"

	"go.uber.org/zap"
)

const (
	defaultCategoryColor = "#3B82F6"
	defaultProductColor  = "#FFFFFF"
)

type Service struct {
	store  store.API
	bus    bus.Bus
	logger *zap.Logger
}

func New(st store.API, eventBus bus.Bus) *Service {
	return &Service{
		store:  st,
		bus:    eventBus,
		logger: util.GetLogger(),
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name, color string) (*models.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", models.ErrInvalidArgument)
	}
	if color == "" {
		color = defaultCategoryColor
	}

	category, err := s.store.InsertCategory(ctx, name, color)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.bus.Publish(ctx, models.EventCategoryCreated, map[string]any{
		"id":        category.ID,
		"name":      category.Name,
		"color":     category.Color,
		"sortOrder": category.SortOrder,
	})
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name, color string) error {
	existing, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}

	if err := s.store.UpdateCategory(ctx, id, name, color); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	s.bus.Publish(ctx, models.EventCategoryUpdated, map[string]any{
		"id": id, "name": name, "color": color,
	})
	return nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.bus.Publish(ctx, models.EventCategoryDeleted, map[string]any{"id": id})
	return nil
}

// ReorderCategories overwrites the whole category ordering: each id gets
// its position in sortedIDs as its new sortOrder. An empty slice is a
// valid no-op. Invalid ids fail before any write.
func (s *Service) ReorderCategories(ctx context.Context, sortedIDs []int64) error {
	if err := validateSortIDs(sortedIDs); err != nil {
		return err
	}
	if len(sortedIDs) == 0 {
		s.bus.Publish(ctx, models.EventCategoriesSorted, map[string]any{"sortedIds": sortedIDs})
		return nil
	}

	err := s.store.WithTx(ctx, func(tx store.API) error {
		for index, id := range sortedIDs {
			if err := tx.SetCategorySortOrder(ctx, id, index); err != nil {
				return fmt.Errorf("failed to write sort order for category %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Categories reordered", zap.Int("count", len(sortedIDs)))
	s.bus.Publish(ctx, models.EventCategoriesSorted, map[string]any{"sortedIds": sortedIDs})
	return nil
}

func (s *Service) ListProducts(ctx context.Context, categoryID int64) ([]models.ProductView, error) {
	return s.store.ListProducts(ctx, categoryID)
}

func (s *Service) CreateProduct(ctx context.Context, name string, price float64, categoryID int64, color string) (*models.Product, error) {
	if name == "" {
		return nil, fmt.Errorf("product name is required: %w", models.ErrInvalidArgument)
	}
	if price < 0 {
		return nil, fmt.Errorf("price must not be negative: %w", models.ErrInvalidArgument)
	}
	if color == "" {
		color = defaultProductColor
	}

	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, models.ErrNotFound)
	}

	product, err := s.store.InsertProduct(ctx, name, price, categoryID, color)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.bus.Publish(ctx, models.EventProductCreated, map[string]any{
		"id":         product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"categoryId": product.CategoryID,
		"color":      product.Color,
		"sortOrder":  product.SortOrder,
	})
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, name string, price float64, categoryID int64, color string) error {
	if price < 0 {
		return fmt.Errorf("price must not be negative: %w", models.ErrInvalidArgument)
	}
	if color == "" {
		color = defaultProductColor
	}

	existing, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}

	if err := s.store.UpdateProduct(ctx, id, name, price, categoryID, color); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.bus.Publish(ctx, models.EventProductUpdated, map[string]any{
		"id": id, "name": name, "price": price, "categoryId": categoryID, "color": color,
	})
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.bus.Publish(ctx, models.EventProductDeleted, map[string]any{"id": id})
	return nil
}

// ReorderProducts overwrites the ordering of one category's products.
// Updates are constrained to the category, so ids belonging to another
// category match nothing and that category's ordering is untouched.
func (s *Service) ReorderProducts(ctx context.Context, categoryID int64, sortedIDs []int64) error {
	if categoryID < 1 {
		return fmt.Errorf("categoryId is required: %w", models.ErrInvalidArgument)
	}
	if err := validateSortIDs(sortedIDs); err != nil {
		return err
	}
	if len(sortedIDs) == 0 {
		s.bus.Publish(ctx, models.EventProductsSorted, map[string]any{
			"categoryId": categoryID, "sortedIds": sortedIDs,
		})
		return nil
	}

	err := s.store.WithTx(ctx, func(tx store.API) error {
		for index, id := range sortedIDs {
			if err := tx.SetProductSortOrder(ctx, id, categoryID, index); err != nil {
				return fmt.Errorf("failed to write sort order for product %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Products reordered",
		zap.Int64("category_id", categoryID),
		zap.Int("count", len(sortedIDs)))
	s.bus.Publish(ctx, models.EventProductsSorted, map[string]any{
		"categoryId": categoryID, "sortedIds": sortedIDs,
	})
	return nil
}

// validateSortIDs requires every id to be positive and distinct. The count
// of valid ids must equal the input length, so one bad entry rejects the
// whole request before anything is written.
func validateSortIDs(ids []int64) error {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id < 1 {
			return fmt.Errorf("sort ids must be positive integers: %w", models.ErrInvalidArgument)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate sort id %d: %w", id, models.ErrInvalidArgument)
		}
		seen[id] = struct{}{}
	}
	return nil
}
