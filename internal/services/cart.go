package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yishak-cs/cafe_order/internal/database"
	"github.com/yishak-cs/cafe_order/internal/models"
)

const maxLineQuantity = 20

// CartService manages shopping carts persisted in carts.json
type CartService struct {
	carts *database.JSONCollection[models.Cart]
	menu  *MenuService
	now   func() time.Time
}

// NewCartService opens the cart store in dataDir
func NewCartService(dataDir string, menu *MenuService) (*CartService, error) {
	carts, err := database.OpenJSONCollection[models.Cart](filepath.Join(dataDir, "carts.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cart store: %w", err)
	}
	return &CartService{
		carts: carts,
		menu:  menu,
		now:   time.Now,
	}, nil
}

// Create starts a new empty cart
func (s *CartService) Create() (models.Cart, error) {
	now := s.now().UTC()
	cart := models.Cart{
		ID:        uuid.NewString(),
		Items:     []models.LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.carts.Put(cart.ID, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// Get returns a cart by id
func (s *CartService) Get(id string) (models.Cart, error) {
	cart, err := s.carts.Get(id)
	if err != nil {
		return models.Cart{}, notFound("cart", id, err)
	}
	return cart, nil
}

// AddItem adds a menu item to the cart. A line with the same item, size and
// notes is merged by increasing its quantity.
func (s *CartService) AddItem(id string, req models.AddItemRequest) (models.Cart, error) {
	line, err := buildLine(s.menu, req)
	if err != nil {
		return models.Cart{}, err
	}

	return s.update(id, func(cart *models.Cart) error {
		for i, existing := range cart.Items {
			if existing.ItemID == line.ItemID && existing.Size == line.Size && existing.Notes == line.Notes {
				if existing.Quantity+line.Quantity > maxLineQuantity {
					return fmt.Errorf("at most %d of one item per line: %w", maxLineQuantity, ErrInvalidInput)
				}
				cart.Items[i].Quantity += line.Quantity
				cart.Items[i].UnitPrice = line.UnitPrice
				return nil
			}
		}
		cart.Items = append(cart.Items, line)
		return nil
	})
}

// UpdateItem sets the quantity of the line at index. Zero removes the line.
func (s *CartService) UpdateItem(id string, index, quantity int) (models.Cart, error) {
	if quantity < 0 || quantity > maxLineQuantity {
		return models.Cart{}, fmt.Errorf("quantity must be between 0 and %d: %w", maxLineQuantity, ErrInvalidInput)
	}

	return s.update(id, func(cart *models.Cart) error {
		if index < 0 || index >= len(cart.Items) {
			return fmt.Errorf("cart line %d: %w", index, ErrNotFound)
		}
		if quantity == 0 {
			cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
			return nil
		}
		cart.Items[index].Quantity = quantity
		return nil
	})
}

// RemoveItem deletes the line at index
func (s *CartService) RemoveItem(id string, index int) (models.Cart, error) {
	return s.UpdateItem(id, index, 0)
}

// Clear empties the cart but keeps it
func (s *CartService) Clear(id string) (models.Cart, error) {
	return s.update(id, func(cart *models.Cart) error {
		cart.Items = []models.LineItem{}
		return nil
	})
}

// Delete removes the cart entirely
func (s *CartService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.carts.Delete(id)
}

func (s *CartService) update(id string, fn func(*models.Cart) error) (models.Cart, error) {
	cart, err := s.carts.Update(id, func(cart *models.Cart) error {
		// Work on a copy of the slice so a failed update leaves the stored cart untouched.
		cart.Items = append([]models.LineItem(nil), cart.Items...)
		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = s.now().UTC()
		return nil
	})
	if errors.Is(err, database.ErrRecordNotFound) {
		return models.Cart{}, notFound("cart", id, err)
	}
	return cart, err
}

// buildLine validates a requested item against the menu and prices it from
// the catalog.
func buildLine(menu *MenuService, req models.AddItemRequest) (models.LineItem, error) {
	item, err := menu.Get(req.ItemID)
	if err != nil {
		return models.LineItem{}, err
	}
	if !item.Available {
		return models.LineItem{}, fmt.Errorf("%s is not available right now: %w", item.Name, ErrUnavailable)
	}
	if req.Quantity < 1 || req.Quantity > maxLineQuantity {
		return models.LineItem{}, fmt.Errorf("quantity must be between 1 and %d: %w", maxLineQuantity, ErrInvalidInput)
	}

	size := req.Size
	switch {
	case len(item.Sizes) == 0 && size != "":
		return models.LineItem{}, fmt.Errorf("%s does not come in sizes: %w", item.Name, ErrInvalidInput)
	case len(item.Sizes) > 0 && size == "":
		size = suggestSize(item, "")
		if size == "" {
			return models.LineItem{}, fmt.Errorf("no size of %s is available: %w", item.Name, ErrUnavailable)
		}
	case len(item.Sizes) > 0 && indexOf(item.AvailableSizes(), size) < 0:
		return models.LineItem{}, fmt.Errorf("size %q of %s is not available: %w", size, item.Name, ErrInvalidInput)
	}

	return models.LineItem{
		ItemID:    item.ID,
		Name:      item.Name,
		Size:      size,
		Quantity:  req.Quantity,
		UnitPrice: item.Price,
		Notes:     req.Notes,
	}, nil
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, database.ErrRecordNotFound) {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return err
}
