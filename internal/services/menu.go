package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/yishak-cs/cafe_order/internal/cache"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// foodCategories are menu categories the drink suggester ignores
var foodCategories = map[string]bool{
	"pastry": true,
	"food":   true,
}

// MenuService serves the immutable menu catalog loaded at start-up
type MenuService struct {
	items []models.MenuItem
	byID  map[string]models.MenuItem
	cache *cache.Cache
}

// NewMenuService creates a menu service. c may be nil to disable caching.
func NewMenuService(items []models.MenuItem, c *cache.Cache) *MenuService {
	byID := make(map[string]models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &MenuService{
		items: items,
		byID:  byID,
		cache: c,
	}
}

// List returns menu items matching filter, sorted by category then name
func (s *MenuService) List(filter models.MenuFilter) []models.MenuItem {
	key := "menu:" + filter.Category + ":" + strconv.FormatBool(filter.FeaturedOnly) + ":" + strconv.FormatBool(filter.AvailableOnly)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached.([]models.MenuItem)
		}
	}

	out := make([]models.MenuItem, 0, len(s.items))
	for _, item := range s.items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.FeaturedOnly && !item.Featured {
			continue
		}
		if filter.AvailableOnly && !item.Available {
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})

	if s.cache != nil {
		s.cache.Set(key, out)
	}
	return out
}

// Get returns a single menu item by id
func (s *MenuService) Get(id string) (models.MenuItem, error) {
	item, ok := s.byID[id]
	if !ok {
		return models.MenuItem{}, fmt.Errorf("menu item %q: %w", id, ErrNotFound)
	}
	return item, nil
}

// Categories returns the distinct menu categories in alphabetical order
func (s *MenuService) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range s.items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		out = append(out, item.Category)
	}
	sort.Strings(out)
	return out
}

// All returns the full catalog in menu order
func (s *MenuService) All() []models.MenuItem {
	return s.items
}

// Drinks returns every item outside the food categories, available or not
func (s *MenuService) Drinks() []models.MenuItem {
	var out []models.MenuItem
	for _, item := range s.items {
		if !foodCategories[item.Category] {
			out = append(out, item)
		}
	}
	return out
}
