package services

import (
	"context"
	"sort"

	"github.com/yishak-cs/cafe_order/internal/cache"
	"github.com/yishak-cs/cafe_order/internal/database"
	"github.com/yishak-cs/cafe_order/internal/logging"
	"github.com/yishak-cs/cafe_order/internal/models"
)

const (
	favoritesLimit = 3

	// favoriteScoreWindow is how far below the top pick a favorite may score
	// and still be promoted.
	favoriteScoreWindow = 1
)

// FavoritesProvider answers: "What does a customer generally order most frequently?"
type FavoritesProvider interface {
	FrequentItems(ctx context.Context, customerKey string, limit int) ([]string, error)
}

// RecommendationService handles drink suggestions and the favorites re-rank
type RecommendationService struct {
	menu      *MenuService
	favorites FavoritesProvider
	cache     *cache.Cache
}

// NewRecommendationService creates a new recommendation service.
// favorites and c may be nil.
func NewRecommendationService(menu *MenuService, favorites FavoritesProvider, c *cache.Cache) *RecommendationService {
	return &RecommendationService{
		menu:      menu,
		favorites: favorites,
		cache:     c,
	}
}

// Suggest scores the drinks menu against prefs. When customerKey is set, the
// customer's historical favorites may be promoted to the top pick.
func (s *RecommendationService) Suggest(ctx context.Context, prefs models.PreferenceInput, customerKey string) models.Suggestions {
	result := SuggestDrinks(s.menu.Drinks(), prefs)
	if customerKey == "" || s.favorites == nil {
		return result
	}

	favorites, err := s.Favorites(ctx, customerKey)
	if err != nil {
		// Favorites are an optional refinement; fall back to the plain ranking.
		logging.Warn().Err(err).Msg("Failed to load favorites")
		return result
	}
	return ApplyFavorites(result, favorites)
}

// Favorites returns the customer's most ordered item ids, most frequent first
func (s *RecommendationService) Favorites(ctx context.Context, customerKey string) ([]string, error) {
	key := favoritesCacheKey(customerKey)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached.([]string), nil
		}
	}

	ids, err := s.favorites.FrequentItems(ctx, customerKey, favoritesLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, ids)
	}
	return ids, nil
}

func favoritesCacheKey(customerKey string) string {
	return "favorites:" + customerKey
}

// ApplyFavorites promotes the first alternative that is one of the customer's
// top favorites and scores within one point of the top pick. The previous top
// moves to the head of the alternatives.
func ApplyFavorites(result models.Suggestions, favorites []string) models.Suggestions {
	if result.Top == nil || len(favorites) == 0 {
		return result
	}
	if len(favorites) > favoritesLimit {
		favorites = favorites[:favoritesLimit]
	}

	isFavorite := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		isFavorite[id] = true
	}

	for i, alt := range result.Alternatives {
		if !isFavorite[alt.Item.ID] || alt.Score < result.Top.Score-favoriteScoreWindow {
			continue
		}

		promoted := alt
		promoted.Reasons = append(append([]string{}, alt.Reasons...), "Based on your order history")

		alternatives := make([]models.SuggestionResult, 0, len(result.Alternatives))
		alternatives = append(alternatives, *result.Top)
		alternatives = append(alternatives, result.Alternatives[:i]...)
		alternatives = append(alternatives, result.Alternatives[i+1:]...)
		if len(alternatives) > maxAlternatives {
			alternatives = alternatives[:maxAlternatives]
		}

		return models.Suggestions{Top: &promoted, Alternatives: alternatives}
	}

	return result
}

// OrderHistoryFavorites computes favorites from the JSON order store. It is
// used when no order-history graph is configured.
type OrderHistoryFavorites struct {
	orders *database.OrderRepository
}

// NewOrderHistoryFavorites creates a favorites provider over the order store
func NewOrderHistoryFavorites(orders *database.OrderRepository) *OrderHistoryFavorites {
	return &OrderHistoryFavorites{orders: orders}
}

// FrequentItems totals quantities per item across the customer's orders,
// ignoring cancelled ones.
func (f *OrderHistoryFavorites) FrequentItems(_ context.Context, customerKey string, limit int) ([]string, error) {
	counts := make(map[string]int)
	for _, order := range f.orders.List(models.OrderFilter{Customer: customerKey}) {
		if order.Status == models.StatusCancelled {
			continue
		}
		for _, line := range order.Items {
			counts[line.ItemID] += line.Quantity
		}
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}
