package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/yishak-cs/cafe_order/internal/cache"
	"github.com/yishak-cs/cafe_order/internal/database"
	"github.com/yishak-cs/cafe_order/internal/models"
)

func ranked(scores map[string]int, order ...string) models.Suggestions {
	results := make([]models.SuggestionResult, 0, len(order))
	for _, id := range order {
		results = append(results, models.SuggestionResult{
			Item:    models.MenuItem{ID: id},
			Score:   scores[id],
			Reasons: []string{"base"},
		})
	}
	top := results[0]
	return models.Suggestions{Top: &top, Alternatives: results[1:]}
}

func ids(s models.Suggestions) []string {
	out := []string{s.Top.Item.ID}
	for _, alt := range s.Alternatives {
		out = append(out, alt.Item.ID)
	}
	return out
}

func TestApplyFavorites(t *testing.T) {
	scores := map[string]int{"a": 10, "b": 9, "c": 8, "d": 5}

	tests := []struct {
		name      string
		favorites []string
		want      []string
	}{
		{"no favorites", nil, []string{"a", "b", "c", "d"}},
		{"favorite within one point", []string{"b"}, []string{"b", "a", "c", "d"}},
		{"favorite too far behind", []string{"c", "d"}, []string{"a", "b", "c", "d"}},
		{"top already a favorite", []string{"a"}, []string{"a", "b", "c", "d"}},
		{"only top three favorites count", []string{"x", "y", "z", "b"}, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFavorites(ranked(scores, "a", "b", "c", "d"), tt.favorites)
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("order = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestApplyFavoritesAddsReason(t *testing.T) {
	in := ranked(map[string]int{"a": 4, "b": 4}, "a", "b")
	got := ApplyFavorites(in, []string{"b"})

	want := []string{"base", "Based on your order history"}
	if !reflect.DeepEqual(got.Top.Reasons, want) {
		t.Errorf("reasons = %v, want %v", got.Top.Reasons, want)
	}
	if len(in.Alternatives[0].Reasons) != 1 {
		t.Error("input suggestion was modified")
	}
}

func TestApplyFavoritesEmptyResult(t *testing.T) {
	empty := models.Suggestions{Alternatives: []models.SuggestionResult{}}
	if got := ApplyFavorites(empty, []string{"latte"}); got.Top != nil {
		t.Errorf("top = %+v, want nil", got.Top)
	}
}

func TestOrderHistoryFavorites(t *testing.T) {
	repo, err := database.NewOrderRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewOrderRepository: %v", err)
	}

	orders := []models.Order{
		{ID: "1", Customer: testCustomer, Status: models.StatusCompleted, Items: []models.LineItem{{ItemID: "latte", Quantity: 2}, {ItemID: "mocha", Quantity: 1}}},
		{ID: "2", Customer: testCustomer, Status: models.StatusPending, Items: []models.LineItem{{ItemID: "americano", Quantity: 1}, {ItemID: "mocha", Quantity: 1}}},
		{ID: "3", Customer: testCustomer, Status: models.StatusCancelled, Items: []models.LineItem{{ItemID: "espresso", Quantity: 9}}},
		{ID: "4", Customer: models.Customer{Name: "Other", Phone: "0009999999"}, Status: models.StatusCompleted, Items: []models.LineItem{{ItemID: "karak-chai", Quantity: 5}}},
	}
	for _, o := range orders {
		if err := repo.Save(o); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := NewOrderHistoryFavorites(repo).FrequentItems(context.Background(), testCustomer.Key(), 3)
	if err != nil {
		t.Fatalf("FrequentItems: %v", err)
	}
	want := []string{"latte", "mocha", "americano"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("favorites = %v, want %v", got, want)
	}
}

type stubFavorites struct {
	ids   []string
	err   error
	calls int
}

func (s *stubFavorites) FrequentItems(context.Context, string, int) ([]string, error) {
	s.calls++
	return s.ids, s.err
}

func TestRecommendationSuggest(t *testing.T) {
	menu := newTestMenu(t)
	c := cache.New(time.Minute)
	defer c.Stop()

	prefs := models.PreferenceInput{Temperature: models.TempHot}
	plain := SuggestDrinks(menu.Drinks(), prefs)
	if plain.Top == nil || len(plain.Alternatives) == 0 {
		t.Fatal("expected a ranked menu")
	}

	fav := &stubFavorites{ids: []string{plain.Alternatives[0].Item.ID}}
	svc := NewRecommendationService(menu, fav, c)

	got := svc.Suggest(context.Background(), prefs, testCustomer.Key())
	want := ApplyFavorites(plain, fav.ids)
	if got.Top.Item.ID != want.Top.Item.ID {
		t.Errorf("top = %s, want %s", got.Top.Item.ID, want.Top.Item.ID)
	}

	_ = svc.Suggest(context.Background(), prefs, testCustomer.Key())
	if fav.calls != 1 {
		t.Errorf("favorites loaded %d times, want 1 (cached)", fav.calls)
	}

	anon := svc.Suggest(context.Background(), prefs, "")
	if anon.Top.Item.ID != plain.Top.Item.ID {
		t.Errorf("anonymous top = %s, want %s", anon.Top.Item.ID, plain.Top.Item.ID)
	}
}

func TestRecommendationSuggestFavoritesError(t *testing.T) {
	menu := newTestMenu(t)
	svc := NewRecommendationService(menu, &stubFavorites{err: errors.New("neo4j down")}, nil)

	prefs := models.PreferenceInput{Caffeine: models.CaffeineHigh}
	got := svc.Suggest(context.Background(), prefs, testCustomer.Key())
	plain := SuggestDrinks(menu.Drinks(), prefs)
	if !reflect.DeepEqual(got, plain) {
		t.Error("favorites failure changed the ranking")
	}
}
