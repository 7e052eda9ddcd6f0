package services

import (
	"reflect"
	"testing"

	"github.com/yishak-cs/cafe_order/internal/database"
	"github.com/yishak-cs/cafe_order/internal/models"
)

func float(v float64) *float64 { return &v }
func boolPtr(v bool) *bool     { return &v }

func contains(values []string, want string) bool {
	return indexOf(values, want) >= 0
}

func americanoMenu() []models.MenuItem {
	return []models.MenuItem{{
		ID:          "americano",
		Name:        "Americano",
		Description: "Hot & iced",
		Price:       65,
		Available:   true,
	}}
}

func TestSuggestDrinksAmericano(t *testing.T) {
	prefs := models.PreferenceInput{
		Temperature:   models.TempIced,
		Caffeine:      models.CaffeineHigh,
		Sweetness:     models.SweetLow,
		Milk:          models.MilkDairy,
		Budget:        float(70),
		FeaturedBoost: boolPtr(false),
		TimeOfDay:     models.TimeAny,
	}

	got := SuggestDrinks(americanoMenu(), prefs)
	if got.Top == nil {
		t.Fatal("expected a top suggestion")
	}
	if got.Top.Item.ID != "americano" {
		t.Errorf("top = %s, want americano", got.Top.Item.ID)
	}
	// iced +3, caffeine +3, sweetness +2, budget +2
	if got.Top.Score != 10 {
		t.Errorf("score = %d, want 10", got.Top.Score)
	}
	for _, reason := range []string{"Works well iced", "Within budget", "Matches your caffeine preference"} {
		if !contains(got.Top.Reasons, reason) {
			t.Errorf("reasons %v missing %q", got.Top.Reasons, reason)
		}
	}
	if len(got.Alternatives) != 0 {
		t.Errorf("alternatives = %d, want 0", len(got.Alternatives))
	}
}

func TestSuggestDrinksEmptyMenu(t *testing.T) {
	menus := map[string][]models.MenuItem{
		"nil":         nil,
		"unavailable": {{ID: "latte", Name: "Latte", Available: false}},
	}
	for name, menu := range menus {
		t.Run(name, func(t *testing.T) {
			got := SuggestDrinks(menu, models.PreferenceInput{})
			if got.Top != nil {
				t.Errorf("top = %+v, want nil", got.Top)
			}
			if got.Alternatives == nil || len(got.Alternatives) != 0 {
				t.Errorf("alternatives = %#v, want empty slice", got.Alternatives)
			}
		})
	}
}

func TestSuggestDrinksFullMenu(t *testing.T) {
	menu, err := database.LoadMenu("")
	if err != nil {
		t.Fatalf("LoadMenu: %v", err)
	}

	prefs := []models.PreferenceInput{
		{},
		{Temperature: models.TempIced, Caffeine: models.CaffeineLow, Sweetness: models.SweetHigh},
		{Temperature: models.TempHot, Milk: models.MilkNone, TimeOfDay: models.TimeMorning, Budget: float(15)},
		{Milk: models.MilkNonDairy, Flavors: []string{"Vanilla", "cardamom", "chocolate"}, TimeOfDay: models.TimeEvening},
	}

	for _, p := range prefs {
		got := SuggestDrinks(menu, p)
		if got.Top == nil {
			t.Fatalf("prefs %+v: no top suggestion", p)
		}
		if len(got.Alternatives) > 3 {
			t.Errorf("prefs %+v: %d alternatives", p, len(got.Alternatives))
		}
		for i, alt := range got.Alternatives {
			if alt.Item.ID == got.Top.Item.ID {
				t.Errorf("top %s repeated among alternatives", alt.Item.ID)
			}
			if alt.Score > got.Top.Score {
				t.Errorf("alternative %s outscores top", alt.Item.ID)
			}
			if i > 0 && alt.Score > got.Alternatives[i-1].Score {
				t.Errorf("alternatives not sorted by score")
			}
			if !alt.Item.Available {
				t.Errorf("unavailable item %s suggested", alt.Item.ID)
			}
		}

		if again := SuggestDrinks(menu, p); !reflect.DeepEqual(got, again) {
			t.Errorf("prefs %+v: results differ between identical calls", p)
		}
	}
}

func TestScoreCaffeine(t *testing.T) {
	item := models.MenuItem{ID: "americano", Name: "Americano", Available: true}
	base := models.PreferenceInput{}.WithDefaults()

	exact := base
	exact.Caffeine = models.CaffeineHigh
	far := base
	far.Caffeine = models.CaffeineNone

	medium := scoreItem(item, base)
	high := scoreItem(item, exact)
	none := scoreItem(item, far)

	if high.Score-medium.Score != 1 {
		t.Errorf("exact match adds %d over distance one, want 1", high.Score-medium.Score)
	}
	if high.Score-none.Score != 3 {
		t.Errorf("exact match adds %d over distance three, want 3", high.Score-none.Score)
	}
	if !contains(high.Reasons, "Matches your caffeine preference") {
		t.Errorf("missing caffeine reason in %v", high.Reasons)
	}
	if contains(medium.Reasons, "Matches your caffeine preference") {
		t.Errorf("unexpected caffeine reason in %v", medium.Reasons)
	}
}

func TestScoreBudget(t *testing.T) {
	tests := []struct {
		price  float64
		budget *float64
		delta  int
		reason string
	}{
		{price: 65, budget: float(70), delta: 2, reason: "Within budget"},
		{price: 70, budget: float(70), delta: 2, reason: "Within budget"},
		{price: 71, budget: float(70), delta: -1, reason: "May exceed budget"},
		{price: 95, budget: float(70), delta: -3, reason: "May exceed budget"},
		{price: 400, budget: float(70), delta: -3, reason: "May exceed budget"},
		{price: 400, budget: float(0), delta: 0},
	}

	for _, tt := range tests {
		item := models.MenuItem{ID: "latte", Name: "Latte", Price: tt.price, Available: true}
		without := scoreItem(item, models.PreferenceInput{}.WithDefaults())

		prefs := models.PreferenceInput{Budget: tt.budget}.WithDefaults()
		with := scoreItem(item, prefs)

		if got := with.Score - without.Score; got != tt.delta {
			t.Errorf("price %.0f budget %.0f: delta = %d, want %d", tt.price, *tt.budget, got, tt.delta)
		}
		if tt.reason != "" && !contains(with.Reasons, tt.reason) {
			t.Errorf("price %.0f: reasons %v missing %q", tt.price, with.Reasons, tt.reason)
		}
	}
}

func TestIcedVeto(t *testing.T) {
	hotOnly := models.MenuItem{ID: "espresso", Name: "Espresso", Description: "Hot only.", Available: true}

	either := scoreItem(hotOnly, models.PreferenceInput{}.WithDefaults())
	iced := scoreItem(hotOnly, models.PreferenceInput{Temperature: models.TempIced}.WithDefaults())

	if either.Score-iced.Score < 100 {
		t.Errorf("veto lowered score by %d, want at least 100", either.Score-iced.Score)
	}
	if !contains(iced.Reasons, "Served hot only, not suitable iced") {
		t.Errorf("missing veto reason in %v", iced.Reasons)
	}

	// A vetoed drink is still ranked when nothing else is on offer.
	got := SuggestDrinks([]models.MenuItem{hotOnly}, models.PreferenceInput{Temperature: models.TempIced})
	if got.Top == nil || got.Top.Item.ID != "espresso" {
		t.Errorf("top = %+v, want vetoed espresso", got.Top)
	}
}

func TestScoreMilk(t *testing.T) {
	latte := models.MenuItem{ID: "latte", Name: "Latte", Available: true}
	americano := models.MenuItem{ID: "americano", Name: "Americano", Available: true}

	tests := []struct {
		item   models.MenuItem
		milk   string
		reason string
	}{
		{latte, models.MilkNone, "Milk-based by default"},
		{americano, models.MilkNone, "Naturally dairy-free"},
		{latte, models.MilkNonDairy, "Can be made with non-dairy milk"},
		{latte, models.MilkDairy, "Creamy milk-based drink"},
	}
	for _, tt := range tests {
		got := scoreItem(tt.item, models.PreferenceInput{Milk: tt.milk}.WithDefaults())
		if !contains(got.Reasons, tt.reason) {
			t.Errorf("%s/%s: reasons %v missing %q", tt.item.ID, tt.milk, got.Reasons, tt.reason)
		}
	}

	noMilk := scoreItem(latte, models.PreferenceInput{Milk: models.MilkNone}.WithDefaults())
	dairy := scoreItem(latte, models.PreferenceInput{Milk: models.MilkDairy}.WithDefaults())
	if dairy.Score-noMilk.Score != 4 {
		t.Errorf("dairy vs no-milk delta = %d, want 4", dairy.Score-noMilk.Score)
	}
}

func TestScoreFlavorsFireOnce(t *testing.T) {
	mocha := models.MenuItem{ID: "mocha", Name: "Mocha", Available: true}

	one := scoreItem(mocha, models.PreferenceInput{Flavors: []string{"chocolate"}}.WithDefaults())
	many := scoreItem(mocha, models.PreferenceInput{Flavors: []string{"chocolate", "Dark Choc", "choco chips"}}.WithDefaults())
	none := scoreItem(mocha, models.PreferenceInput{}.WithDefaults())

	if one.Score-none.Score != 3 {
		t.Errorf("chocolate flavor adds %d, want 3", one.Score-none.Score)
	}
	if many.Score != one.Score {
		t.Errorf("repeated chocolate tokens scored %d, want %d", many.Score, one.Score)
	}

	chai := models.MenuItem{ID: "karak-chai", Name: "Karak Chai", Available: true}
	spiced := scoreItem(chai, models.PreferenceInput{Flavors: []string{"Cardamom"}}.WithDefaults())
	plain := scoreItem(chai, models.PreferenceInput{}.WithDefaults())
	if spiced.Score-plain.Score != 3 {
		t.Errorf("spice flavor adds %d, want 3", spiced.Score-plain.Score)
	}
}

func TestScoreFeaturedAndTimeOfDay(t *testing.T) {
	featured := models.MenuItem{ID: "spanish-latte", Name: "Spanish Latte", Featured: true, Available: true}

	boosted := scoreItem(featured, models.PreferenceInput{}.WithDefaults())
	plain := scoreItem(featured, models.PreferenceInput{FeaturedBoost: boolPtr(false)}.WithDefaults())
	if boosted.Score-plain.Score != 1 || !contains(boosted.Reasons, "Featured item") {
		t.Errorf("featured boost: delta %d, reasons %v", boosted.Score-plain.Score, boosted.Reasons)
	}

	espresso := models.MenuItem{ID: "espresso", Name: "Espresso", Available: true}
	morning := scoreItem(espresso, models.PreferenceInput{TimeOfDay: models.TimeMorning}.WithDefaults())
	if !contains(morning.Reasons, "Strong pick for the morning") {
		t.Errorf("missing morning reason in %v", morning.Reasons)
	}

	mocha := models.MenuItem{ID: "mocha", Name: "Mocha", Available: true}
	evening := scoreItem(mocha, models.PreferenceInput{TimeOfDay: models.TimeEvening}.WithDefaults())
	if !contains(evening.Reasons, "Light on caffeine for the evening") {
		t.Errorf("missing evening reason in %v", evening.Reasons)
	}
}

func TestSuggestSize(t *testing.T) {
	item := models.MenuItem{Sizes: []models.Size{
		{Name: "Small", Available: true},
		{Name: "Medium", Available: false},
		{Name: "Large", Available: true},
	}}

	tests := []struct {
		name      string
		item      models.MenuItem
		preferred string
		want      string
	}{
		{"preferred available", item, "Large", "Large"},
		{"preferred unavailable falls back to first", item, "Medium", "Small"},
		{"medium default", models.MenuItem{Sizes: []models.Size{{Name: "Small", Available: true}, {Name: "Medium", Available: true}}}, "", "Medium"},
		{"no sizes", models.MenuItem{}, "Large", ""},
		{"nothing available", models.MenuItem{Sizes: []models.Size{{Name: "Small"}}}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := suggestSize(tt.item, tt.preferred); got != tt.want {
				t.Errorf("suggestSize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuggestFlavors(t *testing.T) {
	if got := suggestFlavors(nil); got == nil || len(got) != 0 {
		t.Errorf("suggestFlavors(nil) = %#v, want empty slice", got)
	}

	flavors := []string{"Vanilla", "Caramel", "Hazelnut"}
	got := suggestFlavors(flavors)
	if !reflect.DeepEqual(got, []string{"Vanilla", "Caramel"}) {
		t.Errorf("suggestFlavors = %v", got)
	}
	got[0] = "changed"
	if flavors[0] != "Vanilla" {
		t.Error("suggestFlavors aliases its input")
	}
}

func TestRankingKeepsMenuOrderOnTies(t *testing.T) {
	menu := []models.MenuItem{
		{ID: "latte", Name: "Latte", Available: true},
		{ID: "flat-white", Name: "Flat White", Allergens: []string{"Milk"}, Available: true},
		{ID: "cappuccino", Name: "Cappuccino", Available: true},
	}

	got := SuggestDrinks(menu, models.PreferenceInput{})
	ids := []string{got.Top.Item.ID}
	for _, alt := range got.Alternatives {
		ids = append(ids, alt.Item.ID)
	}
	if !reflect.DeepEqual(ids, []string{"latte", "flat-white", "cappuccino"}) {
		t.Errorf("order = %v", ids)
	}
}
