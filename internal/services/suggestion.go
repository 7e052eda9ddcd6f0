package services

import (
	"math"
	"sort"
	"strings"

	"github.com/yishak-cs/cafe_order/internal/models"
)

// Ordinal scales used for distance scoring
var (
	caffeineScale  = []string{models.CaffeineNone, models.CaffeineLow, models.CaffeineMedium, models.CaffeineHigh}
	sweetnessScale = []string{models.SweetLow, models.SweetMedium, models.SweetHigh}
)

const (
	// icedVeto is added to hot-only drinks when the customer wants something iced.
	// It discourages the drink without removing it from the ranking.
	icedVeto = -100

	maxAlternatives = 3
)

// SuggestDrinks scores every available menu item against the customer's
// preferences and returns the best match plus up to three alternatives.
// It is a pure function of its inputs and safe for concurrent use.
func SuggestDrinks(menu []models.MenuItem, prefs models.PreferenceInput) models.Suggestions {
	prefs = prefs.WithDefaults()

	var scored []models.SuggestionResult
	for _, item := range menu {
		if !item.Available {
			continue
		}
		scored = append(scored, scoreItem(item, prefs))
	}

	return rankSuggestions(scored)
}

// scoreItem accumulates the additive score terms for one item. Reasons are
// appended in evaluation order.
func scoreItem(item models.MenuItem, prefs models.PreferenceInput) models.SuggestionResult {
	attrs := DeriveAttributes(item)
	score := 0
	var reasons []string

	switch prefs.Temperature {
	case models.TempIced:
		switch {
		case attrs.HotOnly:
			score += icedVeto
			reasons = append(reasons, "Served hot only, not suitable iced")
		case attrs.SupportsIced:
			score += 3
			reasons = append(reasons, "Works well iced")
		default:
			score++
			reasons = append(reasons, "Can be served iced")
		}
	case models.TempHot:
		score += 2
		reasons = append(reasons, "Great as a hot drink")
	}

	score += 3 - ordinalDistance(caffeineScale, attrs.CaffeineLevel, prefs.Caffeine)
	if attrs.CaffeineLevel == prefs.Caffeine {
		reasons = append(reasons, "Matches your caffeine preference")
	}

	score += 2 - ordinalDistance(sweetnessScale, attrs.SweetnessLevel, prefs.Sweetness)
	if attrs.SweetnessLevel == prefs.Sweetness {
		reasons = append(reasons, "Matches your sweetness preference")
	}

	switch prefs.Milk {
	case models.MilkNone:
		if attrs.IsMilkBased {
			score -= 3
			reasons = append(reasons, "Milk-based by default")
		} else {
			score += 2
			reasons = append(reasons, "Naturally dairy-free")
		}
	case models.MilkNonDairy:
		if attrs.IsMilkBased {
			score++
			reasons = append(reasons, "Can be made with non-dairy milk")
		}
	case models.MilkDairy:
		if attrs.IsMilkBased {
			score++
			reasons = append(reasons, "Creamy milk-based drink")
		}
	}

	flavorScore, flavorReasons := scoreFlavors(strings.ToLower(item.ID), attrs, prefs.Flavors)
	score += flavorScore
	reasons = append(reasons, flavorReasons...)

	if prefs.Budget != nil && *prefs.Budget > 0 {
		budget := *prefs.Budget
		if item.Price <= budget {
			score += 2
			reasons = append(reasons, "Within budget")
		} else {
			over := int(math.Ceil((item.Price - budget) / 10))
			score -= min(3, over)
			reasons = append(reasons, "May exceed budget")
		}
	}

	if prefs.BoostFeatured() && item.Featured {
		score++
		reasons = append(reasons, "Featured item")
	}

	switch prefs.TimeOfDay {
	case models.TimeMorning:
		if attrs.IsEspresso || attrs.IsAmericano || attrs.IsTurkish {
			score++
			reasons = append(reasons, "Strong pick for the morning")
		}
	case models.TimeEvening:
		if attrs.CaffeineLevel == models.CaffeineLow || attrs.CaffeineLevel == models.CaffeineNone {
			score++
			reasons = append(reasons, "Light on caffeine for the evening")
		}
	}

	if reasons == nil {
		reasons = []string{}
	}

	return models.SuggestionResult{
		Item:             item,
		Score:            score,
		Reasons:          reasons,
		SuggestedSize:    suggestSize(item, prefs.SizePreference),
		SuggestedFlavors: suggestFlavors(prefs.Flavors),
	}
}

// scoreFlavors applies each flavor rule at most once, however many tokens match it.
func scoreFlavors(id string, attrs models.DerivedAttributes, flavors []string) (int, []string) {
	var chocolate, syrup, spice, matcha bool
	for _, raw := range flavors {
		token := strings.ToLower(raw)
		if strings.Contains(token, "choc") {
			chocolate = true
		}
		if flavorSyrupPattern.MatchString(token) {
			syrup = true
		}
		if spiceFlavorPattern.MatchString(token) {
			spice = true
		}
		if matchaFlavorRegex.MatchString(token) {
			matcha = true
		}
	}

	score := 0
	var reasons []string
	if chocolate && attrs.HasChocolate {
		score += 3
		reasons = append(reasons, "Has the chocolate you asked for")
	}
	if syrup && syrupDrinkPattern.MatchString(id) {
		score += 2
		reasons = append(reasons, "Pairs well with your flavor shot")
	}
	if spice && spiceDrinkPattern.MatchString(id) {
		score += 3
		reasons = append(reasons, "Warm spice notes")
	}
	if matcha && strings.Contains(id, "matcha") {
		score += 3
		reasons = append(reasons, "Matcha flavor match")
	}
	return score, reasons
}

// ordinalDistance returns the distance between two levels on a scale. A level
// missing from the scale counts as a neutral distance of 2.
func ordinalDistance(scale []string, actual, desired string) int {
	a, d := indexOf(scale, actual), indexOf(scale, desired)
	if a < 0 || d < 0 {
		return 2
	}
	if a > d {
		return a - d
	}
	return d - a
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}

// suggestSize picks the preferred size when offered, then Medium, then the
// first available size. Items without sizes get no suggestion.
func suggestSize(item models.MenuItem, preferred string) string {
	sizes := item.AvailableSizes()
	if len(sizes) == 0 {
		return ""
	}
	if preferred != "" && indexOf(sizes, preferred) >= 0 {
		return preferred
	}
	if indexOf(sizes, "Medium") >= 0 {
		return "Medium"
	}
	return sizes[0]
}

// suggestFlavors echoes the first two requested flavors verbatim.
func suggestFlavors(flavors []string) []string {
	n := min(2, len(flavors))
	out := make([]string, n)
	copy(out, flavors[:n])
	return out
}

// rankSuggestions orders results by score, highest first, and splits off the top pick.
func rankSuggestions(scored []models.SuggestionResult) models.Suggestions {
	result := models.Suggestions{Alternatives: []models.SuggestionResult{}}
	if len(scored) == 0 {
		return result
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	top := scored[0]
	result.Top = &top
	end := min(len(scored), 1+maxAlternatives)
	result.Alternatives = append(result.Alternatives, scored[1:end]...)
	return result
}
