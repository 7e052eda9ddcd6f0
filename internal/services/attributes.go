package services

import (
	"regexp"
	"strings"

	"github.com/yishak-cs/cafe_order/internal/models"
)

var (
	milkDrinkPattern   = regexp.MustCompile(`latte|cappuccino|frappuccino|macchiato|cortado|karak`)
	chocolatePattern   = regexp.MustCompile(`mocha|chocolate`)
	teaPattern         = regexp.MustCompile(`matcha|tea|chai`)
	turkishPattern     = regexp.MustCompile(`turkish`)
	americanoPattern   = regexp.MustCompile(`americano`)
	icedNamePattern    = regexp.MustCompile(`iced|frappuccino`)
	sweetDrinkPattern  = regexp.MustCompile(`spanish-latte|mocha|chocolate|frappuccino`)
	flavorSyrupPattern = regexp.MustCompile(`vanilla|caramel|hazelnut|pistachio`)
	syrupDrinkPattern  = regexp.MustCompile(`latte|frappuccino`)
	spiceFlavorPattern = regexp.MustCompile(`spice|cinnamon|cardamom|chai`)
	spiceDrinkPattern  = regexp.MustCompile(`karak|chai`)
	matchaFlavorRegex  = regexp.MustCompile(`matcha|green`)
)

// DeriveAttributes infers coarse drink properties from a menu item's id, name,
// description and allergen tags. Missing text fields behave as empty strings.
func DeriveAttributes(item models.MenuItem) models.DerivedAttributes {
	id := strings.ToLower(item.ID)
	name := strings.ToLower(item.Name)
	description := strings.ToLower(item.Description)
	haystack := id + " " + name

	attrs := models.DerivedAttributes{
		IsMilkBased:  item.HasAllergen("Milk") || milkDrinkPattern.MatchString(haystack),
		HasChocolate: item.HasAllergen("Chocolate") || chocolatePattern.MatchString(haystack),
		IsTea:        teaPattern.MatchString(haystack),
		IsEspresso:   strings.Contains(id, "espresso") || strings.Contains(name, "espresso"),
		IsTurkish:    turkishPattern.MatchString(haystack),
		IsAmericano:  americanoPattern.MatchString(haystack),
		SupportsIced: strings.Contains(description, "hot & iced") || icedNamePattern.MatchString(haystack),
		HotOnly:      strings.Contains(description, "hot only"),
	}

	// Branch order is significant: the "none" branch is shadowed by the
	// chocolate branch for every non-espresso chocolate drink.
	switch {
	case attrs.HasChocolate && !attrs.IsEspresso:
		attrs.CaffeineLevel = models.CaffeineLow
	case attrs.IsTea:
		attrs.CaffeineLevel = models.CaffeineMedium
	case attrs.IsTurkish || attrs.IsEspresso || attrs.IsAmericano:
		attrs.CaffeineLevel = models.CaffeineHigh
	case strings.Contains(haystack, "chocolate"):
		attrs.CaffeineLevel = models.CaffeineNone
	default:
		attrs.CaffeineLevel = models.CaffeineMedium
	}

	switch {
	case sweetDrinkPattern.MatchString(id):
		attrs.SweetnessLevel = models.SweetHigh
	case attrs.IsAmericano || attrs.IsEspresso || attrs.IsTurkish:
		attrs.SweetnessLevel = models.SweetLow
	default:
		attrs.SweetnessLevel = models.SweetMedium
	}

	return attrs
}
