package models

// Preference values accepted by the drink suggester
const (
	TempHot    = "hot"
	TempIced   = "iced"
	TempEither = "either"

	CaffeineNone   = "none"
	CaffeineLow    = "low"
	CaffeineMedium = "medium"
	CaffeineHigh   = "high"

	SweetLow    = "low"
	SweetMedium = "medium"
	SweetHigh   = "high"

	MilkNone     = "no-milk"
	MilkDairy    = "dairy"
	MilkNonDairy = "non-dairy"

	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
	TimeAny       = "any"
)

// PreferenceInput is what a customer tells the suggester about their taste
type PreferenceInput struct {
	Temperature    string   `json:"temperature" binding:"omitempty,oneof=hot iced either"`
	Caffeine       string   `json:"caffeine" binding:"omitempty,oneof=none low medium high"`
	Sweetness      string   `json:"sweetness" binding:"omitempty,oneof=low medium high"`
	Milk           string   `json:"milk" binding:"omitempty,oneof=no-milk dairy non-dairy"`
	Flavors        []string `json:"flavors" binding:"omitempty,max=10,dive,max=40"`
	Budget         *float64 `json:"budget,omitempty" binding:"omitempty,gt=0"`
	SizePreference string   `json:"size_preference,omitempty" binding:"omitempty,oneof=Small Medium Large"`
	FeaturedBoost  *bool    `json:"featured_boost,omitempty"`
	TimeOfDay      string   `json:"time_of_day" binding:"omitempty,oneof=morning afternoon evening any"`
}

// WithDefaults fills every unset field with its default value
func (p PreferenceInput) WithDefaults() PreferenceInput {
	if p.Temperature == "" {
		p.Temperature = TempEither
	}
	if p.Caffeine == "" {
		p.Caffeine = CaffeineMedium
	}
	if p.Sweetness == "" {
		p.Sweetness = SweetMedium
	}
	if p.Milk == "" {
		p.Milk = MilkDairy
	}
	if p.TimeOfDay == "" {
		p.TimeOfDay = TimeAny
	}
	if p.FeaturedBoost == nil {
		boost := true
		p.FeaturedBoost = &boost
	}
	return p
}

// BoostFeatured reports whether featured items get a bonus
func (p PreferenceInput) BoostFeatured() bool {
	return p.FeaturedBoost != nil && *p.FeaturedBoost
}

// DerivedAttributes are coarse properties inferred from a menu item's text
type DerivedAttributes struct {
	IsMilkBased    bool   `json:"is_milk_based"`
	HasChocolate   bool   `json:"has_chocolate"`
	IsTea          bool   `json:"is_tea"`
	IsEspresso     bool   `json:"is_espresso"`
	IsTurkish      bool   `json:"is_turkish"`
	IsAmericano    bool   `json:"is_americano"`
	SupportsIced   bool   `json:"supports_iced"`
	HotOnly        bool   `json:"hot_only"`
	CaffeineLevel  string `json:"caffeine_level"`
	SweetnessLevel string `json:"sweetness_level"`
}

// SuggestionResult is one scored menu item with the reasons behind its score
type SuggestionResult struct {
	Item             MenuItem `json:"item"`
	Score            int      `json:"score"`
	Reasons          []string `json:"reasons"`
	SuggestedSize    string   `json:"suggested_size,omitempty"`
	SuggestedFlavors []string `json:"suggested_flavors"`
}

// Suggestions is the ranked output of the suggester
type Suggestions struct {
	Top          *SuggestionResult  `json:"top"`
	Alternatives []SuggestionResult `json:"alternatives"`
}
