package models

// Size is one serving size offered for a menu item
type Size struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// MenuItem represents a drink or food item on the café menu
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Price       float64  `json:"price"`
	Allergens   []string `json:"allergens,omitempty"`
	Sizes       []Size   `json:"sizes,omitempty"`
	Featured    bool     `json:"featured"`
	Available   bool     `json:"available"`
}

// HasAllergen reports whether the item lists the allergen tag exactly
func (m MenuItem) HasAllergen(tag string) bool {
	for _, a := range m.Allergens {
		if a == tag {
			return true
		}
	}
	return false
}

// AvailableSizes returns the names of sizes currently offered, in menu order
func (m MenuItem) AvailableSizes() []string {
	var names []string
	for _, s := range m.Sizes {
		if s.Available {
			names = append(names, s.Name)
		}
	}
	return names
}

// MenuFilter narrows a menu listing
type MenuFilter struct {
	Category      string `form:"category"`
	FeaturedOnly  bool   `form:"featured"`
	AvailableOnly bool   `form:"available"`
}
