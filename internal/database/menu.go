package database

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/yishak-cs/cafe_order/internal/models"
)

//go:embed menu.json
var defaultMenu []byte

// LoadMenu reads the menu catalog from path, or the built-in café menu when
// path is empty.
func LoadMenu(path string) ([]models.MenuItem, error) {
	data := defaultMenu
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read menu file: %w", err)
		}
	}

	var items []models.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("menu item %q has no id", item.Name)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate menu item id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return items, nil
}
