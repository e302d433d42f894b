package classify

import (
	"fmt"
	"strings"

	"fastrecycle-hq/salvage/pkg/amount"
)

// Category is the kind of an item as far as conversion is concerned.
type Category int

const (
	// CategoryOther covers everything that is never converted (books, potions, keys...).
	CategoryOther Category = iota
	CategoryWeapon
	CategoryAmmo
	CategoryArmor
	CategoryMisc
)

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case CategoryWeapon:
		return "weapon"
	case CategoryAmmo:
		return "ammo"
	case CategoryArmor:
		return "armor"
	case CategoryMisc:
		return "misc"
	default:
		return "other"
	}
}

// Convertible reports whether items of this category may be converted.
func (c Category) Convertible() bool {
	switch c {
	case CategoryWeapon, CategoryAmmo, CategoryArmor, CategoryMisc:
		return true
	default:
		return false
	}
}

// ParseCategory parses a category name case-insensitively. Unknown names are an error.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weapon":
		return CategoryWeapon, nil
	case "ammo":
		return CategoryAmmo, nil
	case "armor", "armour":
		return CategoryArmor, nil
	case "misc":
		return CategoryMisc, nil
	case "other", "":
		return CategoryOther, nil
	default:
		return CategoryOther, fmt.Errorf("unknown item category %q", s)
	}
}

// Tag is a keyword attached to an item. ID is the keyword's entity identifier
// (may be empty); Text is the string probed against match-keys.
type Tag struct {
	ID   string
	Text string
}

// Item is one distinct item kind present in the processed collection.
type Item struct {
	ID         string
	Name       string
	Tags       []Tag
	Quantity   int64
	UnitWeight amount.Amount
	Category   Category

	// Playable is false for hidden or internal items.
	Playable bool

	// Special marks enchanted or otherwise special items.
	Special bool
}
