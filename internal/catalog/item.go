// Package catalog holds the tradable-item catalog and the search machinery
// that maps free-text user input onto catalog entries.
//
// The catalog is built wholesale from an external item-list fetch and kept
// as an immutable snapshot; a refresh builds a complete new snapshot (items
// plus both fuzzy indexes) and swaps it atomically, so readers never observe
// a catalog/index mismatch.
package catalog

import "strings"

const nameSeparator = "|"

// Item is one tradable in-game item.
type Item struct {
	// Name is the stable internal identifier used in API URLs.
	Name string
	// DisplayName is the human-facing label.
	DisplayName string
	// AltNames are alternate display names, possibly empty.
	AltNames []string
	// CombinedKey is the lower-cased DisplayName and AltNames joined by "|",
	// precomputed once at snapshot build time for substring matching.
	CombinedKey string
	// ImageURL is an absolute URL, a relative filename, or empty.
	ImageURL string
}

// RawItem is the wire shape of one record in the external item list.
type RawItem struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	AltDisplayNames []string `json:"alt_display_name_list"`
	ImageURL        string   `json:"image_url"`
}

func newItem(raw RawItem) Item {
	names := make([]string, 0, len(raw.AltDisplayNames)+1)
	names = append(names, raw.DisplayName)
	names = append(names, raw.AltDisplayNames...)

	return Item{
		Name:        raw.Name,
		DisplayName: raw.DisplayName,
		AltNames:    raw.AltDisplayNames,
		CombinedKey: strings.ToLower(strings.Join(names, nameSeparator)),
		ImageURL:    raw.ImageURL,
	}
}
