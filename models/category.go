package models

import (
	"fmt"
	"strings"
)

// Category is one of the four admission tracks (puan türü) the source
// partitions its listings by.
type Category string

const (
	CategoryLanguage     Category = "dil"
	CategoryEqualWeight  Category = "ea"
	CategoryVerbal       Category = "söz"
	CategoryQuantitative Category = "say"
)

// AllCategories is the default selection, in source order.
var AllCategories = []Category{
	CategoryLanguage,
	CategoryEqualWeight,
	CategoryVerbal,
	CategoryQuantitative,
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLanguage, CategoryEqualWeight, CategoryVerbal, CategoryQuantitative:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategories converts raw identifiers into categories. Surrounding
// whitespace and case are ignored ("SAY" and " say " both select say) and
// "soz" is accepted for söz.
func ParseCategories(raw []string) ([]Category, error) {
	out := make([]Category, 0, len(raw))
	for _, r := range raw {
		s := strings.ToLower(strings.TrimSpace(r))
		if s == "" {
			continue
		}
		if s == "soz" {
			s = string(CategoryVerbal)
		}
		c := Category(s)
		if !c.Valid() {
			return nil, NewAcquireError(ErrCodeInvalidInput, "",
				fmt.Sprintf("unknown category %q (want one of dil, ea, söz, say)", r), nil)
		}
		out = append(out, c)
	}
	return out, nil
}

// Distinct collapses duplicates while keeping first-seen order.
func Distinct(cats []Category) []Category {
	seen := make(map[Category]struct{}, len(cats))
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
