// Package valuation recomputes the financial side of every provider
// verdict from extracted inputs and enforces the hard business
// thresholds. Provider arithmetic is never trusted verbatim.
package valuation

import (
	"strconv"
	"strings"
)

// Purity by karat marking for gold.
var karatPurity = map[int]float64{
	24: 0.999,
	22: 0.916,
	18: 0.750,
	14: 0.585,
	10: 0.417,
	9:  0.375,
}

// Purity by fineness marking for silver.
var silverPurity = map[string]float64{
	"sterling": 0.925,
	"925":      0.925,
	"900":      0.900,
	"800":      0.800,
	"coin":     0.900,
}

// Generous per-item weight ceilings in grams, used to flag weights the
// provider almost certainly hallucinated.
var weightLimits = map[string]map[string]float64{
	"ring":     {"gold": 30, "silver": 50},
	"earring":  {"gold": 20, "silver": 40},
	"pendant":  {"gold": 40, "silver": 80},
	"charm":    {"gold": 20, "silver": 40},
	"necklace": {"gold": 150, "silver": 300},
	"chain":    {"gold": 150, "silver": 300},
	"bracelet": {"gold": 100, "silver": 200},
	"bangle":   {"gold": 80, "silver": 150},
	"brooch":   {"gold": 50, "silver": 100},
	"flatware": {"silver": 800},
	"spoon":    {"silver": 80},
	"fork":     {"silver": 80},
	"tray":     {"silver": 1500},
	"bowl":     {"silver": 500},
}

// Purity resolves a karat or fineness marking to a purity fraction.
// Returns 0 when the marking is unrecognized.
func Purity(category, marking string) float64 {
	m := strings.ToLower(strings.TrimSpace(marking))
	m = strings.TrimSuffix(m, "k")
	m = strings.TrimSuffix(m, "kt")

	if category == "silver" {
		if p, ok := silverPurity[m]; ok {
			return p
		}
		return 0
	}
	if k, err := strconv.Atoi(m); err == nil {
		if p, ok := karatPurity[k]; ok {
			return p
		}
	}
	return 0
}

// Melt computes metal value from weight, purity and per-gram spot.
func Melt(weightGrams, purity, spotPerGram float64) float64 {
	if weightGrams <= 0 || purity <= 0 || spotPerGram <= 0 {
		return 0
	}
	return weightGrams * purity * spotPerGram
}

// WeightSane reports whether a claimed weight is plausible for the item
// type in the title. Unknown item types get a loose category-wide bound.
func WeightSane(weightGrams float64, title, category string) bool {
	if weightGrams <= 0 {
		return true
	}
	t := strings.ToLower(title)
	for itemType, limits := range weightLimits {
		if !strings.Contains(t, itemType) {
			continue
		}
		if limit, ok := limits[category]; ok {
			return weightGrams <= limit
		}
		return true
	}
	switch category {
	case "gold":
		return weightGrams <= 200
	case "silver":
		return weightGrams <= 1000
	}
	return true
}
