// Package allocation keeps the percentages of budget categories summing to the same total while
// the user edits, adds or removes categories.
//
// Every function is pure: the input slice is never modified and a new slice is returned.
// Percentages are not clamped, so a large edit can push other categories below zero.
package allocation

import (
	"fmt"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"
)

// SetPercentage sets the category at index to newValue and spreads the opposite of the change evenly
// over all other categories. With a single category there is nobody to absorb the change, so only
// that category moves. An index outside categories returns an unchanged copy.
func SetPercentage(categories []Category, totalBudget float64, index int, newValue float64) []Category {
	result := WithAmounts(categories, totalBudget)
	if index < 0 || index >= len(result) {
		log.Warnf("allocation: ignoring percentage change for index %d of %d categories", index, len(result))
		return result
	}

	delta := newValue - result[index].Percentage
	if others := len(result) - 1; others > 0 {
		share := delta / float64(others)
		for i := range result {
			if i != index {
				result[i].Percentage -= share
			}
		}
	}
	result[index].Percentage = newValue

	return WithAmounts(result, totalBudget)
}

// AddCategory appends a placeholder category with a zero share and a random color.
func AddCategory(categories []Category, totalBudget float64) []Category {
	result := WithAmounts(categories, totalBudget)
	return append(result, Category{
		Name:       NewCategoryName,
		Percentage: 0,
		Color:      randomColor(),
		Amount:     0,
	})
}

// RemoveCategory drops the category at index and adds an equal part of its share to each survivor.
// An index outside categories returns an unchanged copy.
func RemoveCategory(categories []Category, totalBudget float64, index int) []Category {
	if index < 0 || index >= len(categories) {
		log.Warnf("allocation: ignoring removal of index %d of %d categories", index, len(categories))
		return WithAmounts(categories, totalBudget)
	}

	removed := categories[index].Percentage
	result := make([]Category, 0, len(categories)-1)
	result = append(result, categories[:index]...)
	result = append(result, categories[index+1:]...)
	if len(result) == 0 {
		return result
	}

	share := removed / float64(len(result))
	for i := range result {
		result[i].Percentage += share
	}
	return WithAmounts(result, totalBudget)
}

var randomColor = func() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rand.IntN(256), rand.IntN(256), rand.IntN(256))
}
