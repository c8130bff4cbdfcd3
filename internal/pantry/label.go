package pantry

import (
	"sort"
	"strings"
)

// SuggestLabel guesses a storage label from an item name: exact word
// match first, then substring match with longer phrases checked before
// shorter ones. Returns nil when nothing matches so callers can leave the
// label unset.
func SuggestLabel(name string) *string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil
	}

	if label, ok := exactLabels[key]; ok {
		return &label
	}

	for _, entry := range substringLabels {
		if strings.Contains(key, entry.keyword) {
			label := entry.label
			return &label
		}
	}
	return nil
}

var labelVocab = map[string][]string{
	"produce": {
		"apple", "apples", "banana", "bananas", "orange", "oranges",
		"lemon", "lemons", "lime", "limes", "avocado", "avocados",
		"tomato", "tomatoes", "potato", "potatoes", "onion", "onions",
		"garlic", "lettuce", "spinach", "kale", "broccoli", "carrot",
		"carrots", "celery", "cucumber", "cucumbers", "peppers",
		"mushrooms", "corn", "grapes", "strawberries", "blueberries",
		"raspberries", "watermelon", "pineapple", "mango", "peach",
		"peaches", "pear", "pears", "cilantro", "basil", "parsley",
		"ginger", "zucchini", "asparagus", "green beans",
	},
	"dairy": {
		"milk", "eggs", "butter", "cheese", "yogurt", "cream cheese",
		"sour cream", "heavy cream", "half and half", "cottage cheese",
	},
	"meat": {
		"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham",
		"steak", "salmon", "shrimp", "tuna", "fish", "ground beef",
		"ground turkey", "hot dogs", "deli meat", "lamb", "crab",
		"lobster", "tilapia",
	},
	"bakery": {
		"bread", "bagels", "tortillas", "rolls", "buns", "muffins",
		"croissants", "pita",
	},
	"pantry": {
		"rice", "pasta", "flour", "sugar", "salt", "pepper", "oil",
		"olive oil", "vinegar", "soy sauce", "ketchup", "mustard",
		"mayonnaise", "honey", "peanut butter", "jelly", "jam",
		"cereal", "oatmeal", "canned beans", "canned tomatoes", "soup",
		"broth", "saffron",
	},
	"frozen": {
		"ice cream", "frozen pizza", "frozen vegetables", "frozen fruit",
		"frozen waffles", "popsicles",
	},
	"beverages": {
		"coffee", "tea", "juice", "soda", "sparkling water", "beer",
		"wine", "kombucha",
	},
}

var exactLabels = map[string]string{}

type substringLabel struct {
	keyword string
	label   string
}

var substringLabels []substringLabel

func init() {
	for label, words := range labelVocab {
		for _, w := range words {
			exactLabels[w] = label
			substringLabels = append(substringLabels, substringLabel{keyword: w, label: label})
		}
	}
	// Longest-first so "cream cheese" wins over "cheese"; ties broken
	// alphabetically to keep matching deterministic across map order.
	sort.Slice(substringLabels, func(i, j int) bool {
		a, b := substringLabels[i].keyword, substringLabels[j].keyword
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
}
