package export

import "strings"

// Platform identifies a marketplace export schema.
type Platform string

const (
	PlatformFreepik      Platform = "freepik"
	PlatformShutterstock Platform = "shutterstock"
	PlatformAdobeStock   Platform = "adobestock"
	PlatformIStock       Platform = "istock"
	PlatformGeneric      Platform = "generic"
)

// Platforms lists every supported export target.
var Platforms = []Platform{
	PlatformFreepik,
	PlatformShutterstock,
	PlatformAdobeStock,
	PlatformIStock,
	PlatformGeneric,
}

// platformSpec holds one marketplace's bulk-upload schema as data: column
// order, delimiters, tag joining and category requirements. Column sets
// follow each platform's published bulk-upload template.
type platformSpec struct {
	columns          []string
	delimiter        rune
	tagJoin          string
	requiresCategory bool
	// mapCategory maps a free-form category to the platform's taxonomy.
	// nil when the platform takes no category column.
	mapCategory func(category string) (string, bool)
}

var platformSpecs = map[Platform]platformSpec{
	PlatformFreepik: {
		columns:   []string{"Filename", "Title", "Keywords", "Prompt", "Base-Model"},
		delimiter: ';',
		tagJoin:   ",",
	},
	PlatformShutterstock: {
		columns:          []string{"Filename", "Description", "Keywords", "Categories", "Editorial", "Mature content", "Illustration"},
		delimiter:        ',',
		tagJoin:          ",",
		requiresCategory: true,
		mapCategory:      mapShutterstockCategory,
	},
	PlatformAdobeStock: {
		columns:          []string{"Filename", "Title", "Keywords", "Category", "Releases"},
		delimiter:        ',',
		tagJoin:          ",",
		requiresCategory: true,
		mapCategory:      mapAdobeCategory,
	},
	PlatformIStock: {
		columns:   []string{"file name", "description", "title", "keywords", "country"},
		delimiter: ',',
		tagJoin:   ",",
	},
	PlatformGeneric: {
		columns:   []string{"filename", "title", "description", "keywords", "category"},
		delimiter: ',',
		tagJoin:   ",",
	},
}

// shutterstockCategories is Shutterstock's fixed category vocabulary,
// keyed by normalized name.
var shutterstockCategories = map[string]string{
	"abstract":            "Abstract",
	"animals":             "Animals/Wildlife",
	"wildlife":            "Animals/Wildlife",
	"arts":                "The Arts",
	"art":                 "The Arts",
	"backgrounds":         "Backgrounds/Textures",
	"textures":            "Backgrounds/Textures",
	"beauty":              "Beauty/Fashion",
	"fashion":             "Beauty/Fashion",
	"buildings":           "Buildings/Landmarks",
	"architecture":        "Buildings/Landmarks",
	"landmarks":           "Buildings/Landmarks",
	"business":            "Business/Finance",
	"finance":             "Business/Finance",
	"education":           "Education",
	"food":                "Food and drink",
	"drink":               "Food and drink",
	"food and drink":      "Food and drink",
	"healthcare":          "Healthcare/Medical",
	"medical":             "Healthcare/Medical",
	"health":              "Healthcare/Medical",
	"holidays":            "Holidays",
	"industrial":          "Industrial",
	"industry":            "Industrial",
	"interiors":           "Interiors",
	"nature":              "Nature",
	"landscape":           "Nature",
	"objects":             "Objects",
	"outdoor":             "Parks/Outdoor",
	"parks":               "Parks/Outdoor",
	"people":              "People",
	"religion":            "Religion",
	"science":             "Science",
	"signs":               "Signs/Symbols",
	"symbols":             "Signs/Symbols",
	"sports":              "Sports/Recreation",
	"recreation":          "Sports/Recreation",
	"technology":          "Technology",
	"transportation":      "Transportation",
	"transport":           "Transportation",
	"vintage":             "Vintage",
	"miscellaneous":       "Miscellaneous",
	"celebrities":         "Celebrities",
	"parks and outdoor":   "Parks/Outdoor",
	"signs and symbols":   "Signs/Symbols",
	"sports and fitness":  "Sports/Recreation",
	"buildings and homes": "Buildings/Landmarks",
}

// adobeCategories is Adobe Stock's numeric category taxonomy, keyed by
// normalized name.
var adobeCategories = map[string]string{
	"animals":                    "1",
	"wildlife":                   "1",
	"buildings":                  "2",
	"architecture":               "2",
	"buildings and architecture": "2",
	"business":                   "3",
	"finance":                    "3",
	"drinks":                     "4",
	"drink":                      "4",
	"environment":                "5",
	"the environment":            "5",
	"states of mind":             "6",
	"emotions":                   "6",
	"food":                       "7",
	"graphic resources":          "8",
	"backgrounds":                "8",
	"textures":                   "8",
	"abstract":                   "8",
	"hobbies and leisure":        "9",
	"hobbies":                    "9",
	"recreation":                 "9",
	"industry":                   "10",
	"industrial":                 "10",
	"landscapes":                 "11",
	"landscape":                  "11",
	"nature":                     "11",
	"lifestyle":                  "12",
	"people":                     "13",
	"plants and flowers":         "14",
	"plants":                     "14",
	"flowers":                    "14",
	"culture and religion":       "15",
	"religion":                   "15",
	"culture":                    "15",
	"science":                    "16",
	"social issues":              "17",
	"sports":                     "18",
	"technology":                 "19",
	"transport":                  "20",
	"transportation":             "20",
	"travel":                     "21",
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func mapShutterstockCategory(category string) (string, bool) {
	mapped, ok := shutterstockCategories[normalizeCategory(category)]
	return mapped, ok
}

func mapAdobeCategory(category string) (string, bool) {
	mapped, ok := adobeCategories[normalizeCategory(category)]
	return mapped, ok
}
