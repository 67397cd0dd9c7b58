package index

import "slices"

// Options holds the distinct field values of a record list, each sorted.
// It is what a dashboard needs to populate its selectors.
type Options struct {
	Years     []string `json:"years"`
	Districts []string `json:"districts"`
	Subjects  []string `json:"subjects"`
}

// CollectOptions returns the sorted distinct years, districts and subjects.
func CollectOptions(records []FileRecord) Options {
	years := make([]string, 0, len(records))
	districts := make([]string, 0, len(records))
	subjects := make([]string, 0, len(records))

	for _, r := range records {
		years = append(years, r.Year)
		districts = append(districts, r.District)
		subjects = append(subjects, r.Subject)
	}

	return Options{
		Years:     distinct(years),
		Districts: distinct(districts),
		Subjects:  distinct(subjects),
	}
}

func distinct(values []string) []string {
	slices.Sort(values)
	return slices.Compact(values)
}
