package pipeline

import (
	"strings"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/models"
)

const unknown = "unknown"

// Filter drops candidates that break a hard rule. Unknown sizes and seeders
// pass size and seeder limits; unknown resolutions pass unless "unknown" is
// excluded.
func Filter(candidates []models.Candidate, rules config.FilterRules) []models.Candidate {
	allowed := lowerSet(rules.AllowedResolutions)
	excludedRes := lowerSet(rules.ExcludedResolutions)
	excludedQual := lowerSet(rules.ExcludedQualities)
	required := lowerSet(rules.RequiredLanguages)
	excludedLang := lowerSet(rules.ExcludedLanguages)
	excludedGroups := lowerSet(rules.ExcludedGroups)

	out := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		r := c.Release

		res := strings.ToLower(r.Resolution)
		if res == "" {
			res = unknown
		}
		if excludedRes[res] {
			continue
		}
		if len(allowed) > 0 && res != unknown && !allowed[res] {
			continue
		}

		if r.Quality != "" && excludedQual[strings.ToLower(r.Quality)] {
			continue
		}
		if r.Group != "" && excludedGroups[strings.ToLower(r.Group)] {
			continue
		}

		langs := languagesOf(c)
		if len(required) > 0 && !anyIn(langs, required) && !(contains(langs, "multi") && !required[unknown]) {
			continue
		}
		if anyIn(langs, excludedLang) {
			continue
		}

		if c.Size > 0 {
			if rules.MinSize > 0 && c.Size < rules.MinSize {
				continue
			}
			if rules.MaxSize > 0 && c.Size > rules.MaxSize {
				continue
			}
		}
		if rules.MinSeeders > 0 && c.HasHash() && c.Seeders > 0 && c.Seeders < rules.MinSeeders {
			continue
		}

		out = append(out, c)
	}
	return out
}

// languagesOf returns the candidate's language codes, or "unknown" when the
// title carries none.
func languagesOf(c models.Candidate) []string {
	if len(c.Release.Languages) == 0 {
		return []string{unknown}
	}
	return c.Release.Languages
}

func lowerSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return set
}

func anyIn(items []string, set map[string]bool) bool {
	for _, s := range items {
		if set[strings.ToLower(s)] {
			return true
		}
	}
	return false
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
