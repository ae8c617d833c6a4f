package pipeline

import (
	"sort"
	"strings"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/internal/models"
)

var qualityRank = map[string]float64{
	"bluray remux": 10,
	"bluray":       9,
	"web-dl":       8,
	"webrip":       7,
	"web":          6,
	"hdtv":         5,
	"hdrip":        4,
	"dvd":          3,
	"scr":          2,
	"telesync":     1,
	"cam":          0,
}

const unknownQualityRank = 4

var defaultCodecPreference = []string{"hevc", "av1", "avc"}

// Sort orders candidates by the weighted sum of the user's criteria. Each
// criterion is min-max normalised over the set so weights compare across
// units. Ties go to higher adapter priority, then earlier discovery.
func Sort(candidates []models.Candidate, user *config.UserConfig) []models.Candidate {
	criteria := user.SortCriteria()

	scores := make([]float64, len(candidates))
	for _, crit := range criteria {
		if crit.Weight == 0 {
			continue
		}
		raw := make([]float64, len(candidates))
		for i, c := range candidates {
			raw[i] = criterionValue(crit.Key, c, user)
		}
		lo, hi := bounds(raw)
		if hi == lo {
			continue
		}
		for i, v := range raw {
			norm := (v - lo) / (hi - lo)
			if crit.Ascending {
				norm = 1 - norm
			}
			scores[i] += crit.Weight * norm
		}
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		ca, cb := candidates[a], candidates[b]
		if ca.Priority != cb.Priority {
			return ca.Priority > cb.Priority
		}
		return ca.Index < cb.Index
	})

	out := make([]models.Candidate, len(candidates))
	for i, idx := range order {
		out[i] = candidates[idx]
	}
	return out
}

func criterionValue(key string, c models.Candidate, user *config.UserConfig) float64 {
	switch key {
	case "resolution":
		return resolutionScore(c.Release.Resolution)
	case "quality":
		if v, ok := qualityRank[strings.ToLower(c.Release.Quality)]; ok {
			return v
		}
		return unknownQualityRank
	case "codec":
		prefs := user.PreferredCodecs
		if len(prefs) == 0 {
			prefs = defaultCodecPreference
		}
		return preferenceScore(prefs, []string{c.Release.Codec})
	case "size":
		return float64(c.Size)
	case "seeders":
		return float64(c.Seeders)
	case "priority":
		return float64(c.Priority)
	case "language":
		return languageScore(user.PreferredLanguages, c.Release.Languages)
	}
	return 0
}

func resolutionScore(res string) float64 {
	for i, r := range constants.ResolutionRank {
		if r == res {
			return float64(len(constants.ResolutionRank) - i)
		}
	}
	return 0
}

// preferenceScore rates the best match of values against an ordered
// preference list; earlier entries score higher and no match scores zero.
func preferenceScore(prefs, values []string) float64 {
	best := 0.0
	for i, p := range prefs {
		for _, v := range values {
			if strings.EqualFold(p, v) {
				if s := float64(len(prefs) - i); s > best {
					best = s
				}
			}
		}
	}
	return best
}

// languageScore counts a multi-language release as a weak match for every
// preference.
func languageScore(prefs, langs []string) float64 {
	score := preferenceScore(prefs, langs)
	if score == 0 && len(prefs) > 0 && contains(langs, "multi") {
		return 0.5
	}
	return score
}

func bounds(xs []float64) (lo, hi float64) {
	for i, x := range xs {
		if i == 0 || x < lo {
			lo = x
		}
		if i == 0 || x > hi {
			hi = x
		}
	}
	return lo, hi
}
