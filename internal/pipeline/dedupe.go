package pipeline

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/amaumene/gostremiomux/internal/models"
)

// Dedupe collapses candidates that describe the same release. Two candidates
// are duplicates when they share info hash and file index, share a URL, or
// have equal structured keys and sizes within tolerance (relative to the
// larger size). The higher-priority candidate wins; on equal priority the
// earlier discovery wins. Survivors keep their input order.
func Dedupe(candidates []models.Candidate, tolerance float64) []models.Candidate {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := candidates[order[i]], candidates[order[j]]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.Index < b.Index
	})

	keep := make([]bool, len(candidates))
	byLocator := make(map[string]bool)
	byKey := make(map[string][]int64)

	for _, i := range order {
		c := candidates[i]

		loc := locatorKey(c)
		if byLocator[loc] {
			continue
		}

		key := releaseKey(c)
		if sizes, ok := byKey[key]; ok && anyWithin(sizes, c.Size, tolerance) {
			continue
		}

		byLocator[loc] = true
		byKey[key] = append(byKey[key], c.Size)
		keep[i] = true
	}

	out := make([]models.Candidate, 0, len(candidates))
	for i, c := range candidates {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}

func locatorKey(c models.Candidate) string {
	if c.HasHash() {
		return "hash:" + c.InfoHash + ":" + strconv.Itoa(c.FileIdx)
	}
	return "url:" + c.URL
}

// releaseKey identifies a release independently of where it was found.
func releaseKey(c models.Candidate) string {
	r := c.Release
	langs := append([]string(nil), r.Languages...)
	sort.Strings(langs)

	parts := []string{
		normalizeTitle(r.Title),
		joinInts(r.Seasons),
		joinInts(r.Episodes),
		r.Resolution,
		strings.ToLower(r.Quality),
		r.Codec,
		strings.ToLower(r.Group),
		strings.Join(langs, ","),
	}
	return strings.Join(parts, "|")
}

func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

// anyWithin treats an unknown size as matching any size.
func anyWithin(sizes []int64, size int64, tolerance float64) bool {
	for _, s := range sizes {
		if s == 0 || size == 0 {
			return true
		}
		larger, diff := s, s-size
		if size > larger {
			larger = size
		}
		if diff < 0 {
			diff = -diff
		}
		if float64(diff) <= tolerance*float64(larger) {
			return true
		}
	}
	return false
}
