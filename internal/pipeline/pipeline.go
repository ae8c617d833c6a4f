// Package pipeline turns merged candidates into the stream list shown to the
// user: filter, dedupe, sort, format, truncate, always in that order.
package pipeline

import (
	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/internal/models"
)

// FormattedStream is a surviving candidate with its rendered display text.
type FormattedStream struct {
	Candidate   models.Candidate
	Name        string
	Description string
}

// Process applies the user's rules to candidates. It does not modify its
// input and returns the same output for the same arguments.
func Process(candidates []models.Candidate, user *config.UserConfig) []FormattedStream {
	if user == nil {
		user = &config.UserConfig{}
	}

	kept := Filter(candidates, user.Filters)
	if !user.Dedupe.Disabled {
		kept = Dedupe(kept, sizeTolerance(user.Dedupe))
	}
	kept = Sort(kept, user)

	limit := user.MaxResults
	if limit <= 0 {
		limit = constants.DefaultMaxResults
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}

	return Format(kept, user.Format)
}

func sizeTolerance(d config.DedupeRules) float64 {
	if d.SizeTolerance > 0 {
		return d.SizeTolerance
	}
	return constants.DefaultSizeTolerance
}
