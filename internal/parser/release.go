package parser

import (
	"path"
	"slices"
	"strings"
)

var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".webm": true,
	".mpg":  true,
	".ts":   true,
}

// IsVideoFile reports whether name has a known video extension.
func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(path.Ext(name))]
}

// IsSeasonPack reports whether the release covers whole seasons rather than
// individual episodes.
func (r Release) IsSeasonPack() bool {
	return len(r.Episodes) == 0 && (len(r.Seasons) > 0 || r.Complete)
}

// MatchesEpisode reports whether the release can contain the given episode.
// Season packs match every episode of their seasons, complete packs without
// season markers match everything, and bare episode numbers are treated as
// absolute numbering.
func (r Release) MatchesEpisode(season, episode int) bool {
	if len(r.Seasons) == 0 {
		return r.Complete || slices.Contains(r.Episodes, episode)
	}
	if !slices.Contains(r.Seasons, season) {
		return false
	}
	return len(r.Episodes) == 0 || slices.Contains(r.Episodes, episode)
}

// IsEpisode reports whether the release is exactly this single episode.
func (r Release) IsEpisode(season, episode int) bool {
	return slices.Equal(r.Seasons, []int{season}) && slices.Contains(r.Episodes, episode)
}
