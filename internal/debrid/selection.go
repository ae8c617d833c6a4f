package debrid

import (
	"path"
	"strings"

	"github.com/amaumene/gostremiomux/internal/parser"
)

// SelectFile picks the file loc refers to: the explicit index, then the
// filename, then the requested episode, then the largest video file of a
// movie.
func SelectFile(files []File, loc Locator) (File, bool) {
	if loc.FileIdx >= 0 {
		for _, f := range files {
			if f.Index == loc.FileIdx {
				return f, true
			}
		}
	}

	if loc.Filename != "" {
		want := strings.ToLower(path.Base(loc.Filename))
		for _, f := range files {
			if strings.ToLower(path.Base(f.Path)) == want {
				return f, true
			}
		}
	}

	if loc.IsEpisode() {
		if f, ok := largest(files, func(r parser.Release) bool {
			return r.IsEpisode(loc.Season, loc.Episode)
		}); ok {
			return f, true
		}
		return largest(files, func(r parser.Release) bool {
			return len(r.Episodes) > 0 && r.MatchesEpisode(loc.Season, loc.Episode)
		})
	}

	return largest(files, func(parser.Release) bool { return true })
}

func largest(files []File, match func(parser.Release) bool) (File, bool) {
	var (
		best  File
		found bool
	)
	for _, f := range files {
		name := path.Base(f.Path)
		if !parser.IsVideoFile(name) || !match(parser.Parse(name)) {
			continue
		}
		if !found || f.Size > best.Size {
			best, found = f, true
		}
	}
	return best, found
}
