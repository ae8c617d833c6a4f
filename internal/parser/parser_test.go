package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeasonEpisode(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		seasons  []int
		episodes []int
	}{
		{"generic", "Show.S02E05.1080p", []int{2}, []int{5}},
		{"three digit season", "Show S003E12", []int{3}, []int{12}},
		{"season range", "The.Expanse.S01-S03.1080p.BluRay.x265-RARBG", []int{1, 2, 3}, nil},
		{"episode range", "Show.S01E01-E03.720p.WEB-DL", []int{1}, []int{1, 2, 3}},
		{"consecutive episodes", "Show.S01E01E02.720p", []int{1}, []int{1, 2}},
		{"season word", "Show Season 2 Complete 720p", []int{2}, nil},
		{"season word range", "Friends Seasons 1-10 Complete", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil},
		{"season pack", "Show.S04.1080p.WEB", []int{4}, nil},
		{"cross notation", "Show.1x02.720p.HDTV", []int{1}, []int{2}},
		{"absolute episode", "[SubsPlease] One Piece - 1071 (1080p) [ABCD1234].mkv", nil, []int{1071}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.title)
			assert.Equal(t, tt.seasons, r.Seasons)
			assert.Equal(t, tt.episodes, r.Episodes)
		})
	}
}

func TestParseCrossNotationSkippedAfterYear(t *testing.T) {
	r := Parse("Some.Movie.2019.1080p.2x264")

	assert.Equal(t, 2019, r.Year)
	assert.Equal(t, "1080p", r.Resolution)
	assert.Empty(t, r.Seasons)
	assert.Empty(t, r.Episodes)
}

func TestParseAttributes(t *testing.T) {
	r := Parse("Inception.2010.1080p.BluRay.x264-SPARKS.mkv")

	assert.Equal(t, "Inception", r.Title)
	assert.Equal(t, 2010, r.Year)
	assert.Equal(t, "1080p", r.Resolution)
	assert.Equal(t, "BluRay", r.Quality)
	assert.Equal(t, "avc", r.Codec)
	assert.Equal(t, "SPARKS", r.Group)
	assert.Equal(t, "mkv", r.Container)
	assert.Equal(t, "Inception.2010.1080p.BluRay.x264-SPARKS.mkv", r.Raw)
}

func TestParseLanguagesAndHDR(t *testing.T) {
	r := Parse("Movie.2020.MULTi.VFF.2160p.WEB.H265.DV.HDR-GROUP")

	assert.Equal(t, "Movie", r.Title)
	assert.Equal(t, []string{"multi", "fr"}, r.Languages)
	assert.Equal(t, "2160p", r.Resolution)
	assert.Equal(t, "WEB", r.Quality)
	assert.Equal(t, "hevc", r.Codec)
	assert.Equal(t, []string{"DV", "HDR"}, r.HDR)
	assert.Equal(t, "GROUP", r.Group)
}

func TestParseLeadingGroup(t *testing.T) {
	r := Parse("[SubsPlease] One Piece - 1071 (1080p) [ABCD1234].mkv")

	assert.Equal(t, "SubsPlease", r.Group)
	assert.Equal(t, "One Piece", r.Title)
	assert.Equal(t, "1080p", r.Resolution)
}

func TestParseRejectsFormatSuffixAsGroup(t *testing.T) {
	r := Parse("Show.S01E01-E03.720p.WEB-DL")

	assert.Equal(t, "WEB-DL", r.Quality)
	assert.Empty(t, r.Group)
}

func TestParseUnrecognisedTitle(t *testing.T) {
	r := Parse("zzzz")

	assert.Equal(t, "zzzz", r.Raw)
	assert.Empty(t, r.Seasons)
	assert.Empty(t, r.Episodes)
	assert.Empty(t, r.Resolution)
	assert.Empty(t, r.Codec)
	assert.Zero(t, r.Year)
}

func TestParseEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		r := Parse("")
		assert.Empty(t, r.Raw)
		assert.Empty(t, r.Seasons)
	})
}

func TestMatchesEpisode(t *testing.T) {
	assert.True(t, Parse("Show.S02E05.1080p").MatchesEpisode(2, 5))
	assert.False(t, Parse("Show.S02E05.1080p").MatchesEpisode(2, 6))
	assert.True(t, Parse("Show.S02.1080p").MatchesEpisode(2, 6))
	assert.False(t, Parse("Show.S02.1080p").MatchesEpisode(3, 1))
	assert.True(t, Parse("Show.S01-S03.1080p").MatchesEpisode(3, 1))
	assert.True(t, Parse("Show Complete Series 720p").MatchesEpisode(5, 9))
	assert.False(t, Parse("Movie.2019.1080p").MatchesEpisode(1, 1))
}

func TestIsSeasonPack(t *testing.T) {
	assert.True(t, Parse("Show.S02.1080p").IsSeasonPack())
	assert.False(t, Parse("Show.S02E01.1080p").IsSeasonPack())
	assert.True(t, Parse("Show.S02E01.1080p").IsEpisode(2, 1))
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("Show.S01E01.MKV"))
	assert.True(t, IsVideoFile("dir/movie.mp4"))
	assert.False(t, IsVideoFile("sample.nfo"))
	assert.False(t, IsVideoFile("noext"))
}
