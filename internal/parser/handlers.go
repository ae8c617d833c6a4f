package parser

import (
	"regexp"
	"strconv"
	"strings"
)

type field string

const (
	fieldResolution field = "resolution"
	fieldYear       field = "year"
	fieldSeasons    field = "seasons"
	fieldEpisodes   field = "episodes"
	fieldQuality    field = "quality"
	fieldCodec      field = "codec"
	fieldHDR        field = "hdr"
	fieldAudio      field = "audio"
	fieldBitDepth   field = "bitDepth"
	fieldLanguages  field = "languages"
	fieldComplete   field = "complete"
	fieldGroup      field = "group"
	fieldContainer  field = "container"
)

// accumulating fields collect values from every matching handler.
var accumulating = map[field]bool{
	fieldHDR:       true,
	fieldAudio:     true,
	fieldLanguages: true,
}

// value is what an extractor yields; only the member matching the field is set.
type value struct {
	ints []int
	str  string
	flag bool
}

type handler struct {
	field   field
	pattern *regexp.Regexp
	extract func(m []string) (value, bool)
	// skipIfBefore drops the match when one of these fields was already
	// resolved by a match starting earlier in the title.
	skipIfBefore []field
}

const (
	lb = `(?:^|[^a-z0-9])`
	rb = `(?:[^a-z0-9]|$)`
)

func re(body string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + body)
}

func word(body string) *regexp.Regexp {
	return re(lb + `(` + body + `)` + rb)
}

func constant(s string) func([]string) (value, bool) {
	return func([]string) (value, bool) { return value{str: s}, true }
}

func flag() func([]string) (value, bool) {
	return func([]string) (value, bool) { return value{flag: true}, true }
}

func single(m []string) (value, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return value{}, false
	}
	return value{ints: []int{n}}, true
}

// span expands the first two captures into an inclusive range. A missing or
// inverted upper bound degrades to the lower bound alone.
func span(m []string) (value, bool) {
	from, err := strconv.Atoi(m[1])
	if err != nil {
		return value{}, false
	}
	if len(m) < 3 || m[2] == "" {
		return value{ints: []int{from}}, true
	}
	to, err := strconv.Atoi(m[2])
	if err != nil || to < from || to-from > 100 {
		return value{ints: []int{from}}, true
	}
	ints := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		ints = append(ints, i)
	}
	return value{ints: ints}, true
}

func absoluteEpisode(m []string) (value, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil || (n >= 1900 && n <= 2099) {
		return value{}, false
	}
	return value{ints: []int{n}}, true
}

func heightToResolution(m []string) (value, bool) {
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return value{}, false
	}
	switch {
	case h >= 2000:
		return value{str: "2160p"}, true
	case h >= 1400:
		return value{str: "1440p"}, true
	case h >= 1000:
		return value{str: "1080p"}, true
	case h >= 700:
		return value{str: "720p"}, true
	case h >= 560:
		return value{str: "576p"}, true
	case h >= 470:
		return value{str: "480p"}, true
	}
	return value{str: "360p"}, true
}

func lowerResolution(m []string) (value, bool) {
	return value{str: strings.ToLower(m[2]) + "p"}, true
}

func groupName(m []string) (value, bool) {
	g := strings.TrimSpace(m[1])
	if g == "" {
		return value{}, false
	}
	if _, err := strconv.Atoi(g); err == nil {
		return value{}, false
	}
	switch strings.ToLower(g) {
	case "dl", "rip", "ray", "hd", "web", "x264", "x265", "h264", "h265", "dts", "hdr":
		return value{}, false
	}
	return value{str: g}, true
}

func lowered(m []string) (value, bool) {
	return value{str: strings.ToLower(m[1])}, true
}

// handlers is evaluated top to bottom. Within a field the first handler to
// produce a value wins, so more specific patterns are registered first.
var handlers = []handler{
	// resolution
	{field: fieldResolution, pattern: word(`2160p|4k|uhd`), extract: constant("2160p")},
	{field: fieldResolution, pattern: word(`1440p`), extract: constant("1440p")},
	{field: fieldResolution, pattern: word(`1080[pi]|fhd`), extract: constant("1080p")},
	{field: fieldResolution, pattern: re(lb + `((720|576|480|360)[pi])` + rb), extract: lowerResolution},
	{field: fieldResolution, pattern: re(lb + `\d{3,4}x(\d{3,4})` + rb), extract: heightToResolution},

	// year
	{field: fieldYear, pattern: re(`[\[(]((?:19|20)\d{2})[\])]`), extract: single},
	{field: fieldYear, pattern: re(lb + `((?:19|20)\d{2})` + rb), extract: single},

	// seasons
	{field: fieldSeasons, pattern: re(lb + `s(\d{3})[. _-]?e\d{1,4}` + rb), extract: single},
	{field: fieldSeasons, pattern: re(lb + `s(\d{1,2})[. _-]?(?:-|to|~)[. _-]?s?(\d{1,2})` + rb), extract: span},
	{field: fieldSeasons, pattern: re(lb + `s(\d{1,2})[. _-]?e\d{1,3}`), extract: single},
	{field: fieldSeasons, pattern: re(lb + `(?:season|saison|temporada|stagione|staffel)s?[. _-]?(\d{1,2})(?:[. _-]?(?:-|to|&|and|through)[. _-]?(\d{1,2}))?` + rb), extract: span},
	{field: fieldSeasons, pattern: re(lb + `s(\d{1,2})` + rb), extract: single},
	{field: fieldSeasons, pattern: re(lb + `(\d{1,2})x\d{2,3}` + rb), extract: single, skipIfBefore: []field{fieldYear, fieldResolution}},

	// episodes
	{field: fieldEpisodes, pattern: re(lb + `s\d{3}[. _-]?e(\d{1,4})` + rb), extract: single},
	{field: fieldEpisodes, pattern: re(lb + `s\d{1,2}[. _-]?e(\d{1,3})[. _-]?(?:-[. _-]?e?|e)(\d{1,3})` + rb), extract: span},
	{field: fieldEpisodes, pattern: re(lb + `s\d{1,2}[. _-]?e(\d{1,3})`), extract: single},
	{field: fieldEpisodes, pattern: re(lb + `\d{1,2}x(\d{2,3})` + rb), extract: single, skipIfBefore: []field{fieldYear, fieldResolution}},
	{field: fieldEpisodes, pattern: re(lb + `(?:episode|episodio|épisode|ep)[. _-]?(\d{1,4})` + rb), extract: single},
	{field: fieldEpisodes, pattern: re(`(?:^|\s)-\s(\d{2,4})(?:v\d)?(?:\s|$|\[|\()`), extract: absoluteEpisode},

	// quality (source type)
	{field: fieldQuality, pattern: word(`remux|bdremux`), extract: constant("BluRay REMUX")},
	{field: fieldQuality, pattern: word(`blu-?ray|bdrip|brrip|bd25|bd50`), extract: constant("BluRay")},
	{field: fieldQuality, pattern: word(`web-?dl|webdl`), extract: constant("WEB-DL")},
	{field: fieldQuality, pattern: word(`web-?rip`), extract: constant("WEBRip")},
	{field: fieldQuality, pattern: word(`hdtv|pdtv`), extract: constant("HDTV")},
	{field: fieldQuality, pattern: word(`hdrip`), extract: constant("HDRip")},
	{field: fieldQuality, pattern: word(`dvdscr|screener|scr`), extract: constant("SCR")},
	{field: fieldQuality, pattern: word(`dvdrip|dvd-?r|dvd`), extract: constant("DVD")},
	{field: fieldQuality, pattern: word(`hd-?cam|cam-?rip|cam`), extract: constant("CAM")},
	{field: fieldQuality, pattern: word(`hd-?ts|telesync`), extract: constant("TeleSync")},
	{field: fieldQuality, pattern: word(`web`), extract: constant("WEB")},

	// codec
	{field: fieldCodec, pattern: word(`x\.?265|h\.?265|hevc`), extract: constant("hevc")},
	{field: fieldCodec, pattern: word(`x\.?264|h\.?264|avc`), extract: constant("avc")},
	{field: fieldCodec, pattern: word(`av1`), extract: constant("av1")},
	{field: fieldCodec, pattern: word(`vp9`), extract: constant("vp9")},
	{field: fieldCodec, pattern: word(`xvid|divx`), extract: constant("xvid")},
	{field: fieldCodec, pattern: word(`mpeg-?2`), extract: constant("mpeg2")},

	// hdr
	{field: fieldHDR, pattern: word(`dolby[. ]?vision|dovi|dv`), extract: constant("DV")},
	{field: fieldHDR, pattern: word(`hdr10\+|hdr10plus`), extract: constant("HDR10+")},
	{field: fieldHDR, pattern: re(lb + `(hdr10|hdr)(?:[^a-z0-9+]|$)`), extract: constant("HDR")},

	// audio
	{field: fieldAudio, pattern: word(`atmos`), extract: constant("Atmos")},
	{field: fieldAudio, pattern: word(`truehd`), extract: constant("TrueHD")},
	{field: fieldAudio, pattern: word(`dts-?hd(?:[. -]?ma)?|dts-?x`), extract: constant("DTS-HD")},
	{field: fieldAudio, pattern: re(lb + `(dts)(?:[^a-z0-9-]|$)`), extract: constant("DTS")},
	{field: fieldAudio, pattern: re(lb + `(ddp|dd\+|e-?ac-?3)(?:[. ]?[257]\.[01])?` + rb), extract: constant("DD+")},
	{field: fieldAudio, pattern: re(lb + `(dd|ac-?3)(?:[. ]?[257]\.[01])?(?:[^a-z0-9+]|$)`), extract: constant("DD")},
	{field: fieldAudio, pattern: word(`aac(?:[. ]?[257]\.[01])?`), extract: constant("AAC")},
	{field: fieldAudio, pattern: word(`flac`), extract: constant("FLAC")},
	{field: fieldAudio, pattern: word(`opus`), extract: constant("Opus")},

	// bit depth
	{field: fieldBitDepth, pattern: re(lb + `(8|10|12)[. -]?bits?` + rb), extract: func(m []string) (value, bool) {
		return value{str: m[1] + "bit"}, true
	}},
	{field: fieldBitDepth, pattern: word(`hi10p?`), extract: constant("10bit")},

	// languages
	{field: fieldLanguages, pattern: word(`multi(?:[. -]?(?:lang|audio|subs?))?`), extract: constant("multi")},
	{field: fieldLanguages, pattern: word(`english|eng`), extract: constant("en")},
	{field: fieldLanguages, pattern: word(`truefrench|french|vostfr|vff|vfq|vfi|vf2|vf`), extract: constant("fr")},
	{field: fieldLanguages, pattern: word(`italian|ita`), extract: constant("it")},
	{field: fieldLanguages, pattern: word(`spanish|castellano|latino|spa|esp`), extract: constant("es")},
	{field: fieldLanguages, pattern: word(`german|deutsch|ger`), extract: constant("de")},
	{field: fieldLanguages, pattern: word(`portuguese|pt-br|dublado`), extract: constant("pt")},
	{field: fieldLanguages, pattern: word(`russian|rus`), extract: constant("ru")},
	{field: fieldLanguages, pattern: word(`japanese|jpn`), extract: constant("ja")},
	{field: fieldLanguages, pattern: word(`korean|kor`), extract: constant("ko")},
	{field: fieldLanguages, pattern: word(`chinese|mandarin`), extract: constant("zh")},
	{field: fieldLanguages, pattern: word(`hindi`), extract: constant("hi")},
	{field: fieldLanguages, pattern: word(`arabic`), extract: constant("ar")},
	{field: fieldLanguages, pattern: word(`polish`), extract: constant("pl")},
	{field: fieldLanguages, pattern: word(`dutch`), extract: constant("nl")},
	{field: fieldLanguages, pattern: word(`turkish`), extract: constant("tr")},

	// complete packs
	{field: fieldComplete, pattern: word(`complete|integrale|intégrale|full[. ]series|collection|box[. ]?set`), extract: flag()},

	// group
	{field: fieldGroup, pattern: re(`-([a-z0-9]+)(?:\[[a-z0-9.]+\])?(?:\.[a-z0-9]{2,4})?$`), extract: groupName},
	{field: fieldGroup, pattern: re(`^\[([^\]]+)\]`), extract: groupName},

	// container
	{field: fieldContainer, pattern: re(`\.(mkv|mp4|avi|m4v|mov|wmv|webm|mpg|iso|ts)$`), extract: lowered},
}
