// Package constants defines application-wide constants and default values.
package constants

import "time"

const (
	// Addon metadata
	AddonID          = "gostremiomux.stremio.addon"
	AddonVersion     = "1.0.0"
	AddonName        = "GoStremioMux"
	AddonDescription = "Aggregates streams from several Stremio addons and torrent indexers, with AllDebrid and Real-Debrid playback"

	// Default configuration values
	DefaultPort     = "5000"
	DefaultLogLevel = "info"
	DefaultBaseURL  = "http://localhost:5000"

	// Cache settings
	DefaultCacheBackend     = "memory"
	DefaultCacheSize        = 1000
	DefaultCacheMemoryBytes = 64 * 1024 * 1024
	DefaultDatabasePath     = "./cache.db"

	// Rate limiting
	TMDBRateLimit       = 20 // requests per second
	TMDBRateBurst       = 5  // burst capacity
	AllDebridRateLimit  = 10 // requests per second
	AllDebridRateBurst  = 2  // burst capacity
	RealDebridRateLimit = 4
	RealDebridRateBurst = 2
	IndexerRateLimit    = 5
	IndexerRateBurst    = 2

	// Log rotation
	LogMaxSizeMB  = 50
	LogMaxBackups = 3
	LogMaxAgeDays = 14
)

// Cache lifetimes
const (
	DefaultStreamTTL      = 1 * time.Hour
	DefaultShortStreamTTL = 5 * time.Minute
	DefaultMetaTTL        = 24 * time.Hour
	DefaultResolveTTL     = 1 * time.Hour
)

// Pipeline defaults
const (
	DefaultMaxResults    = 50
	DefaultSizeTolerance = 0.02

	DefaultNameTemplate        = `{{.AdapterName}}{{if .Release.Resolution}} {{.Release.Resolution}}{{end}}`
	DefaultDescriptionTemplate = `{{.Release.Title}}{{if .Release.Seasons}} S{{index .Release.Seasons 0}}{{end}}{{if .Release.Quality}} {{.Release.Quality}}{{end}}{{if .Release.Codec}} {{.Release.Codec}}{{end}}{{if .Size}}
💾 {{bytes .Size}}{{end}}{{if .Seeders}} 👤 {{.Seeders}}{{end}}{{if .Indexer}} ⚙️ {{.Indexer}}{{end}}`
)

// Preset identifiers
const (
	PresetStremio     = "stremio"
	PresetTorrentio   = "torrentio"
	PresetApibay      = "apibay"
	PresetEZTV        = "eztv"
	PresetTMDB        = "tmdb"
	PresetTorrentsCSV = "torrentscsv"
)

// Debrid store identifiers
const (
	StoreAllDebrid  = "alldebrid"
	StoreRealDebrid = "realdebrid"
)

// Genre is a TMDB genre id with its display name.
type Genre struct {
	ID   string
	Name string
}

// TMDBMovieGenres contains TMDB genres for movies.
var TMDBMovieGenres = []Genre{
	{ID: "28", Name: "Action"},
	{ID: "12", Name: "Adventure"},
	{ID: "16", Name: "Animation"},
	{ID: "35", Name: "Comedy"},
	{ID: "80", Name: "Crime"},
	{ID: "99", Name: "Documentary"},
	{ID: "18", Name: "Drama"},
	{ID: "10751", Name: "Family"},
	{ID: "14", Name: "Fantasy"},
	{ID: "36", Name: "History"},
	{ID: "27", Name: "Horror"},
	{ID: "10402", Name: "Music"},
	{ID: "9648", Name: "Mystery"},
	{ID: "10749", Name: "Romance"},
	{ID: "878", Name: "Science Fiction"},
	{ID: "10770", Name: "TV Movie"},
	{ID: "53", Name: "Thriller"},
	{ID: "10752", Name: "War"},
	{ID: "37", Name: "Western"},
}

// TMDBTVGenres contains TMDB genres for TV series.
var TMDBTVGenres = []Genre{
	{ID: "10759", Name: "Action & Adventure"},
	{ID: "16", Name: "Animation"},
	{ID: "35", Name: "Comedy"},
	{ID: "80", Name: "Crime"},
	{ID: "99", Name: "Documentary"},
	{ID: "18", Name: "Drama"},
	{ID: "10751", Name: "Family"},
	{ID: "10762", Name: "Kids"},
	{ID: "9648", Name: "Mystery"},
	{ID: "10763", Name: "News"},
	{ID: "10764", Name: "Reality"},
	{ID: "10765", Name: "Sci-Fi & Fantasy"},
	{ID: "10766", Name: "Soap"},
	{ID: "10767", Name: "Talk"},
	{ID: "10768", Name: "War & Politics"},
	{ID: "37", Name: "Western"},
}

// ResolutionRank orders known resolutions from best to worst.
var ResolutionRank = []string{
	"2160p",
	"1440p",
	"1080p",
	"720p",
	"576p",
	"480p",
	"360p",
}
