package models

// Wire types for the subset of the TMDB v3 API the tmdb preset reads.

type TMDBFindResponse struct {
	MovieResults []TMDBMovie `json:"movie_results"`
	TVResults    []TMDBTV    `json:"tv_results"`
}

type TMDBMovie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
}

type TMDBTV struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
}

// TMDBMovieResponse is one page of a movie list or search.
type TMDBMovieResponse struct {
	Page       int         `json:"page"`
	Results    []TMDBMovie `json:"results"`
	TotalPages int         `json:"total_pages"`
}

type TMDBTVResponse struct {
	Page       int      `json:"page"`
	Results    []TMDBTV `json:"results"`
	TotalPages int      `json:"total_pages"`
}

type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TMDBCredits is requested through append_to_response=credits.
type TMDBCredits struct {
	Cast []struct {
		Name string `json:"name"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

type TMDBNamed struct {
	Name string `json:"name"`
}

type TMDBMovieDetails struct {
	ID                  int         `json:"id"`
	IMDBId              string      `json:"imdb_id"`
	Title               string      `json:"title"`
	Overview            string      `json:"overview"`
	PosterPath          string      `json:"poster_path"`
	BackdropPath        string      `json:"backdrop_path"`
	ReleaseDate         string      `json:"release_date"`
	Runtime             int         `json:"runtime"`
	VoteAverage         float64     `json:"vote_average"`
	Genres              []TMDBGenre `json:"genres"`
	ProductionCountries []TMDBNamed `json:"production_countries"`
	SpokenLanguages     []TMDBNamed `json:"spoken_languages"`
	Credits             TMDBCredits `json:"credits"`
}

type TMDBTVDetails struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Overview         string       `json:"overview"`
	PosterPath       string       `json:"poster_path"`
	BackdropPath     string       `json:"backdrop_path"`
	FirstAirDate     string       `json:"first_air_date"`
	EpisodeRunTime   []int        `json:"episode_run_time"`
	VoteAverage      float64      `json:"vote_average"`
	Genres           []TMDBGenre  `json:"genres"`
	OriginCountry    []string     `json:"origin_country"`
	OriginalLanguage string       `json:"original_language"`
	Seasons          []TMDBSeason `json:"seasons"`
	Credits          TMDBCredits  `json:"credits"`
	ExternalIds      struct {
		IMDBId string `json:"imdb_id"`
	} `json:"external_ids"`
}

type TMDBSeason struct {
	SeasonNumber int `json:"season_number"`
}

type TMDBSeasonDetails struct {
	SeasonNumber int           `json:"season_number"`
	Episodes     []TMDBEpisode `json:"episodes"`
}

type TMDBEpisode struct {
	EpisodeNumber int    `json:"episode_number"`
	SeasonNumber  int    `json:"season_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
	StillPath     string `json:"still_path"`
}
