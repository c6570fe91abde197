package model

// Types in this file mirror TMDB v3 JSON payloads. They are never persisted.

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Paged is one page of a TMDB list endpoint.
type Paged[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Adult            bool    `json:"adult"`
}

func (m Movie) RankID() int             { return m.ID }
func (m Movie) RankPopularity() float64 { return m.Popularity }

type MovieDetails struct {
	Movie
	Genres   []Genre `json:"genres"`
	Runtime  int     `json:"runtime"`
	Tagline  string  `json:"tagline"`
	Status   string  `json:"status"`
	Budget   int64   `json:"budget"`
	Revenue  int64   `json:"revenue"`
	ImdbID   string  `json:"imdb_id"`
	Homepage string  `json:"homepage"`
}

type TvShow struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	OriginalName     string   `json:"original_name,omitempty"`
	OriginalLanguage string   `json:"original_language,omitempty"`
	Overview         string   `json:"overview"`
	PosterPath       string   `json:"poster_path"`
	BackdropPath     string   `json:"backdrop_path"`
	FirstAirDate     string   `json:"first_air_date"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	GenreIDs         []int    `json:"genre_ids,omitempty"`
	OriginCountry    []string `json:"origin_country,omitempty"`
}

func (s TvShow) RankID() int             { return s.ID }
func (s TvShow) RankPopularity() float64 { return s.Popularity }

type Network struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LogoPath string `json:"logo_path"`
}

type Season struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
	PosterPath   string `json:"poster_path"`
}

type TvDetails struct {
	TvShow
	Genres           []Genre   `json:"genres"`
	Tagline          string    `json:"tagline"`
	Status           string    `json:"status"`
	LastAirDate      string    `json:"last_air_date"`
	NumberOfSeasons  int       `json:"number_of_seasons"`
	NumberOfEpisodes int       `json:"number_of_episodes"`
	EpisodeRunTime   []int     `json:"episode_run_time"`
	Networks         []Network `json:"networks"`
	Seasons          []Season  `json:"seasons"`
	Homepage         string    `json:"homepage"`
}

type Person struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	ProfilePath        string  `json:"profile_path"`
	Popularity         float64 `json:"popularity"`
	KnownForDepartment string  `json:"known_for_department"`
	Adult              bool    `json:"adult"`
}

func (p Person) RankID() int             { return p.ID }
func (p Person) RankPopularity() float64 { return p.Popularity }

type PersonDetails struct {
	Person
	Biography    string   `json:"biography"`
	Birthday     string   `json:"birthday"`
	Deathday     string   `json:"deathday"`
	PlaceOfBirth string   `json:"place_of_birth"`
	Gender       int      `json:"gender"`
	ImdbID       string   `json:"imdb_id"`
	Homepage     string   `json:"homepage"`
	AlsoKnownAs  []string `json:"also_known_as"`
}

// Role is one character played across a TV run (aggregate credits only).
type Role struct {
	Character    string `json:"character"`
	EpisodeCount int    `json:"episode_count"`
}

// Job is one crew job across a TV run (aggregate credits only).
type Job struct {
	Job          string `json:"job"`
	EpisodeCount int    `json:"episode_count"`
}

type CastMember struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Character          string  `json:"character,omitempty"`
	Roles              []Role  `json:"roles,omitempty"`
	ProfilePath        string  `json:"profile_path"`
	Order              int     `json:"order"`
	Popularity         float64 `json:"popularity"`
	KnownForDepartment string  `json:"known_for_department"`
	TotalEpisodeCount  int     `json:"total_episode_count,omitempty"`
}

type CrewMember struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Job               string  `json:"job,omitempty"`
	Jobs              []Job   `json:"jobs,omitempty"`
	Department        string  `json:"department"`
	ProfilePath       string  `json:"profile_path"`
	Popularity        float64 `json:"popularity"`
	TotalEpisodeCount int     `json:"total_episode_count,omitempty"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CombinedCredit is one movie or TV credit of a person.
type CombinedCredit struct {
	ID           int       `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	Character    string    `json:"character,omitempty"`
	Job          string    `json:"job,omitempty"`
	Department   string    `json:"department,omitempty"`
	PosterPath   string    `json:"poster_path"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	Popularity   float64   `json:"popularity"`
	VoteAverage  float64   `json:"vote_average"`
	VoteCount    int       `json:"vote_count"`
}

func (c CombinedCredit) RankID() int             { return c.ID }
func (c CombinedCredit) RankPopularity() float64 { return c.Popularity }

// Date returns the release date for movies and the first air date for TV.
func (c CombinedCredit) Date() string {
	if c.ReleaseDate != "" {
		return c.ReleaseDate
	}
	return c.FirstAirDate
}

type PersonCredits struct {
	Cast []CombinedCredit `json:"cast"`
	Crew []CombinedCredit `json:"crew"`
}

type Video struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Size        int    `json:"size"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
}

type WatchProvider struct {
	ProviderID        int            `json:"provider_id"`
	ProviderName      string         `json:"provider_name"`
	LogoPath          string         `json:"logo_path"`
	DisplayPriority   int            `json:"display_priority"`
	DisplayPriorities map[string]int `json:"display_priorities,omitempty"`
}

// PriorityIn returns the provider's display priority for region, falling back
// to the global priority.
func (p WatchProvider) PriorityIn(region string) int {
	if v, ok := p.DisplayPriorities[region]; ok {
		return v
	}
	return p.DisplayPriority
}

// ProviderAvailability is where a single title streams in one region.
type ProviderAvailability struct {
	Link     string          `json:"link"`
	Flatrate []WatchProvider `json:"flatrate,omitempty"`
	Rent     []WatchProvider `json:"rent,omitempty"`
	Buy      []WatchProvider `json:"buy,omitempty"`
}

type Region struct {
	Code        string `json:"iso_3166_1"`
	EnglishName string `json:"english_name"`
	NativeName  string `json:"native_name"`
}

// Resource is a search result of exactly one kind.
type Resource struct {
	Kind   MediaType `json:"kind"`
	Movie  *Movie    `json:"movie,omitempty"`
	TV     *TvShow   `json:"tv,omitempty"`
	Person *Person   `json:"person,omitempty"`
}

// Title returns the display name regardless of kind.
func (r Resource) Title() string {
	switch r.Kind {
	case MediaTypeMovie:
		return r.Movie.Title
	case MediaTypeTV:
		return r.TV.Name
	case MediaTypePerson:
		return r.Person.Name
	}
	return ""
}
