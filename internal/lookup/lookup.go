// Package lookup wraps the third-party HTTP APIs behind the fun and info
// commands. Every failure (network error, non-2xx status, malformed
// payload) is swallowed here and surfaces to the caller as an absent
// result; the underlying cause never reaches the end user.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	http   *http.Client
	logger *zap.Logger

	catAPI     string
	dogAPI     string
	pugAPI     string
	jokeAPI    string
	norrisAPI  string
	pokemonAPI string
	githubAPI  string
	spaceAPI   string
	itunesAPI  string
	covidAPI   string
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		http:       &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		catAPI:     "https://api.thecatapi.com/v1/images/search",
		dogAPI:     "https://dog.ceo/api/breeds/image/random",
		pugAPI:     "https://dog.ceo/api/breed/pug/images/random",
		jokeAPI:    "https://icanhazdadjoke.com/",
		norrisAPI:  "https://api.chucknorris.io/jokes/random",
		pokemonAPI: "https://pokeapi.co/api/v2/pokemon",
		githubAPI:  "https://api.github.com/repos",
		spaceAPI:   "http://api.open-notify.org/astros.json",
		itunesAPI:  "https://itunes.apple.com/search",
		covidAPI:   "https://disease.sh/v3/covid-19",
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("lookup request failed", zap.String("url", rawURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("lookup request rejected", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Debug("lookup payload malformed", zap.String("url", rawURL), zap.Error(err))
		return false
	}
	return true
}

func (c *Client) CatImage(ctx context.Context) (string, bool) {
	var payload []struct {
		URL string `json:"url"`
	}
	if !c.getJSON(ctx, c.catAPI, &payload) || len(payload) == 0 || payload[0].URL == "" {
		return "", false
	}
	return payload[0].URL, true
}

func (c *Client) DogImage(ctx context.Context) (string, bool) {
	return c.dogCEO(ctx, c.dogAPI)
}

func (c *Client) PugImage(ctx context.Context) (string, bool) {
	return c.dogCEO(ctx, c.pugAPI)
}

func (c *Client) dogCEO(ctx context.Context, endpoint string) (string, bool) {
	var payload struct {
		Message string `json:"message"`
	}
	if !c.getJSON(ctx, endpoint, &payload) || payload.Message == "" {
		return "", false
	}
	return payload.Message, true
}

func (c *Client) DadJoke(ctx context.Context) (string, bool) {
	var payload struct {
		Joke string `json:"joke"`
	}
	if !c.getJSON(ctx, c.jokeAPI, &payload) || payload.Joke == "" {
		return "", false
	}
	return payload.Joke, true
}

func (c *Client) ChuckNorris(ctx context.Context) (string, bool) {
	var payload struct {
		Value string `json:"value"`
	}
	if !c.getJSON(ctx, c.norrisAPI, &payload) || payload.Value == "" {
		return "", false
	}
	return payload.Value, true
}

type Pokemon struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

func (p Pokemon) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		names = append(names, t.Type.Name)
	}
	return names
}

func (c *Client) Pokemon(ctx context.Context, name string) (Pokemon, bool) {
	var payload Pokemon
	endpoint := c.pokemonAPI + "/" + url.PathEscape(strings.ToLower(name))
	if !c.getJSON(ctx, endpoint, &payload) {
		return Pokemon{}, false
	}
	return payload, true
}

type Repo struct {
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	OpenIssues  int       `json:"open_issues_count"`
	Language    string    `json:"language"`
	HTMLURL     string    `json:"html_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Client) GithubRepo(ctx context.Context, repo string) (Repo, bool) {
	var payload Repo
	if !c.getJSON(ctx, c.githubAPI+"/"+repo, &payload) || payload.FullName == "" {
		return Repo{}, false
	}
	return payload, true
}

type SpaceStation struct {
	Number int `json:"number"`
	People []struct {
		Name  string `json:"name"`
		Craft string `json:"craft"`
	} `json:"people"`
}

func (c *Client) SpaceStation(ctx context.Context) (SpaceStation, bool) {
	var payload SpaceStation
	if !c.getJSON(ctx, c.spaceAPI, &payload) {
		return SpaceStation{}, false
	}
	return payload, true
}

type Song struct {
	TrackName      string  `json:"trackName"`
	ArtistName     string  `json:"artistName"`
	CollectionName string  `json:"collectionName"`
	Genre          string  `json:"primaryGenreName"`
	TrackPrice     float64 `json:"trackPrice"`
	PreviewURL     string  `json:"previewUrl"`
	ArtworkURL     string  `json:"artworkUrl100"`
	ReleaseDate    string  `json:"releaseDate"`
}

func (c *Client) Song(ctx context.Context, query string) (Song, bool) {
	var payload struct {
		Results []Song `json:"results"`
	}
	endpoint := fmt.Sprintf("%s?term=%s&media=music&limit=1", c.itunesAPI, url.QueryEscape(query))
	if !c.getJSON(ctx, endpoint, &payload) || len(payload.Results) == 0 {
		return Song{}, false
	}
	return payload.Results[0], true
}

type CovidStats struct {
	Country     string `json:"country"`
	Cases       int64  `json:"cases"`
	Deaths      int64  `json:"deaths"`
	Recovered   int64  `json:"recovered"`
	Active      int64  `json:"active"`
	TodayCases  int64  `json:"todayCases"`
	TodayDeaths int64  `json:"todayDeaths"`
}

// Covid fetches global stats when location is empty, otherwise tries the
// country endpoint and falls back to the US-state endpoint.
func (c *Client) Covid(ctx context.Context, location string) (CovidStats, bool) {
	var payload CovidStats
	if location == "" {
		if !c.getJSON(ctx, c.covidAPI+"/all", &payload) {
			return CovidStats{}, false
		}
		return payload, true
	}
	if c.getJSON(ctx, c.covidAPI+"/countries/"+url.PathEscape(location), &payload) {
		return payload, true
	}
	if c.getJSON(ctx, c.covidAPI+"/states/"+url.PathEscape(location), &payload) {
		return payload, true
	}
	return CovidStats{}, false
}
