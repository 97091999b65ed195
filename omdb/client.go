package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mowitajm/movie"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const notAvailable = "N/A"

// Client implements movie.Provider over the OMDb HTTP API.
type Client struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	return &Client{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				MaxIdleConnsPerHost:   10,
			},
		},
		logger: logger,
	}, nil
}

func (c *Client) GetMovieByID(ctx context.Context, imdbID string) (movie.Movie, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return movie.Movie{}, movie.ErrInvalidID
	}

	q := url.Values{}
	q.Set("i", imdbID)
	q.Set("plot", "full")

	var payload movieResponse
	if err := c.get(ctx, q, &payload); err != nil {
		return movie.Movie{}, err
	}
	if err := payload.err(); err != nil {
		return movie.Movie{}, err
	}

	return payload.toMovie(), nil
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (movie.SearchResult, error) {
	if page <= 0 {
		page = 1
	}

	q := url.Values{}
	q.Set("s", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("type", "movie")

	var payload searchResponse
	if err := c.get(ctx, q, &payload); err != nil {
		return movie.SearchResult{}, err
	}
	if err := payload.err(); err != nil {
		return movie.SearchResult{}, err
	}

	result := movie.SearchResult{
		Movies: make([]movie.Summary, 0, len(payload.Search)),
		Page:   page,
	}
	result.TotalResults, _ = strconv.Atoi(payload.TotalResults)
	for _, s := range payload.Search {
		result.Movies = append(result.Movies, movie.Summary{
			ImdbID: s.ImdbID,
			Title:  s.Title,
			Year:   clean(s.Year),
			Type:   clean(s.Type),
			Poster: clean(s.Poster),
		})
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, q url.Values, out interface{}) error {
	q.Set("apikey", c.apiKey)
	endpoint := *c.baseURL
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "omdb: unexpected status", "status", resp.StatusCode)
		return fmt.Errorf("omdb: upstream returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode omdb response: %w", err)
	}
	return nil
}

type envelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (e envelope) err() error {
	if !strings.EqualFold(e.Response, "False") {
		return nil
	}
	switch e.Error {
	case "Movie not found!", "Incorrect IMDb ID.":
		return movie.ErrMovieNotFound
	}
	return fmt.Errorf("omdb: %s", e.Error)
}

type movieResponse struct {
	envelope
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	Type       string `json:"Type"`
}

func (r movieResponse) toMovie() movie.Movie {
	return movie.Movie{
		ImdbID:     r.ImdbID,
		Title:      r.Title,
		Year:       clean(r.Year),
		Rated:      clean(r.Rated),
		Released:   clean(r.Released),
		Runtime:    clean(r.Runtime),
		Genre:      clean(r.Genre),
		Director:   clean(r.Director),
		Writer:     clean(r.Writer),
		Actors:     clean(r.Actors),
		Plot:       clean(r.Plot),
		Language:   clean(r.Language),
		Country:    clean(r.Country),
		Poster:     clean(r.Poster),
		ImdbRating: clean(r.ImdbRating),
		Type:       clean(r.Type),
	}
}

type searchResponse struct {
	envelope
	Search []struct {
		ImdbID string `json:"imdbID"`
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		Type   string `json:"Type"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	TotalResults string `json:"totalResults"`
}

func clean(v string) string {
	if v == notAvailable {
		return ""
	}
	return v
}
