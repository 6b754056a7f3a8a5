package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultVideosBaseURL = "https://www.googleapis.com/youtube/v3"
	DefaultVideoQuery    = "travel"
)

var ErrVideosDisabled = errors.New("video lookup is not configured")

// Video is one destination clip shown on the listing page.
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// WatchURL links to the clip on YouTube.
func (v Video) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(v.ID)
}

type VideoLookup interface {
	SearchVideos(ctx context.Context, destination string, limit int) ([]Video, error)
}

type VideosOption func(*YouTubeClient)

func WithVideosBaseURL(baseURL string) VideosOption {
	return func(c *YouTubeClient) { c.baseURL = baseURL }
}

func WithVideosHTTPClient(client *http.Client) VideosOption {
	return func(c *YouTubeClient) { c.http = client }
}

// WithVideoQuery sets the word put in front of the destination, for example
// "voyage" for French listings.
func WithVideoQuery(prefix string) VideosOption {
	return func(c *YouTubeClient) { c.prefix = prefix }
}

// YouTubeClient searches embeddable destination videos through the YouTube
// Data API.
type YouTubeClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	prefix  string
}

var _ VideoLookup = (*YouTubeClient)(nil)

func NewYouTubeClient(apiKey string, opts ...VideosOption) *YouTubeClient {
	c := &YouTubeClient{
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: DefaultVideosBaseURL,
		apiKey:  apiKey,
		prefix:  DefaultVideoQuery,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type thumbnail struct {
	URL string `json:"url"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				High    thumbnail `json:"high"`
				Medium  thumbnail `json:"medium"`
				Default thumbnail `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *YouTubeClient) SearchVideos(ctx context.Context, destination string, limit int) ([]Video, error) {
	if c.apiKey == "" {
		return nil, ErrVideosDisabled
	}
	destination = strings.TrimSpace(destination)
	if destination == "" || limit <= 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", strings.TrimSpace(c.prefix+" "+destination))
	params.Set("type", "video")
	params.Set("videoEmbeddable", "true")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", c.apiKey)

	var resp searchResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/search?"+params.Encode(), "videos", &resp); err != nil {
		return nil, err
	}
	out := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		thumbs := item.Snippet.Thumbnails
		thumb := thumbs.High.URL
		if thumb == "" {
			thumb = thumbs.Medium.URL
		}
		if thumb == "" {
			thumb = thumbs.Default.URL
		}
		out = append(out, Video{ID: item.ID.VideoID, Title: item.Snippet.Title, Thumbnail: thumb})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
