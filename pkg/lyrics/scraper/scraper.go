// Package scraper looks up romaji lyrics on lyrical-nonsense.com. It is the
// older lookup path and does not share the AI search's cache or limiter.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/himanishpuri/lyricfinder/pkg/models"
)

const (
	DefaultBaseURL   = "https://www.lyrical-nonsense.com"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

	titleSelector  = ".titletext h1"
	artistSelector = ".titletext h2"
	lyricsSelector = "#PriLyr.olyrictext .line-text"
)

var (
	ErrBadQuery = errors.New(`Please provide song in format: "artist title"`)
	ErrNotFound = errors.New("Could not find lyrics. Make sure artist and song names are correct.")
	ErrNoRomaji = errors.New("Could not extract romaji lyrics from the page")
)

var (
	nonArtistChars = regexp.MustCompile(`[^a-z0-9]`)
	nonTitleChars  = regexp.MustCompile(`[^a-z0-9\-]`)
	// Hiragana, katakana and CJK ideographs.
	japaneseChars = regexp.MustCompile(`[\x{3040}-\x{309f}\x{30a0}-\x{30ff}\x{4e00}-\x{9faf}]`)
)

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit paces outbound page fetches.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageURL builds the lyrics page address for "artist title words...".
func (c *Client) PageURL(query string) (string, error) {
	words := strings.Fields(query)
	if len(words) < 2 {
		return "", ErrBadQuery
	}
	artist := nonArtistChars.ReplaceAllString(strings.ToLower(words[0]), "")
	title := nonTitleChars.ReplaceAllString(strings.ToLower(strings.Join(words[1:], "-")), "")
	return fmt.Sprintf("%s/global/lyrics/%s/%s/#Romaji", c.baseURL, artist, title), nil
}

// Lookup fetches and parses the lyrics page for query. Every fetch failure
// is reported as ErrNotFound.
func (c *Client) Lookup(ctx context.Context, query string) (*models.ScrapedLyrics, error) {
	pageURL, err := c.PageURL(query)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", ErrNotFound, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w (status %d)", ErrNotFound, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w (parse page: %v)", ErrNotFound, err)
	}

	return extract(doc, pageURL)
}

func extract(doc *goquery.Document, pageURL string) (*models.ScrapedLyrics, error) {
	var lines []string
	doc.Find(lyricsSelector).Each(func(_ int, s *goquery.Selection) {
		line := strings.TrimSpace(strings.ReplaceAll(s.Text(), "<br>", ""))
		if line != "" && !japaneseChars.MatchString(line) {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return nil, ErrNoRomaji
	}

	// The page URL ends in ".../{artist}/{title}/#Romaji".
	parts := strings.Split(pageURL, "/")
	urlTitle, urlArtist := parts[len(parts)-2], parts[len(parts)-3]

	title := strings.TrimSpace(doc.Find(titleSelector).Text())
	if title == "" {
		title = urlTitle
	}
	artist := strings.TrimSpace(doc.Find(artistSelector).Text())
	if artist == "" {
		artist = urlArtist
	}

	return &models.ScrapedLyrics{
		Title:  capitalize(title),
		Artist: capitalize(artist),
		URL:    pageURL,
		Lyrics: lines,
	}, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
