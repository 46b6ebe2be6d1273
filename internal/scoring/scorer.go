// Package scoring estimates how well a free-text search query matches a
// patient's condition description. The remote model is treated as a
// black box reached over HTTP; when it is unreachable, slow or returns
// garbage, a local keyword-overlap heuristic answers instead. Callers
// never see a scoring failure.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strings"
	"time"
)

// Result is the outcome of one relevance analysis. Score is always
// within [0,100] regardless of which path produced it.
type Result struct {
	Score        int      `json:"relevance_score"`
	MatchedTerms []string `json:"matched_terms"`
	Semantic     bool     `json:"semantic_similarity"`
}

// Scorer performs relevance analysis for a (query, condition) pair.
type Scorer interface {
	Score(ctx context.Context, query, condition string) Result
}

// Client calls an external relevance-scoring endpoint. The endpoint
// receives {"query": ..., "text": ...} and must answer with a Result
// payload. Exactly one attempt is made per call, bounded by Timeout; any
// failure falls back to the local heuristic.
type Client struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	// HTTPClient may be overridden in tests; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// NewClient builds a scoring client. A zero timeout defaults to 3s so a
// stalled model can never hold a whole search hostage.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{URL: url, APIKey: apiKey, Timeout: timeout}
}

type scoreRequest struct {
	Query string `json:"query"`
	Text  string `json:"text"`
}

// Score analyzes the query against the condition text. The remote path is
// attempted once when a URL is configured; everything else ends up in
// Fallback.
func (c *Client) Score(ctx context.Context, query, condition string) Result {
	if c == nil || c.URL == "" {
		return Fallback(query, condition)
	}

	body, err := json.Marshal(scoreRequest{Query: query, Text: condition})
	if err != nil {
		return Fallback(query, condition)
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return Fallback(query, condition)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		log.Printf("scoring: remote call failed: %v; using fallback", err)
		return Fallback(query, condition)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Printf("scoring: remote returned status %d; using fallback", resp.StatusCode)
		return Fallback(query, condition)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("scoring: malformed remote response: %v; using fallback", err)
		return Fallback(query, condition)
	}
	out.Score = clamp(out.Score)
	if out.MatchedTerms == nil {
		out.MatchedTerms = []string{}
	}
	return out
}

// Fallback is the local keyword-overlap heuristic. Query tokens longer
// than two characters that appear as substrings of the condition text
// count as matches; the score is the matched share of all query tokens,
// scaled to 100 and rounded.
func Fallback(query, condition string) Result {
	terms := strings.Fields(strings.ToLower(query))
	text := strings.ToLower(condition)

	matched := make([]string, 0, len(terms))
	for _, term := range terms {
		if len(term) > 2 && strings.Contains(text, term) {
			matched = append(matched, term)
		}
	}

	score := 0
	if len(terms) > 0 {
		score = int(math.Round(float64(len(matched)) / float64(len(terms)) * 100))
	}
	return Result{
		Score:        clamp(score),
		MatchedTerms: matched,
		Semantic:     len(matched) > 0,
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
