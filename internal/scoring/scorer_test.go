package scoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFallbackPartialOverlap(t *testing.T) {
	r := Fallback("back pain", "chronic back pain")
	assert.Equal(t, 100, r.Score)
	assert.ElementsMatch(t, []string{"back", "pain"}, r.MatchedTerms)
	assert.True(t, r.Semantic)
}

func TestFallbackNoOverlap(t *testing.T) {
	r := Fallback("diabetes", "fractured wrist")
	assert.Equal(t, 0, r.Score)
	assert.Empty(t, r.MatchedTerms)
	assert.False(t, r.Semantic)
}

func TestFallbackShortTokensDilute(t *testing.T) {
	// "of" is too short to qualify but still counts in the denominator.
	r := Fallback("of migraine", "severe migraine episodes")
	assert.Equal(t, 50, r.Score)
	assert.Equal(t, []string{"migraine"}, r.MatchedTerms)
}

func TestFallbackEmptyQuery(t *testing.T) {
	r := Fallback("   ", "anything at all")
	assert.Equal(t, 0, r.Score)
	assert.False(t, r.Semantic)
}

func TestFallbackIsCaseInsensitive(t *testing.T) {
	r := Fallback("ASTHMA", "Mild asthma since childhood")
	assert.Equal(t, 100, r.Score)
}

func TestScoreUsesRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"relevance_score": 87, "matched_terms": ["back pain"], "semantic_similarity": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", time.Second)
	r := c.Score(context.Background(), "back pain", "chronic back pain")
	assert.Equal(t, 87, r.Score)
	assert.Equal(t, []string{"back pain"}, r.MatchedTerms)
	assert.True(t, r.Semantic)
}

func TestScoreClampsRemoteValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"relevance_score": 250, "semantic_similarity": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	r := c.Score(context.Background(), "back pain", "chronic back pain")
	assert.Equal(t, 100, r.Score)
	assert.NotNil(t, r.MatchedTerms)
}

func TestScoreFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	r := c.Score(context.Background(), "back pain", "chronic back pain")
	assert.Equal(t, 100, r.Score, "fallback heuristic should answer")
	assert.True(t, r.Semantic)
}

func TestScoreFallsBackWhenUnreachable(t *testing.T) {
	// Closed server: the dial fails immediately.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", 500*time.Millisecond)
	r := c.Score(context.Background(), "back pain", "chronic back pain")
	assert.Greater(t, r.Score, 0)
}

func TestScoreFallsBackOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	r := c.Score(context.Background(), "back pain", "chronic back pain")
	assert.Equal(t, 100, r.Score)
}

func TestScoreWithoutURLUsesFallback(t *testing.T) {
	c := NewClient("", "", 0)
	r := c.Score(context.Background(), "back pain", "chronic back pain")
	assert.Equal(t, 100, r.Score)
}
