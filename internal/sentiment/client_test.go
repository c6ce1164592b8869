package sentiment_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/complaint-service/internal/domain"
	"github.com/campuscare/complaint-service/internal/sentiment"
)

func TestAnalyzeParsesOracleResponse(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sentiment":       "negative",
			"confidence":      0.87,
			"priority":        "high",
			"urgencyKeywords": []string{"urgent", "immediately"},
		})
	}))
	defer server.Close()

	client := sentiment.NewClient(server.URL, time.Second)
	result, err := client.Analyze(context.Background(), "fix this immediately, it is urgent")

	require.NoError(t, err)
	assert.Equal(t, "fix this immediately, it is urgent", gotBody["text"])
	assert.Equal(t, domain.SentimentNegative, result.Sentiment)
	assert.InDelta(t, 0.87, result.Confidence, 1e-9)
	assert.Equal(t, domain.ComplaintPriorityHigh, result.Priority)
	assert.Equal(t, []string{"urgent", "immediately"}, result.UrgencyKeywords)
}

func TestAnalyzeReturnsErrorOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := sentiment.NewClient(server.URL, time.Second)
	result, err := client.Analyze(context.Background(), "any text")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "500")
}

func TestAnalyzeReturnsErrorOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := sentiment.NewClient(server.URL, time.Second)
	_, err := client.Analyze(context.Background(), "any text")
	require.Error(t, err)
}

func TestAnalyzeHonorsContextDeadline(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so net/http starts its background read; without it
		// the server never notices the client disconnect and Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := sentiment.NewClient(server.URL, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Analyze(ctx, "slow oracle")
	require.Error(t, err)
	<-started
}

func TestAnalyzeReturnsErrorWhenOracleUnreachable(t *testing.T) {
	// Port 1 is never bound; the dial fails fast.
	client := sentiment.NewClient("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := client.Analyze(context.Background(), "any text")
	require.Error(t, err)
}
