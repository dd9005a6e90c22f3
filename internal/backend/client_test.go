package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeline/internal/model"
)

func TestArticlesSendsCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/news", r.URL.Path)
		assert.Equal(t, "science", r.URL.Query().Get("category"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]model.Article{{Title: "Comet spotted", Category: "science"}})
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	got, err := c.Articles(context.Background(), "science")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Comet spotted", got[0].Title)
}

func TestYesterdayDecodesDigest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/yesterday", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"date":"2026-10-18","articles":[{"title":"Rates hold","category":"business"}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	got, err := c.Yesterday(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", got.Date)
	require.Len(t, got.Articles, 1)
}

func TestUploadHistorySetsHeaders(t *testing.T) {
	var gotItem model.HistoryItem
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "item-1", r.Header.Get("Idempotency-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotItem))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithToken("tok"))
	require.NoError(t, err)
	err = c.UploadHistory(context.Background(), model.HistoryItem{ID: "item-1", Correct: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, gotItem.Correct)
}

func TestUploadHistoryRequiresToken(t *testing.T) {
	c, err := New("http://example.com")
	require.NoError(t, err)
	err = c.UploadHistory(context.Background(), model.HistoryItem{ID: "x"})
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = c.ListHistory(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithToken("tok"), WithTimeout(time.Second))
	require.NoError(t, err)
	_, err = c.Editorial(context.Background(), "world")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "/api/editorial", statusErr.Path)
	assert.Contains(t, statusErr.Error(), "upstream down")
}

func TestNewRejectsInvalidURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}
