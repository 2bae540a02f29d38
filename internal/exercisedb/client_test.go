package exercisedb

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/exercises", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "100", r.URL.Query().Get("limit"))
		require.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"totalPages": 3,
			"exercises": [
				{"name": "Barbell Bench Press", "type": "barbell", "muscle": "chest", "secondaryMuscles": ["triceps", "shoulders"]},
				{"name": "Dumbbell Curl", "type": "dumbbell", "muscle": "biceps"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger(), WithAPIKey("test-key"))

	page, err := client.FetchPage(context.Background(), 2, 100)
	require.NoError(t, err)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Exercises, 2)
	require.Equal(t, "Barbell Bench Press", page.Exercises[0].Name)
	require.Equal(t, []string{"triceps", "shoulders"}, page.Exercises[0].SecondaryMuscles)
	require.Empty(t, page.Exercises[1].SecondaryMuscles)
}

func TestFetchPage_NoAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["X-Api-Key"]
		require.False(t, present, "no API key header expected")
		w.Write([]byte(`{"exercises": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())

	page, err := client.FetchPage(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Zero(t, page.TotalPages, "omitted totalPages decodes to zero")
	require.Empty(t, page.Exercises)
}

func TestFetchPage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())

	_, err := client.FetchPage(context.Background(), 1, 100)
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 429")
}

func TestFetchPage_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exercises": [`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())

	_, err := client.FetchPage(context.Background(), 1, 100)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode page 1")
}
