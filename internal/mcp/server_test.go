package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fitcatalog/exercisedb-mcp/internal/exercisedb"
)

// stubFetcher serves a fixed catalog as a single page.
type stubFetcher struct {
	exercises []exercisedb.Exercise
	err       error
	calls     int
}

func (f *stubFetcher) FetchPage(ctx context.Context, page, pageSize int) (*exercisedb.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &exercisedb.Page{TotalPages: 1, Exercises: f.exercises}, nil
}

// ExerciseServerTestSuite is the test suite for ExerciseServer
type ExerciseServerTestSuite struct {
	suite.Suite
	server  *ExerciseServer
	fetcher *stubFetcher
	ctx     context.Context
}

// SetupTest runs before each test
func (s *ExerciseServerTestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	s.fetcher = &stubFetcher{exercises: []exercisedb.Exercise{
		{Name: "Barbell Bench Press", Type: "barbell", Muscle: "chest", SecondaryMuscles: []string{"triceps", "shoulders"}},
		{Name: "Dumbbell Curl", Type: "dumbbell", Muscle: "biceps"},
		{Name: "Lat Pulldown", Type: "cable", Muscle: "lats", SecondaryMuscles: []string{"biceps"}},
	}}

	server, err := NewExerciseServer("test-server", "1.0.0", s.fetcher, logger)
	require.NoError(s.T(), err, "Failed to create test server")

	s.server = server
	s.ctx = context.Background()
}

// parseResponse is a helper to parse tool responses
func (s *ExerciseServerTestSuite) parseResponse(result *mcp.CallToolResult) map[string]any {
	require.NotNil(s.T(), result)
	require.Len(s.T(), result.Content, 1)

	text := result.Content[0].(*mcp.TextContent).Text
	var response map[string]any
	err := json.Unmarshal([]byte(text), &response)
	require.NoError(s.T(), err, "Failed to parse response")

	return response
}

func (s *ExerciseServerTestSuite) TestSearchExercises() {
	result, _, err := s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{Query: "bench press"})
	require.NoError(s.T(), err)
	require.False(s.T(), result.IsError)

	response := s.parseResponse(result)
	require.Equal(s.T(), float64(1), response["total_count"])

	exercises := response["exercises"].([]any)
	first := exercises[0].(map[string]any)
	require.Equal(s.T(), "Barbell Bench Press", first["name"])
}

func (s *ExerciseServerTestSuite) TestSearchExercises_LazyInitOnce() {
	_, _, err := s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{Query: "curl"})
	require.NoError(s.T(), err)
	_, _, err = s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{Query: "press"})
	require.NoError(s.T(), err)

	require.Equal(s.T(), 1, s.fetcher.calls, "catalog fetched once and reused")
}

func (s *ExerciseServerTestSuite) TestSearchExercises_Limit() {
	result, _, err := s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{Limit: 2})
	require.NoError(s.T(), err)

	response := s.parseResponse(result)
	require.Equal(s.T(), float64(3), response["total_count"])
	require.Equal(s.T(), float64(2), response["returned_count"])
	require.Len(s.T(), response["exercises"].([]any), 2)
}

func (s *ExerciseServerTestSuite) TestSearchExercises_MuscleGroupFilter() {
	result, _, err := s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{MuscleGroup: "biceps"})
	require.NoError(s.T(), err)

	response := s.parseResponse(result)
	require.Equal(s.T(), float64(2), response["total_count"], "primary and secondary muscles both count")
}

func (s *ExerciseServerTestSuite) TestSearchExercises_FetchFailure() {
	s.fetcher.err = errors.New("api unreachable")

	result, _, err := s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{Query: "press"})
	require.NoError(s.T(), err)
	require.True(s.T(), result.IsError)

	text := result.Content[0].(*mcp.TextContent).Text
	require.Contains(s.T(), text, "api unreachable")
}

func (s *ExerciseServerTestSuite) TestListMuscleGroups() {
	result, _, err := s.server.handleListMuscleGroups(s.ctx, nil, ListInput{})
	require.NoError(s.T(), err)

	response := s.parseResponse(result)
	require.Equal(s.T(), float64(5), response["count"])

	var groups []string
	for _, g := range response["muscle_groups"].([]any) {
		groups = append(groups, g.(string))
	}
	require.Equal(s.T(), []string{"biceps", "chest", "lats", "shoulders", "triceps"}, groups)
}

func (s *ExerciseServerTestSuite) TestListExerciseTypes() {
	result, _, err := s.server.handleListExerciseTypes(s.ctx, nil, ListInput{})
	require.NoError(s.T(), err)

	response := s.parseResponse(result)
	var types []string
	for _, v := range response["exercise_types"].([]any) {
		types = append(types, v.(string))
	}
	require.Equal(s.T(), []string{"barbell", "cable", "dumbbell"}, types)
}

func (s *ExerciseServerTestSuite) TestGetCacheStats() {
	// Before any fetch the cache reports not ready.
	result, _, err := s.server.handleGetCacheStats(s.ctx, nil, ListInput{})
	require.NoError(s.T(), err)

	response := s.parseResponse(result)
	require.Equal(s.T(), false, response["ready"])
	require.NotContains(s.T(), response, "last_refreshed")

	_, _, err = s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{})
	require.NoError(s.T(), err)

	result, _, err = s.server.handleGetCacheStats(s.ctx, nil, ListInput{})
	require.NoError(s.T(), err)

	response = s.parseResponse(result)
	require.Equal(s.T(), true, response["ready"])
	require.Equal(s.T(), float64(3), response["count"])
	require.Contains(s.T(), response, "last_refreshed")
}

func (s *ExerciseServerTestSuite) TestRefreshCache() {
	_, _, err := s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{})
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, s.fetcher.calls)

	result, _, err := s.server.handleRefreshCache(s.ctx, nil, ListInput{})
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, s.fetcher.calls, "refresh bypasses the TTL")

	response := s.parseResponse(result)
	require.Equal(s.T(), true, response["refreshed"])
	require.Equal(s.T(), float64(3), response["count"])
}

func (s *ExerciseServerTestSuite) TestClearCache() {
	_, _, err := s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{})
	require.NoError(s.T(), err)

	result, _, err := s.server.handleClearCache(s.ctx, nil, ListInput{})
	require.NoError(s.T(), err)

	response := s.parseResponse(result)
	require.Equal(s.T(), true, response["cleared"])

	statsResult, _, err := s.server.handleGetCacheStats(s.ctx, nil, ListInput{})
	require.NoError(s.T(), err)
	require.Equal(s.T(), false, s.parseResponse(statsResult)["ready"])

	// The next search re-fetches the catalog.
	_, _, err = s.server.handleSearchExercises(s.ctx, nil, SearchExercisesInput{})
	require.NoError(s.T(), err)
	require.Equal(s.T(), 2, s.fetcher.calls)
}

func TestExerciseServerTestSuite(t *testing.T) {
	suite.Run(t, new(ExerciseServerTestSuite))
}
