package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fitcatalog/exercisedb-mcp/internal/catalog"
	"github.com/fitcatalog/exercisedb-mcp/internal/exercisedb"
	"github.com/fitcatalog/exercisedb-mcp/internal/search"
)

// DefaultSearchResultLimit caps search responses when the caller does not ask
// for a specific limit.
const DefaultSearchResultLimit = 20

// ExerciseServer exposes the exercise catalog over MCP. The catalog is
// fetched lazily on the first tool call that needs it and re-fetched once the
// cached snapshot outlives its TTL.
type ExerciseServer struct {
	server            *mcp.Server
	logger            *slog.Logger
	cache             *catalog.Cache
	engine            *search.Engine
	fetcher           exercisedb.PageFetcher
	searchResultLimit int
}

// ServerOption configures an ExerciseServer.
type ServerOption func(*ExerciseServer)

// WithSearchResultLimit overrides the default cap on search results.
func WithSearchResultLimit(limit int) ServerOption {
	return func(s *ExerciseServer) {
		if limit > 0 {
			s.searchResultLimit = limit
		}
	}
}

// NewExerciseServer creates an MCP server serving the exercise catalog tools,
// backed by the given page fetcher.
func NewExerciseServer(name, version string, fetcher exercisedb.PageFetcher, logger *slog.Logger, opts ...ServerOption) (*ExerciseServer, error) {
	s := &ExerciseServer{
		logger:            logger,
		cache:             catalog.NewCache(logger),
		engine:            search.NewEngine(search.DefaultSynonyms()),
		fetcher:           fetcher,
		searchResultLimit: DefaultSearchResultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    name,
			Version: version,
		},
		nil,
	)

	s.registerTools(server)
	s.server = server

	return s, nil
}

// Run starts the MCP server with the given transport.
func (s *ExerciseServer) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

func (s *ExerciseServer) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_exercises",
		Description: "Search the exercise catalog with free-text queries. Supports gym shorthand ('db press', 'bb row', 'tri pushdown') via synonym expansion, plus optional muscle group and exercise type filters. Results are ranked by relevance.",
	}, s.handleSearchExercises)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_muscle_groups",
		Description: "List every distinct muscle group (primary and secondary) present in the exercise catalog.",
	}, s.handleListMuscleGroups)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_exercise_types",
		Description: "List every distinct exercise type (equipment/category label) present in the exercise catalog.",
	}, s.handleListExerciseTypes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cache_stats",
		Description: "Report the exercise cache state: number of cached exercises, readiness, last refresh time, and snapshot age.",
	}, s.handleGetCacheStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh_exercise_cache",
		Description: "Force a full re-fetch of the exercise catalog from the remote API, bypassing the cache TTL.",
	}, s.handleRefreshCache)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_exercise_cache",
		Description: "Drop the cached exercise catalog. The next catalog tool call re-fetches it from the remote API.",
	}, s.handleClearCache)
}

// ensureCatalog loads the catalog if it is missing or stale and returns the
// current snapshot.
func (s *ExerciseServer) ensureCatalog(ctx context.Context) ([]exercisedb.Exercise, error) {
	if err := s.cache.Initialize(ctx, s.fetcher, false); err != nil {
		return nil, err
	}
	return s.cache.Items()
}

// SearchExercisesInput defines the input for search_exercises.
type SearchExercisesInput struct {
	Query        string `json:"query,omitempty" jsonschema:"Free-text search query, e.g. 'bb bench press' or 'cable fly'. Empty returns the whole catalog."`
	MuscleGroup  string `json:"muscle_group,omitempty" jsonschema:"Exact muscle group filter matched against primary and secondary muscles, e.g. 'biceps'."`
	ExerciseType string `json:"exercise_type,omitempty" jsonschema:"Exact exercise type filter, e.g. 'barbell' or 'machine'."`
	Limit        int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return. Default: 20."`
}

func (s *ExerciseServer) handleSearchExercises(ctx context.Context, req *mcp.CallToolRequest, input SearchExercisesInput) (*mcp.CallToolResult, any, error) {
	items, err := s.ensureCatalog(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}

	results := s.engine.Search(items, input.Query, search.Filters{
		MuscleGroup:  input.MuscleGroup,
		ExerciseType: input.ExerciseType,
	})

	limit := input.Limit
	if limit <= 0 {
		limit = s.searchResultLimit
	}
	totalCount := len(results)
	if len(results) > limit {
		results = results[:limit]
	}

	s.logger.Info("Exercise search", "query", input.Query, "muscle_group", input.MuscleGroup, "exercise_type", input.ExerciseType, "total_found", totalCount, "returned", len(results))

	return jsonResult(map[string]any{
		"total_count":    totalCount,
		"returned_count": len(results),
		"exercises":      results,
	}), nil, nil
}

// ListInput is the empty input shared by the listing tools.
type ListInput struct{}

func (s *ExerciseServer) handleListMuscleGroups(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, any, error) {
	items, err := s.ensureCatalog(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}

	seen := make(map[string]bool)
	var groups []string
	add := func(m string) {
		key := strings.ToLower(m)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		groups = append(groups, key)
	}
	for _, item := range items {
		add(item.Muscle)
		for _, m := range item.SecondaryMuscles {
			add(m)
		}
	}
	sort.Strings(groups)

	return jsonResult(map[string]any{
		"count":         len(groups),
		"muscle_groups": groups,
	}), nil, nil
}

func (s *ExerciseServer) handleListExerciseTypes(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, any, error) {
	items, err := s.ensureCatalog(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}

	seen := make(map[string]bool)
	var types []string
	for _, item := range items {
		key := strings.ToLower(item.Type)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		types = append(types, key)
	}
	sort.Strings(types)

	return jsonResult(map[string]any{
		"count":          len(types),
		"exercise_types": types,
	}), nil, nil
}

func (s *ExerciseServer) handleGetCacheStats(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, any, error) {
	stats := s.cache.Stats()

	payload := map[string]any{
		"count":  stats.Count,
		"ready":  stats.Ready,
		"age_ms": stats.Age.Milliseconds(),
	}
	if stats.LastRefreshed != nil {
		payload["last_refreshed"] = stats.LastRefreshed.Format(time.RFC3339)
	}

	return jsonResult(payload), nil, nil
}

func (s *ExerciseServer) handleRefreshCache(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, any, error) {
	if err := s.cache.Initialize(ctx, s.fetcher, true); err != nil {
		return errorResult(err), nil, nil
	}

	stats := s.cache.Stats()
	s.logger.Info("Exercise cache force-refreshed", "count", stats.Count)

	return jsonResult(map[string]any{
		"refreshed": true,
		"count":     stats.Count,
	}), nil, nil
}

func (s *ExerciseServer) handleClearCache(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, any, error) {
	s.cache.Clear()
	s.logger.Info("Exercise cache cleared")

	return jsonResult(map[string]any{
		"cleared": true,
	}), nil, nil
}

func jsonResult(payload map[string]any) *mcp.CallToolResult {
	resultJSON, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(resultJSON)},
		},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}
