package exercisedb

import "context"

// Exercise is a single catalog entry as returned by the remote API.
type Exercise struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Muscle           string   `json:"muscle"`
	SecondaryMuscles []string `json:"secondaryMuscles,omitempty"`
}

// Page is one page of the paginated exercise listing. TotalPages is only
// populated reliably on the first page; a zero value means the API omitted it.
type Page struct {
	TotalPages int        `json:"totalPages"`
	Exercises  []Exercise `json:"exercises"`
}

// PageFetcher fetches one page of the remote exercise catalog.
type PageFetcher interface {
	FetchPage(ctx context.Context, page, pageSize int) (*Page, error)
}
