package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tieubaoca/docchat-be/types"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// SearchService answers questions with the Google Custom Search API. Results
// are optional context for retrieval; callers are expected to degrade
// gracefully when a search fails.
type SearchService struct {
	service        *customsearch.Service
	searchEngineID string
}

func NewSearchService(apiKey, searchEngineID string) (*SearchService, error) {
	svc, err := customsearch.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}
	return &SearchService{
		service:        svc,
		searchEngineID: searchEngineID,
	}, nil
}

// Search runs the query and composes a short answer from the top snippets.
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*types.WebSearchAnswer, error) {
	if limit <= 0 {
		limit = 5
	}
	resp, err := s.service.Cse.List().
		Cx(s.searchEngineID).
		Q(query).
		Num(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	results := make([]types.WebSearchResult, 0, len(resp.Items))
	var snippets []string
	for _, item := range resp.Items {
		results = append(results, types.WebSearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
		if item.Snippet != "" {
			snippets = append(snippets, item.Snippet)
		}
	}

	return &types.WebSearchAnswer{
		Answer:  strings.Join(snippets, "\n"),
		Results: results,
	}, nil
}
