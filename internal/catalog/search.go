package catalog

import (
	"strings"
	"unicode/utf8"

	"storefront-service/internal/model"
)

const (
	// MinQueryLength is the shortest trimmed query that triggers a search
	MinQueryLength = 2
	// MaxSearchResults caps the number of matches returned
	MaxSearchResults = 10
)

// SearchStatus tells apart a cleared search from one that matched nothing
type SearchStatus string

const (
	SearchCleared   SearchStatus = "cleared"
	SearchNoMatches SearchStatus = "no_matches"
	SearchMatched   SearchStatus = "matched"
)

type SearchResult struct {
	Query    string          `json:"query"`
	Status   SearchStatus    `json:"status"`
	Products []model.Product `json:"products"`
}

// Searchable reports whether the trimmed query is long enough to run
func Searchable(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryLength
}

// Search matches the query case-insensitively against product and category
// names. Results keep catalog order.
func Search(products []model.Product, query string) SearchResult {
	q := strings.TrimSpace(query)
	if !Searchable(q) {
		return SearchResult{Query: q, Status: SearchCleared, Products: []model.Product{}}
	}

	needle := strings.ToLower(q)
	matches := make([]model.Product, 0, MaxSearchResults)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.CategoryName), needle) {
			matches = append(matches, p)
			if len(matches) == MaxSearchResults {
				break
			}
		}
	}

	status := SearchMatched
	if len(matches) == 0 {
		status = SearchNoMatches
	}
	return SearchResult{Query: q, Status: status, Products: matches}
}
