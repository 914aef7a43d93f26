package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"storefront-service/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is the number of products revealed per page
const DefaultPageSize = 12

// SortOrder selects how the visible list is ordered
type SortOrder string

const (
	SortDefault   SortOrder = "default"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNameAsc   SortOrder = "name_asc"
	SortNameDesc  SortOrder = "name_desc"
)

// ParseSortOrder accepts both "price-asc" and "price_asc" forms
func ParseSortOrder(s string) (SortOrder, error) {
	o := SortOrder(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch o {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return o, nil
	case "":
		return SortDefault, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// CategoryFilter is either "all" or one category id
type CategoryFilter struct {
	All bool
	ID  model.ID
}

// AllCategories matches every product
var AllCategories = CategoryFilter{All: true}

// ForCategory matches products of a single category
func ForCategory(id model.ID) CategoryFilter {
	return CategoryFilter{ID: id}
}

// ParseCategoryFilter parses "all" or a numeric category id
func ParseCategoryFilter(s string) (CategoryFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllCategories, nil
	}
	id, err := model.ParseID(s)
	if err != nil {
		return CategoryFilter{}, err
	}
	return ForCategory(id), nil
}

func (f CategoryFilter) Match(p model.Product) bool {
	return f.All || p.CategoryID == f.ID
}

func (f CategoryFilter) String() string {
	if f.All {
		return "all"
	}
	return f.ID.String()
}

// MarshalText renders the filter as "all" or the category id
func (f CategoryFilter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ViewState is the user's browsing position. The zero value is not valid;
// use NewViewState.
type ViewState struct {
	Filter CategoryFilter `json:"category"`
	Sort   SortOrder      `json:"sort"`
	Page   int            `json:"page"`
}

func NewViewState() ViewState {
	return ViewState{Filter: AllCategories, Sort: SortDefault, Page: 1}
}

// WithFilter changes the category and goes back to the first page
func (v ViewState) WithFilter(f CategoryFilter) ViewState {
	v.Filter = f
	v.Page = 1
	return v
}

// WithSort changes the order and goes back to the first page
func (v ViewState) WithSort(o SortOrder) ViewState {
	v.Sort = o
	v.Page = 1
	return v
}

// NextPage reveals one more page
func (v ViewState) NextPage() ViewState {
	v.Page++
	return v
}

// Arrange filters and sorts products. The result is a new slice; the input
// is left in catalog order.
func Arrange(products []model.Product, filter CategoryFilter, order SortOrder) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if filter.Match(p) {
			out = append(out, p)
		}
	}

	switch order {
	case SortPriceAsc, SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].WholesalePrice < out[j].WholesalePrice
		})
	case SortNameAsc, SortNameDesc:
		// collators keep scratch buffers, so one per call
		c := collate.New(language.Arabic)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
	if order == SortPriceDesc || order == SortNameDesc {
		slices.Reverse(out)
	}
	return out
}

// Page is the visible prefix of an arranged list
type Page struct {
	Items    []model.Product `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasMore  bool            `json:"has_more"`
}

// Empty reports a loaded catalog whose filter matched nothing
func (p Page) Empty() bool { return p.Total == 0 }

// Paginate exposes the first page*pageSize products of arranged
func Paginate(arranged []model.Product, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	end := page * pageSize
	if end > len(arranged) {
		end = len(arranged)
	}
	return Page{
		Items:    slices.Clone(arranged[:end]),
		Total:    len(arranged),
		Page:     page,
		PageSize: pageSize,
		HasMore:  end < len(arranged),
	}
}

// Project derives the visible list: filter, sort, paginate
func Project(products []model.Product, view ViewState, pageSize int) Page {
	return Paginate(Arrange(products, view.Filter, view.Sort), view.Page, pageSize)
}
