package storefront

import (
	"storefront-service/internal/catalog"
	"storefront-service/internal/model"
)

// EventKind names a state change published by the controller
type EventKind string

const (
	EventCatalogLoaded     EventKind = "catalog_loaded"
	EventCatalogLoadFailed EventKind = "catalog_load_failed"
	EventViewChanged       EventKind = "view_changed"
	EventSearchUpdated     EventKind = "search_updated"
	EventCartChanged       EventKind = "cart_changed"
	// EventItemAdded is the add-to-cart confirmation
	EventItemAdded EventKind = "item_added"
)

// Event carries the state that changed. Only the fields relevant to Kind are set.
type Event struct {
	Kind   EventKind
	Err    error
	Page   *catalog.Page
	Search *catalog.SearchResult
	Cart   *CartSummary
	Item   *model.CartItem
}

// Subscriber receives events synchronously, outside the controller lock
type Subscriber func(Event)
