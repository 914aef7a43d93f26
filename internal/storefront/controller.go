package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/model"
	"storefront-service/internal/order"
	"storefront-service/prometheus"

	"go.uber.org/zap"
)

// ErrProductNotFound is returned by lookups of ids absent from the catalog
var ErrProductNotFound = errors.New("product not found")

// Options tune the controller
type Options struct {
	PageSize        int
	SearchDebounce  time.Duration
	CartSlot        string
	CheckoutBaseURL string
	Recipient       string
	Formatter       *order.Formatter
}

func (o *Options) defaults() {
	if o.PageSize < 1 {
		o.PageSize = catalog.DefaultPageSize
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = 300 * time.Millisecond
	}
	if o.CartSlot == "" {
		o.CartSlot = "cart"
	}
	if o.CheckoutBaseURL == "" {
		o.CheckoutBaseURL = "https://wa.me"
	}
	if o.Formatter == nil {
		o.Formatter = order.NewFormatter()
	}
}

// CartLine is a cart item with its subtotal
type CartLine struct {
	model.CartItem
	Subtotal float64 `json:"subtotal"`
}

// CartSummary is what a cart view shows
type CartSummary struct {
	Items []CartLine `json:"items"`
	Count int        `json:"count"`
	Total float64    `json:"total"`
}

// CatalogStatus reports the catalog lifecycle
type CatalogStatus struct {
	State      string `json:"state"`
	Error      string `json:"error,omitempty"`
	Products   int    `json:"products"`
	Categories int    `json:"categories"`
}

// Handoff is a ready-to-open order link
type Handoff struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Controller owns the catalog, the view state, the search results and the
// cart. Every operation runs under one lock, so callers see the same
// serialised behaviour as a single event loop. Subscribers are notified after
// the lock is released.
type Controller struct {
	log    *zap.Logger
	opts   Options
	source catalog.Source

	mu       sync.Mutex
	catalog  *catalog.Store
	view     catalog.ViewState
	arranged []model.Product
	search   catalog.SearchResult
	ledger   *cart.Ledger

	debounce *debouncer

	subsMu sync.Mutex
	subs   map[int]Subscriber
	nextID int
}

func New(source catalog.Source, store cart.Store, log *zap.Logger, opts Options) *Controller {
	opts.defaults()
	catalogStore := catalog.NewStore(log)
	return &Controller{
		log:      log,
		opts:     opts,
		source:   source,
		catalog:  catalogStore,
		view:     catalog.NewViewState(),
		search:   catalog.SearchResult{Status: catalog.SearchCleared, Products: []model.Product{}},
		ledger:   cart.NewLedger(store, opts.CartSlot, catalogStore, log),
		debounce: newDebouncer(opts.SearchDebounce),
		subs:     make(map[int]Subscriber),
	}
}

// Subscribe registers fn for every future event and returns a function that removes it
func (c *Controller) Subscribe(fn Subscriber) func() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) emit(events ...Event) {
	c.subsMu.Lock()
	subs := make([]Subscriber, 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// Init restores the saved cart and performs the initial catalog load
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	c.ledger.Restore(ctx)
	summary := c.cartSummaryLocked()
	c.mu.Unlock()

	c.emit(Event{Kind: EventCartChanged, Cart: &summary})
	return c.Reload(ctx)
}

// Reload fetches the catalog again. It is the manual retry after a failed
// load; browsing restarts from the default view.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	track := prometheus.TrackCatalogLoad()
	err := c.catalog.Load(ctx, c.source)
	track(err, len(c.catalog.Products()), len(c.catalog.Categories()))

	c.view = catalog.NewViewState()
	c.search = catalog.SearchResult{Status: catalog.SearchCleared, Products: []model.Product{}}
	if err != nil {
		c.arranged = nil
		c.mu.Unlock()
		c.emit(Event{Kind: EventCatalogLoadFailed, Err: err})
		return err
	}
	c.arranged = catalog.Arrange(c.catalog.Products(), c.view.Filter, c.view.Sort)
	page := c.pageLocked()
	c.mu.Unlock()

	c.emit(Event{Kind: EventCatalogLoaded, Page: &page})
	return nil
}

// Status reports the catalog state
func (c *Controller) Status() CatalogStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := CatalogStatus{
		State:      c.catalog.State().String(),
		Products:   len(c.catalog.Products()),
		Categories: len(c.catalog.Categories()),
	}
	if err := c.catalog.Err(); err != nil {
		s.Error = err.Error()
	}
	return s
}

// Categories lists categories with their product counts
func (c *Controller) Categories() ([]catalog.CategoryCount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.catalog.Ready(); err != nil {
		return nil, err
	}
	return c.catalog.CategoryCounts(), nil
}

// Product returns one catalog product
func (c *Controller) Product(id model.ID) (model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.catalog.Ready(); err != nil {
		return model.Product{}, err
	}
	p, ok := c.catalog.Product(id)
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return p, nil
}

// View returns the current browsing state
func (c *Controller) View() catalog.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Page returns the currently visible products
func (c *Controller) Page() (catalog.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.catalog.Ready(); err != nil {
		return catalog.Page{}, err
	}
	return c.pageLocked(), nil
}

func (c *Controller) pageLocked() catalog.Page {
	return catalog.Paginate(c.arranged, c.view.Page, c.opts.PageSize)
}

// SetCategory filters by category and returns to the first page
func (c *Controller) SetCategory(f catalog.CategoryFilter) (catalog.Page, error) {
	return c.changeView("category", func(v catalog.ViewState) catalog.ViewState { return v.WithFilter(f) }, true)
}

// SetSort reorders and returns to the first page
func (c *Controller) SetSort(o catalog.SortOrder) (catalog.Page, error) {
	return c.changeView("sort", func(v catalog.ViewState) catalog.ViewState { return v.WithSort(o) }, true)
}

// LoadMore reveals the next page without filtering or sorting again
func (c *Controller) LoadMore() (catalog.Page, error) {
	return c.changeView("load_more", catalog.ViewState.NextPage, false)
}

func (c *Controller) changeView(action string, next func(catalog.ViewState) catalog.ViewState, rearrange bool) (catalog.Page, error) {
	c.mu.Lock()
	if err := c.catalog.Ready(); err != nil {
		c.mu.Unlock()
		return catalog.Page{}, err
	}
	c.view = next(c.view)
	if rearrange {
		c.arranged = catalog.Arrange(c.catalog.Products(), c.view.Filter, c.view.Sort)
	}
	page := c.pageLocked()
	c.mu.Unlock()

	prometheus.RecordViewChange(action)
	c.emit(Event{Kind: EventViewChanged, Page: &page})
	return page, nil
}

// Search runs a query immediately and keeps the result as the current one
func (c *Controller) Search(query string) (catalog.SearchResult, error) {
	c.mu.Lock()
	if err := c.catalog.Ready(); err != nil {
		c.mu.Unlock()
		return catalog.SearchResult{}, err
	}
	res := catalog.Search(c.catalog.Products(), query)
	c.search = res
	c.mu.Unlock()

	prometheus.RecordSearch(string(res.Status))
	c.emit(Event{Kind: EventSearchUpdated, Search: &res})
	return res, nil
}

// SearchAsYouType clears at once for short queries and otherwise searches
// once typing has been idle for the debounce delay. A newer call replaces
// a pending one.
func (c *Controller) SearchAsYouType(query string) {
	if !catalog.Searchable(query) {
		c.debounce.cancel()
		res := catalog.Search(nil, query)
		c.mu.Lock()
		c.search = res
		c.mu.Unlock()
		c.emit(Event{Kind: EventSearchUpdated, Search: &res})
		return
	}

	c.debounce.schedule(func(gen uint64) {
		c.searchIfCurrent(gen, query)
	})
}

// searchIfCurrent runs a debounced search unless it was cancelled or
// superseded. The generation is checked under c.mu so a cancel that wins the
// lock first always discards the search.
func (c *Controller) searchIfCurrent(gen uint64, query string) {
	c.mu.Lock()
	if !c.debounce.current(gen) {
		c.mu.Unlock()
		c.log.Debug("Debounced search discarded", zap.String("query", query))
		return
	}
	if err := c.catalog.Ready(); err != nil {
		c.mu.Unlock()
		c.log.Debug("Debounced search skipped", zap.String("query", query), zap.Error(err))
		return
	}
	res := catalog.Search(c.catalog.Products(), query)
	c.search = res
	c.mu.Unlock()

	prometheus.RecordSearch(string(res.Status))
	c.emit(Event{Kind: EventSearchUpdated, Search: &res})
}

// SearchResults returns the latest search result
func (c *Controller) SearchResults() catalog.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// SelectSearchResult shows the category of the chosen product and clears the search
func (c *Controller) SelectSearchResult(id model.ID) (catalog.Page, error) {
	c.mu.Lock()
	if err := c.catalog.Ready(); err != nil {
		c.mu.Unlock()
		return catalog.Page{}, err
	}
	p, ok := c.catalog.Product(id)
	c.mu.Unlock()
	if !ok {
		return catalog.Page{}, ErrProductNotFound
	}

	c.debounce.cancel()
	c.mu.Lock()
	c.search = catalog.SearchResult{Status: catalog.SearchCleared, Products: []model.Product{}}
	cleared := c.search
	c.mu.Unlock()
	c.emit(Event{Kind: EventSearchUpdated, Search: &cleared})

	return c.SetCategory(catalog.ForCategory(p.CategoryID))
}

// Cart returns the current cart
func (c *Controller) Cart() CartSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cartSummaryLocked()
}

func (c *Controller) cartSummaryLocked() CartSummary {
	items := c.ledger.Items()
	lines := make([]CartLine, len(items))
	for i, it := range items {
		lines[i] = CartLine{CartItem: it, Subtotal: it.Subtotal()}
	}
	return CartSummary{
		Items: lines,
		Count: c.ledger.TotalItemCount(),
		Total: c.ledger.TotalPrice(),
	}
}

// AddToCart adds one unit. Unknown products are ignored.
func (c *Controller) AddToCart(ctx context.Context, id model.ID) (CartSummary, bool, error) {
	return c.mutateCart("add", id, func() (bool, error) { return c.ledger.Add(ctx, id) })
}

// RemoveFromCart deletes the line for id
func (c *Controller) RemoveFromCart(ctx context.Context, id model.ID) (CartSummary, bool, error) {
	return c.mutateCart("remove", id, func() (bool, error) { return c.ledger.Remove(ctx, id) })
}

// AdjustQuantity changes the quantity of the line for id by delta
func (c *Controller) AdjustQuantity(ctx context.Context, id model.ID, delta int) (CartSummary, bool, error) {
	return c.mutateCart("adjust", id, func() (bool, error) { return c.ledger.Adjust(ctx, id, delta) })
}

func (c *Controller) mutateCart(op string, id model.ID, mutate func() (bool, error)) (CartSummary, bool, error) {
	c.mu.Lock()
	changed, err := mutate()
	summary := c.cartSummaryLocked()
	var added *model.CartItem
	if op == "add" && changed && err == nil {
		if it, ok := c.ledger.Item(id); ok {
			added = &it
		}
	}
	c.mu.Unlock()

	result := "noop"
	switch {
	case err != nil:
		result = "error"
	case changed:
		result = "changed"
	}
	prometheus.RecordCartOperation(op, result, summary.Count)

	if err != nil {
		return summary, false, err
	}
	if changed {
		events := []Event{{Kind: EventCartChanged, Cart: &summary}}
		if added != nil {
			events = append(events, Event{Kind: EventItemAdded, Item: added, Cart: &summary})
		}
		c.emit(events...)
	}
	return summary, changed, nil
}

// Checkout formats the order and builds the hand-off link. It reports false
// when the cart is empty.
func (c *Controller) Checkout() (Handoff, bool) {
	c.mu.Lock()
	items := c.ledger.Items()
	c.mu.Unlock()

	if len(items) == 0 {
		prometheus.RecordCheckout("empty")
		return Handoff{}, false
	}

	msg := c.opts.Formatter.Format(items)
	prometheus.RecordCheckout("sent")
	return Handoff{
		Message: msg,
		URL:     order.HandoffLink(c.opts.CheckoutBaseURL, c.opts.Recipient, msg),
	}, true
}

// Close drops any pending debounced search
func (c *Controller) Close() {
	c.debounce.cancel()
}
