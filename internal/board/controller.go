package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/scoutdeck/scoutdeck/internal/query"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
)

// Controller owns one owner's list state: filters, sort and pagination.
// Every mutation keeps the invariant that a real filter change lands the
// view back on page 1.
type Controller struct {
	mu     sync.Mutex
	state  State
	client statsapi.StatsClient
	cache  *query.Cache
}

// NewController starts from the default state: page 1, 50 per page,
// sorted by player name ascending.
func NewController(client statsapi.StatsClient, cache *query.Cache) *Controller {
	return &Controller{
		state:  defaultState(),
		client: client,
		cache:  cache,
	}
}

// State returns a snapshot of the current controls.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ApplyFilters replaces the filter set. An actual change resets the page
// to 1; re-applying the same filters is a no-op and keeps the page.
func (c *Controller) ApplyFilters(next Filters) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Filters.Equal(next) {
		return false
	}
	c.state.Filters = next
	c.state.Page = 1
	return true
}

// SetSearch applies a committed search text as a filter change.
func (c *Controller) SetSearch(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Filters.Search == text {
		return false
	}
	c.state.Filters.Search = text
	c.state.Page = 1
	return true
}

// ToggleSort reselects the sort column. The same field flips direction,
// a new field starts ascending on page 1.
func (c *Controller) ToggleSort(field string) (Sort, error) {
	if !KnownSortField(field) {
		return Sort{}, fmt.Errorf("%w: %q", ErrUnknownSortField, field)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Sort.Field == field {
		c.state.Sort.Desc = !c.state.Sort.Desc
	} else {
		c.state.Sort = Sort{Field: field}
		c.state.Page = 1
	}
	return c.state.Sort, nil
}

// SetPage moves to an explicit page.
func (c *Controller) SetPage(page int) error {
	if page < 1 {
		return fmt.Errorf("%w: got %d", ErrBadPage, page)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Page = page
	return nil
}

// SetPerPage sets the page size, clamped to 1..500, and resets to page 1.
func (c *Controller) SetPerPage(perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PerPage = perPage
	c.state.Page = 1
	return perPage
}

// Reset restores the default state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = defaultState()
}

// Load reads the player list for the current state through the cache.
// When the backend reports fewer pages than the one selected, the
// controller self-corrects to page 1 and reloads once instead of
// rendering an empty page.
func (c *Controller) Load(ctx context.Context, force bool) (query.Result[statsapi.PlayerList], error) {
	res, err := c.loadPage(ctx, force)
	if err != nil {
		return res, err
	}

	list := res.Value
	page := c.State().Page
	if list.Total > 0 && list.TotalPages < page {
		log.Debug("Selected page is out of range, clamping to first page",
			"page", page, "total_pages", list.TotalPages)
		c.mu.Lock()
		c.state.Page = 1
		c.mu.Unlock()
		return c.loadPage(ctx, force)
	}
	return res, nil
}

func (c *Controller) loadPage(ctx context.Context, force bool) (query.Result[statsapi.PlayerList], error) {
	params := c.State().params()
	key := query.PlayersKey(params)
	opts := query.Options{ForceRefresh: force}
	return query.Lookup(ctx, c.cache, key, opts, func(ctx context.Context) (statsapi.PlayerList, error) {
		return c.client.ListPlayers(ctx, params)
	})
}
