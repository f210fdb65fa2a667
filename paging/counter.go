package paging

// Counter numbers the pages requested for one search phrase. It starts at
// page 1 and advances by exactly one per accepted signal. A Counter is never
// reset; every phrase gets a new one.
//
// Counter is not safe for concurrent use. It belongs to the goroutine that
// sequences the search.
type Counter struct {
	page     int
	autoload bool
}

// NewCounter returns a counter with autoloading enabled and no page issued.
func NewCounter() *Counter {
	return &Counter{autoload: true}
}

// Start issues page 1. It returns false if any page was already issued.
func (c *Counter) Start() (int, bool) {
	if c.page != 0 {
		return 0, false
	}
	c.page = 1
	return c.page, true
}

// Next handles an edge-of-list signal. It returns the next page, or false
// when autoloading is disabled or Start has not been called.
func (c *Counter) Next() (int, bool) {
	if !c.autoload || c.page == 0 {
		return 0, false
	}
	c.page++
	return c.page, true
}

// Page returns the last issued page, 0 before Start.
func (c *Counter) Page() int {
	return c.page
}

// SetAutoload opens or closes the gate applied to Next.
func (c *Counter) SetAutoload(enabled bool) {
	c.autoload = enabled
}

// Autoload reports whether Next currently accepts signals.
func (c *Counter) Autoload() bool {
	return c.autoload
}
