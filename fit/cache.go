package fit

// Cache memoizes the last result for one owner. A request equal to the
// previous one, field by field, is answered without touching the oracle.
// A Cache belongs to a single widget and must not be shared.
type Cache struct {
	engine *Engine
	key    Request
	result Result
	valid  bool

	Hits   int
	Misses int
}

func NewCache(e *Engine) *Cache { return &Cache{engine: e} }

// Fit returns the memoized result when req equals the previous request.
func (c *Cache) Fit(req Request) Result {
	if c.valid && c.key.Equal(req) {
		c.Hits++
		c.engine.log.Debug("复用适配结果", "hits", c.Hits)
		return c.result.clone()
	}
	c.Misses++
	c.result = c.engine.Fit(req)
	c.key = req
	c.key.Text = req.Text.Clone()
	c.valid = true
	return c.result.clone()
}

// Reset drops the memoized result.
func (c *Cache) Reset() {
	c.valid = false
	c.result = Result{}
}
