// Package deps accumulates the named schemas a compiled declaration refers to.
package deps

// Collector records names in first-seen order, ignoring repeats. It is
// scoped to one declaration's compilation and is not safe for concurrent use.
type Collector struct {
	names []string
	seen  map[string]struct{}
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]struct{})}
}

// Add records name. It reports whether the name was new.
func (c *Collector) Add(name string) bool {
	if name == "" {
		return false
	}
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, ok := c.seen[name]; ok {
		return false
	}
	c.seen[name] = struct{}{}
	c.names = append(c.names, name)
	return true
}

// Has reports whether name has been recorded.
func (c *Collector) Has(name string) bool {
	_, ok := c.seen[name]
	return ok
}

// Len returns the number of distinct names.
func (c *Collector) Len() int { return len(c.names) }

// Names returns a copy of the recorded names in insertion order.
func (c *Collector) Names() []string {
	if len(c.names) == 0 {
		return nil
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
