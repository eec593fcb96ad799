package service

import "sync/atomic"

// RequestCounter counts greeting requests since process start.  The zero
// value is ready to use and safe for concurrent use.
type RequestCounter struct {
	n atomic.Int64
}

// Increment adds one and returns the new value.
func (c *RequestCounter) Increment() int64 {
	return c.n.Add(1)
}

// Value returns the current count without changing it.
func (c *RequestCounter) Value() int64 {
	return c.n.Load()
}
