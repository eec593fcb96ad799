package handler

import (
	"math/rand/v2"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/model"
	"github.com/yahyabedirhan/tutorial-vite-deno/internal/service"
)

// GreetingMessage is the fixed message returned by GET /api/hello.
const GreetingMessage = "Hello from Deno Deploy API! 🦕"

// isoMillis renders UTC times the way JavaScript's toISOString does.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// APIHandler serves the JSON endpoints under /api.  Counter is owned by the
// server instance; no other handler touches it.
type APIHandler struct {
	Counter *service.RequestCounter
	Runtime string // runtime descriptor reported by Hello

	start time.Time
	now   func() time.Time
	intN  func(n int) int
}

// NewAPIHandler builds the API handler set around the given counter.
func NewAPIHandler(counter *service.RequestCounter) *APIHandler {
	if counter == nil {
		panic("nil counter passed to NewAPIHandler")
	}
	return &APIHandler{
		Counter: counter,
		Runtime: runtime.Version(),
		start:   time.Now(),
		now:     time.Now,
		intN:    rand.IntN,
	}
}

// Health reports liveness.  Uptime is the current epoch time in
// milliseconds, derived from the monotonic clock so it never goes backwards
// within a process.
func (h *APIHandler) Health(c echo.Context) error {
	now := h.now()
	return c.JSON(http.StatusOK, model.HealthPayload{
		Status:    "ok",
		Uptime:    h.start.UnixMilli() + now.Sub(h.start).Milliseconds(),
		Timestamp: now.UTC().Format(isoMillis),
	})
}

// Hello counts the call and returns the greeting payload.
func (h *APIHandler) Hello(c echo.Context) error {
	count := h.Counter.Increment()
	return c.JSON(http.StatusOK, model.HelloPayload{
		Message:      GreetingMessage,
		Timestamp:    h.now().UTC().Format(isoMillis),
		Runtime:      h.Runtime,
		RandomNumber: h.intN(1000),
		RequestCount: count,
	})
}

// Random returns a number in [0, 100) with an epoch-milliseconds timestamp.
func (h *APIHandler) Random(c echo.Context) error {
	return c.JSON(http.StatusOK, model.RandomPayload{
		Number:    h.intN(100),
		Timestamp: h.now().UnixMilli(),
	})
}
