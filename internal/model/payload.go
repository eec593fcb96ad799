package model

// HelloPayload is the body of GET /api/hello.  The Runtime field keeps the
// "deno" key the front end reads; its value is the Go runtime version.
type HelloPayload struct {
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
	Runtime      string `json:"deno"`
	RandomNumber int    `json:"randomNumber"`
	RequestCount int64  `json:"requestCount"`
}

// HealthPayload is the body of GET /api/health.  Uptime is an epoch
// timestamp in milliseconds, not a duration.
type HealthPayload struct {
	Status    string `json:"status"`
	Uptime    int64  `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// RandomPayload is the body of GET /api/random.
type RandomPayload struct {
	Number    int   `json:"number"`
	Timestamp int64 `json:"timestamp"`
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}
