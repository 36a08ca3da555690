package dto

// CounterDTO represents a counter for responses
type CounterDTO struct {
	Name      string `json:"name"`
	Value     int64  `json:"value"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CounterEventDTO is the payload broadcast to subscribers after an increment.
// Value reflects the counter store's value at the instant the increment committed.
type CounterEventDTO struct {
	Name      string `json:"name"`
	Value     int64  `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// CounterStatusResponse is returned by the home endpoint
type CounterStatusResponse struct {
	Counter     CounterDTO `json:"counter"`
	PendingJobs int64      `json:"pending_jobs"`
}

// EnqueueIncrementResponse acknowledges a fire-and-forget increment request
type EnqueueIncrementResponse struct {
	Message     string `json:"message"`
	PendingJobs int64  `json:"pending_jobs"`
}

// PingResponse is the health-check payload, shape fixed by the public API
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
