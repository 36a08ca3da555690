package utils

// ContextKey is the type used for values stored in request contexts
type ContextKey string

// Context keys populated by handlers for downstream flows and logging
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Counter constants
const (
	// CounterNameClicks is the single demo counter incremented by the worker
	CounterNameClicks = "clicks"

	// CounterStreamName is the broadcast stream carrying counter updates
	CounterStreamName = "counter"
)

// Validation constants
const (
	// MaxBioLength is the maximum length of a testimonial author bio
	MaxBioLength = 160
)
