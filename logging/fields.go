package logging

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldOwnerID    = "owner_id"
	FieldDebtID     = "debt_id"
	FieldStrategy   = "strategy"
	FieldCacheKey   = "cache_key"
	FieldCount      = "count"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentCache     = "cache"
	ComponentScheduler = "scheduler"
	ComponentPayoff    = "payoff"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpList       = "list"
	OpPayment    = "payment"
	OpAutoUpdate = "auto_update"
	OpSimulate   = "simulate"
	OpSummarize  = "summarize"
	OpDueSoon    = "due_soon"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
