package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldUsername    = "username"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldAmountCents = "amount_cents"
	FieldLimitCents  = "limit_cents"
	FieldMonth       = "month"
	FieldFormat      = "format"
	FieldBackend     = "backend"
	FieldRecordCount = "record_count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentLedger  = "ledger"
	ComponentBudget  = "budget"
	ComponentAdmin   = "admin"
	ComponentStore   = "store"
	ComponentExport  = "export"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCtl     = "ctl"
)
