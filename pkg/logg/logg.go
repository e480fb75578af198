package logg

const (
	Layer     = "layer"
	Operation = "operation"
	URL       = "url"
	Endpoint  = "endpoint"
	ContextID = "context_id"
	RequestID = "request_id"
	Device    = "device"
	Attempt   = "attempt"
)
