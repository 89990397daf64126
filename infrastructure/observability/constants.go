package observability

// Metric name prefixes
const (
	MetricPrefix = "incoin"
)

// Metric names
const (
	// Discord metrics
	CommandsTotal   = MetricPrefix + ".commands.total"
	CommandDuration = MetricPrefix + ".commands.duration"

	// Economy metrics
	EventsTotal         = MetricPrefix + ".events.total"
	BalanceChangesTotal = MetricPrefix + ".balance.changes_total"
	BalanceMovedTotal   = MetricPrefix + ".balance.moved_total"

	// Scheduled jobs
	SettlementRunsTotal = MetricPrefix + ".settlement.runs_total"
	SettlementDuration  = MetricPrefix + ".settlement.duration"

	// Record store metrics
	StoreOperationsTotal   = MetricPrefix + ".store.operations_total"
	StoreOperationDuration = MetricPrefix + ".store.operation_duration"
)

// Label keys
const (
	LabelCommand   = "command"
	LabelEventType = "event_type"
	LabelReason    = "reason"
	LabelJob       = "job"
	LabelOperation = "operation"
	LabelStatus    = "status"
)

// Status label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Scheduled job names
const (
	JobPayroll  = "payroll"
	JobInterest = "interest"
	JobStocks   = "stocks"
)
