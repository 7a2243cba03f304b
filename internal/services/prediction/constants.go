package prediction

// Request limits
const (
	MaxBatchSize       = 100
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Health statuses
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

const transactionIDPrefix = "txn_"
