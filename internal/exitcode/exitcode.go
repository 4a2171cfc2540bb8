package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	CopyError       = 4
	PricingError    = 5
	StorageError    = 6
	NotFound        = 7
)
