package constants

// RunStatus is the outcome label of one extraction, used in logs and metrics.
type RunStatus string

const (
	RunStatusOK           RunStatus = "OK"           // record extracted and stored
	RunStatusDeduplicated RunStatus = "DEDUPLICATED" // same content already stored
	RunStatusFailed       RunStatus = "FAILED"       // extraction or storage failed
	RunStatusUnsupported  RunStatus = "UNSUPPORTED"  // no extractor recognized the file
)
