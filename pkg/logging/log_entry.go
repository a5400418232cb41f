package logging

// LogEntry represents a structured log record with fields particularly
// relevant to MCMC runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Sampling-specific fields
	RunID     string  // Identifier of the sampling run
	Chain     int     // Chain index, -1 when not chain-scoped
	Iteration int     // Controller iteration, -1 when not iteration-scoped
	Accepted  float64 // Running acceptance rate at the time of logging

	// General structured data
	Fields map[string]interface{}
}
