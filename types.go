package clamd

// Status classifies a daemon response to a scan.
type Status string

const (
	// StatusOK means the scan completed and no signature matched. The data is
	// not necessarily clean, only unmatched by the daemon's database.
	StatusOK Status = "OK"
	// StatusFound means one or more signatures matched.
	StatusFound Status = "FOUND"
	// StatusErrorTooBig means the daemon rejected the stream for exceeding
	// its configured size limit.
	StatusErrorTooBig Status = "ERROR_TOO_BIG"
	// StatusUnknown means the response did not match any recognized grammar.
	// Not an error: unrecognized daemon output is a terminal classification
	// the caller decides how to handle.
	StatusUnknown Status = "UNKNOWN"
)

// ScanResult is the processed form of a daemon scan response. It is derived
// entirely from the response text and never mutated after construction.
type ScanResult struct {
	// Response is the decoded response text, without the trailing NUL.
	Response string `json:"response"`
	// Status is the classified outcome.
	Status Status `json:"status"`
	// Found is the name of the matched signature. Empty unless Status is
	// StatusFound.
	Found string `json:"found,omitempty"`
}

// IsInfected returns true if the scan matched a signature.
func (r *ScanResult) IsInfected() bool {
	return r.Status == StatusFound
}

// IsClean returns true if the scan completed with no match.
func (r *ScanResult) IsClean() bool {
	return r.Status == StatusOK
}
