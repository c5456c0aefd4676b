package antivirus

import "context"

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool
	ThreatName  string
	ScannerName string
	Error       error
}

// Rejected reports whether the upload must be refused. Scanner errors count
// as rejections (fail closed).
func (r ScanResult) Rejected() bool {
	return r.Infected || r.Error != nil
}

// Scanner is the interface for pluggable antivirus implementations
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) ScanResult
	Name() string
}

// NoOpScanner always reports clean. Used when CLAMAV_ADDRESS is unset.
type NoOpScanner struct{}

var _ Scanner = NoOpScanner{}

func (NoOpScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	return ScanResult{ScannerName: "noop"}
}

func (NoOpScanner) Name() string {
	return "noop"
}

// New returns a ClamAV scanner for address, or a no-op scanner when empty
func New(address string) Scanner {
	if address == "" {
		return NoOpScanner{}
	}
	return NewClamAVScanner(address, 0)
}
