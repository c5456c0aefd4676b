package antivirus

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ClamAVScanner streams uploads to a clamd daemon with zINSTREAM
type ClamAVScanner struct {
	address string // "host:3310" or a unix socket path
	timeout time.Duration
}

var _ Scanner = (*ClamAVScanner)(nil)

func NewClamAVScanner(address string, timeout time.Duration) *ClamAVScanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ClamAVScanner{address: address, timeout: timeout}
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

func (c *ClamAVScanner) network() string {
	if strings.HasPrefix(c.address, "/") {
		return "unix"
	}
	return "tcp"
}

// Scan sends data in a single chunk and parses the clamd verdict
func (c *ClamAVScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	result := ScanResult{ScannerName: c.Name()}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, c.network(), c.address)
	if err != nil {
		result.Error = fmt.Errorf("failed to connect to clamd: %w", err)
		return result
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// command, <len><chunk>, zero-length terminator
	frame := make([]byte, 0, len(data)+len("zINSTREAM\x00")+8)
	frame = append(frame, "zINSTREAM\x00"...)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(data)))
	frame = append(frame, data...)
	frame = binary.BigEndian.AppendUint32(frame, 0)

	if _, err := conn.Write(frame); err != nil {
		result.Error = fmt.Errorf("failed to stream to clamd: %w", err)
		return result
	}

	reply, err := io.ReadAll(io.LimitReader(conn, 1024))
	if err != nil {
		result.Error = fmt.Errorf("failed to read clamd reply: %w", err)
		return result
	}

	result.Infected, result.ThreatName, result.Error = parseReply(string(reply))
	return result
}

// parseReply interprets "stream: OK", "stream: <name> FOUND" and "... ERROR"
func parseReply(reply string) (infected bool, threat string, err error) {
	reply = strings.TrimRight(reply, "\x00\r\n ")
	verdict := reply
	if i := strings.Index(reply, ":"); i >= 0 {
		verdict = strings.TrimSpace(reply[i+1:])
	}

	switch {
	case verdict == "OK":
		return false, "", nil
	case strings.HasSuffix(verdict, " FOUND"):
		return true, strings.TrimSuffix(verdict, " FOUND"), nil
	default:
		return false, "", fmt.Errorf("clamd: %s", reply)
	}
}
