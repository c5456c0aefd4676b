package antivirus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReply(t *testing.T) {
	infected, threat, err := parseReply("stream: OK\x00")
	assert.NoError(t, err)
	assert.False(t, infected)
	assert.Empty(t, threat)

	infected, threat, err = parseReply("stream: Eicar-Test-Signature FOUND\x00")
	assert.NoError(t, err)
	assert.True(t, infected)
	assert.Equal(t, "Eicar-Test-Signature", threat)

	_, _, err = parseReply("INSTREAM size limit exceeded. ERROR")
	assert.Error(t, err)
}

func TestClamAVScanner_UnreachableFailsClosed(t *testing.T) {
	s := NewClamAVScanner("127.0.0.1:1", 0)
	res := s.Scan(context.Background(), "cert.pdf", []byte("%PDF-1.4"))
	assert.True(t, res.Rejected())
}

func TestNew_EmptyAddressIsNoOp(t *testing.T) {
	s := New("")
	assert.Equal(t, "noop", s.Name())
	assert.False(t, s.Scan(context.Background(), "a.png", nil).Rejected())
}
