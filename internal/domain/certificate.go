package domain

import (
	"context"
	"strings"
)

// CertificateUpload is the stored reference to use as upload_certificate
type CertificateUpload struct {
	Reference   string `json:"reference"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Compressed  bool   `json:"compressed"`
}

// CertificatePrefix is the storage key prefix for one identity's certificates
func CertificatePrefix(identityID string) string {
	return "certificates/" + identityID + "/"
}

// CertificateOwnedBy reports whether ref points under the identity's own
// certificate prefix. Refs may be bare keys ("certificates/<id>/x.pdf") or
// carry a backend scheme and bucket ("s3://bucket/certificates/<id>/x.pdf").
func CertificateOwnedBy(ref, identityID string) bool {
	if identityID == "" || strings.Contains(ref, "..") {
		return false
	}
	prefix := CertificatePrefix(identityID)

	key := ref
	if _, rest, ok := strings.Cut(ref, "://"); ok {
		key = rest
		if !strings.HasPrefix(key, prefix) {
			_, key, _ = strings.Cut(key, "/")
		}
	}
	return strings.HasPrefix(key, prefix) && len(key) > len(prefix)
}

type CertificateUsecase interface {
	Upload(ctx context.Context, identityID, filename string, data []byte) (*CertificateUpload, error)
}
