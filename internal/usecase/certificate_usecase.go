package usecase

import (
	"context"
	"fmt"
	"net/http"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/logger"
	"go-intake-backend/pkg/metrics"
	"go-intake-backend/pkg/security"
	"go-intake-backend/pkg/security/antivirus"
	"go-intake-backend/pkg/storage"

	"github.com/google/uuid"
)

const (
	certificateMaxDimension = 1600
	certificateJPEGQuality  = 85
)

type certificateUsecase struct {
	store    storage.Store
	scanner  antivirus.Scanner
	maxBytes int
	secLog   *security.SecurityLogger
	metrics  *metrics.Metrics
}

func NewCertificateUsecase(
	store storage.Store,
	scanner antivirus.Scanner,
	maxBytes int,
	secLog *security.SecurityLogger,
	m *metrics.Metrics,
) domain.CertificateUsecase {
	if scanner == nil {
		scanner = antivirus.NoOpScanner{}
	}
	return &certificateUsecase{
		store:    store,
		scanner:  scanner,
		maxBytes: maxBytes,
		secLog:   secLog,
		metrics:  m,
	}
}

// Upload validates, scans, optionally compresses and stores one certificate.
// The returned reference is what the caller saves as upload_certificate.
func (u *certificateUsecase) Upload(ctx context.Context, identityID, filename string, data []byte) (*domain.CertificateUpload, error) {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return nil, err
	}

	if u.maxBytes > 0 && len(data) > u.maxBytes {
		return nil, u.reject(ctx, identityID, filename, "too_large",
			fmt.Sprintf("Certificate must be at most %d MB", u.maxBytes/(1<<20)))
	}

	checked, err := security.ValidateFile(filename, data)
	if err != nil {
		return nil, u.reject(ctx, identityID, filename, err.Error(),
			"Certificate must be a JPG, PNG or PDF file")
	}

	scan := u.scanner.Scan(ctx, filename, data)
	if scan.Rejected() {
		reason := "infected"
		if scan.Error != nil {
			reason = "scan_failed"
			logger.Log.Error("certificate scan failed", "scanner", scan.ScannerName, "error", scan.Error)
		}
		return nil, u.reject(ctx, identityID, filename, reason, "Certificate could not be accepted")
	}

	ext := checked.Extension
	contentType := checked.DetectedMIME
	compressed := false
	if security.IsImageExtension(ext) {
		out, err := storage.CompressImage(data, certificateMaxDimension, certificateJPEGQuality)
		if err != nil {
			logger.Log.Warn("certificate compression failed, storing original", "error", err)
		} else if len(out) < len(data) {
			data = out
			ext = ".jpg"
			contentType = "image/jpeg"
			compressed = true
		}
	}

	key := domain.CertificatePrefix(identityID) + uuid.NewString() + ext
	ref, err := u.store.Put(ctx, storage.Object{Key: key, ContentType: contentType, Data: data})
	if err != nil {
		u.metrics.IncCertificateUpload("error")
		return nil, apperror.Internal(fmt.Errorf("store certificate: %w", err))
	}

	u.metrics.IncCertificateUpload("stored")
	return &domain.CertificateUpload{
		Reference:   ref,
		ContentType: contentType,
		Size:        len(data),
		Compressed:  compressed,
	}, nil
}

func (u *certificateUsecase) reject(ctx context.Context, identityID, filename, reason, message string) error {
	u.secLog.LogUploadRejected(ctx, identityID, filename, reason)
	u.metrics.IncCertificateUpload("rejected")
	return apperror.New(http.StatusUnprocessableEntity, message, nil)
}
