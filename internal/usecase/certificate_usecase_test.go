package usecase_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"go-intake-backend/internal/domain"
	"go-intake-backend/internal/usecase"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/security"
	"go-intake-backend/pkg/security/antivirus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type infectedScanner struct{}

func (infectedScanner) Scan(ctx context.Context, filename string, data []byte) antivirus.ScanResult {
	return antivirus.ScanResult{Infected: true, ThreatName: "Eicar-Test-Signature", ScannerName: "fake"}
}
func (infectedScanner) Name() string { return "fake" }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCertificateUpload(t *testing.T) {
	secLog := security.NewSecurityLogger(zap.NewNop(), "test", "test")
	owner := asIdentity(&domain.Identity{ID: "u1", IsActive: true})

	t.Run("Stores a valid image under the owner's prefix", func(t *testing.T) {
		store := &memoryStore{}
		uc := usecase.NewCertificateUsecase(store, antivirus.NoOpScanner{}, 5<<20, secLog, nil)

		upload, err := uc.Upload(owner, "u1", "certificate.png", pngBytes(t, 64, 64))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(upload.Reference, "mem://certificates/u1/"))
		assert.Len(t, store.objects, 1)
	})

	t.Run("Rejects disallowed types", func(t *testing.T) {
		store := &memoryStore{}
		uc := usecase.NewCertificateUsecase(store, nil, 5<<20, secLog, nil)

		_, err := uc.Upload(owner, "u1", "certificate.exe", []byte("MZ\x90\x00"))
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Empty(t, store.objects)
	})

	t.Run("Rejects oversized files", func(t *testing.T) {
		store := &memoryStore{}
		uc := usecase.NewCertificateUsecase(store, nil, 16, secLog, nil)

		_, err := uc.Upload(owner, "u1", "certificate.png", pngBytes(t, 8, 8))
		assert.Error(t, err)
		assert.Empty(t, store.objects)
	})

	t.Run("Rejects infected files", func(t *testing.T) {
		store := &memoryStore{}
		uc := usecase.NewCertificateUsecase(store, infectedScanner{}, 5<<20, secLog, nil)

		_, err := uc.Upload(owner, "u1", "certificate.png", pngBytes(t, 8, 8))
		assert.Error(t, err)
		assert.Empty(t, store.objects)
	})

	t.Run("Cannot upload into another identity's folder", func(t *testing.T) {
		uc := usecase.NewCertificateUsecase(&memoryStore{}, nil, 5<<20, secLog, nil)
		_, err := uc.Upload(owner, "u2", "certificate.png", pngBytes(t, 8, 8))
		assert.True(t, apperror.IsKind(err, apperror.KindPermission))
	})
}
