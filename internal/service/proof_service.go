package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/repository"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

const proofOwnerSuffix = ".owner"

var (
	proofNamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]+\.[a-zA-Z0-9]+$`)
	proofExtensions  = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}
)

// ProofService stores payment proof images outside the public web root.
type ProofService struct {
	dir      string
	maxBytes int
	orders   repository.OrderRepository
	receipts repository.ReceiptRepository
	now      Clock
}

// ProofDependencies bundles collaborators for the proof service.
type ProofDependencies struct {
	Dir         string
	MaxBytes    int
	OrderRepo   repository.OrderRepository
	ReceiptRepo repository.ReceiptRepository
	Now         Clock
}

// NewProofService constructs the service.
func NewProofService(deps ProofDependencies) *ProofService {
	return &ProofService{
		dir:      deps.Dir,
		maxBytes: deps.MaxBytes,
		orders:   deps.OrderRepo,
		receipts: deps.ReceiptRepo,
		now:      deps.Now.orSystem(),
	}
}

// Save writes body under a generated name, records caller as its uploader
// and returns its locator.
func (s *ProofService) Save(_ context.Context, caller *auth.Principal, originalName string, body []byte) (string, error) {
	if caller == nil {
		return "", apperrors.NewUnauthorized("")
	}
	if len(body) == 0 {
		return "", apperrors.NewValidationError("Empty file")
	}
	if s.maxBytes > 0 && len(body) > s.maxBytes {
		return "", apperrors.NewDomainError("PAYLOAD_TOO_LARGE", "File too large", 413)
	}
	if originalName == "" {
		originalName = "proof.bin"
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !proofExtensions[ext] {
		return "", apperrors.NewValidationError("Unsupported file type")
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", apperrors.NewStorageFailure(err)
	}
	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), newID(), ext)
	full := filepath.Join(s.dir, name)
	if err := os.WriteFile(full+proofOwnerSuffix, []byte(caller.User.ID), 0o640); err != nil {
		return "", apperrors.NewStorageFailure(err)
	}
	if err := os.WriteFile(full, body, 0o640); err != nil {
		_ = os.Remove(full + proofOwnerSuffix)
		return "", apperrors.NewStorageFailure(err)
	}
	return domain.ProofURLPrefix + name, nil
}

// Open returns the on-disk path of fileName after checking caller may read it.
func (s *ProofService) Open(ctx context.Context, caller *auth.Principal, fileName string) (string, error) {
	if !proofNamePattern.MatchString(fileName) {
		return "", apperrors.NewValidationError("Invalid file name")
	}
	allowed, err := s.CanAccess(ctx, caller, fileName)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", apperrors.NewForbidden("")
	}
	full := filepath.Join(s.dir, fileName)
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperrors.NewDomainError("NOT_FOUND", "Not found", 404)
		}
		return "", apperrors.NewStorageFailure(err)
	}
	return full, nil
}

// CanAccess reports whether caller is staff or uploaded fileName. Files
// stored without an uploader record fall back to ownership of an order or
// receipt that references them.
func (s *ProofService) CanAccess(ctx context.Context, caller *auth.Principal, fileName string) (bool, error) {
	if caller == nil || !proofNamePattern.MatchString(fileName) {
		return false, nil
	}
	if caller.IsStaff() {
		return true, nil
	}
	uploader, err := os.ReadFile(filepath.Join(s.dir, fileName+proofOwnerSuffix))
	switch {
	case err == nil:
		return string(uploader) == caller.User.ID, nil
	case !errors.Is(err, os.ErrNotExist):
		return false, apperrors.NewStorageFailure(err)
	}

	suffix := "/" + fileName
	orders, err := s.orders.List(ctx)
	if err != nil {
		return false, apperrors.NewStorageFailure(err)
	}
	for _, o := range orders {
		if o.UserID == caller.User.ID && strings.HasSuffix(o.ProofURL, suffix) {
			return true, nil
		}
	}
	receipts, err := s.receipts.List(ctx)
	if err != nil {
		return false, apperrors.NewStorageFailure(err)
	}
	for _, r := range receipts {
		if r.UserID == caller.User.ID && strings.HasSuffix(r.ProofURL, suffix) {
			return true, nil
		}
	}
	return false, nil
}
