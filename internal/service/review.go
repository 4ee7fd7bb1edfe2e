package service

import (
	"fmt"
	"strings"

	"github.com/spec-kit/gatelaunch/internal/domain"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

func parseReviewStatus(raw string) (domain.ReviewStatus, error) {
	status, ok := domain.ParseReviewStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return "", apperrors.NewValidationError("Invalid status")
	}
	return status, nil
}

// checkTransition rejects leaving an approved or rejected state.
func checkTransition(current, next domain.ReviewStatus) error {
	if current.CanTransition(next) {
		return nil
	}
	return apperrors.NewValidationError(fmt.Sprintf("Cannot change status from %s to %s", current, next))
}

// parseProofURL validates a locator returned by the proof upload endpoint.
func parseProofURL(raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if !strings.HasPrefix(url, domain.ProofURLPrefix) {
		return "", apperrors.NewValidationError("Invalid proof reference")
	}
	return url, nil
}
