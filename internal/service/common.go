package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/repository"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// Clock returns the current time. Services take one so tests can pin time.
type Clock func() time.Time

func (c Clock) orSystem() Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func newID() string {
	return uuid.NewString()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// sanitizeText replaces control characters, collapses whitespace and truncates to max runes.
func sanitizeText(value string, max int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, value)
	cleaned = strings.TrimSpace(spaceRun.ReplaceAllString(cleaned, " "))
	if runes := []rune(cleaned); len(runes) > max {
		cleaned = string(runes[:max])
	}
	return cleaned
}

func titleCase(value string) string {
	parts := strings.Fields(value)
	for i, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

// requireStaff rejects callers that may not review records.
func requireStaff(caller *auth.Principal) error {
	if caller == nil {
		return apperrors.NewUnauthorized("")
	}
	if !caller.IsStaff() {
		return apperrors.NewForbidden("")
	}
	return nil
}

func requireAdmin(caller *auth.Principal) error {
	if caller == nil {
		return apperrors.NewUnauthorized("")
	}
	if !caller.IsAdmin() {
		return apperrors.NewForbidden("")
	}
	return nil
}

// repoError maps repository sentinels onto the HTTP taxonomy.
func repoError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource)
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict(resource + " already exists")
	}
	return apperrors.NewStorageFailure(err)
}

// discardCreated removes a record whose creation notice could not be stored,
// so a failed create leaves nothing behind. cause is returned unchanged when
// the removal succeeds.
func discardCreated[T domain.Record](ctx context.Context, repo repository.Repository[T], id string, cause error) error {
	if err := repo.Delete(ctx, id); err != nil {
		return apperrors.NewStorageFailure(errors.Join(cause, err))
	}
	return cause
}
