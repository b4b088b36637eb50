// Package sequence allocates human-readable sequential identifiers
// (TKT-000123, SRV-000045) for requests. Uniqueness under concurrent
// creation is enforced by the storage layer's unique constraint on the
// human id; callers retry allocation on conflict.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/guardline/request-service/internal/domain"
	apperrors "github.com/guardline/request-service/pkg/util"
)

const suffixDigits = 6

// LatestFinder exposes the most recently created human id for a kind.
// An empty string means no record exists yet.
type LatestFinder interface {
	LatestHumanID(ctx context.Context, kind domain.RequestKind) (string, error)
}

// Allocator computes the next human id for a request variant.
type Allocator struct {
	store LatestFinder
}

// NewAllocator constructs the allocator.
func NewAllocator(store LatestFinder) *Allocator {
	return &Allocator{store: store}
}

// Next derives the next identifier by incrementing the numeric suffix of the
// most recent record. Fails closed when the store is unreachable; it never
// guesses an identifier.
func (a *Allocator) Next(ctx context.Context, variant domain.Variant) (string, error) {
	last, err := a.store.LatestHumanID(ctx, variant.Kind)
	if err != nil {
		return "", apperrors.NewUnavailable("identifier allocation failed", err)
	}

	next := parseSuffix(last) + 1
	return fmt.Sprintf("%s%0*d", variant.Prefix, suffixDigits, next), nil
}

// parseSuffix extracts the trailing numeric run of a human id. Returns 0 for
// an empty or unparseable id so the sequence restarts at 1.
func parseSuffix(humanID string) int {
	if humanID == "" {
		return 0
	}
	idx := strings.LastIndex(humanID, "-")
	digits := humanID
	if idx >= 0 {
		digits = humanID[idx+1:]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
