// Package timeline implements the append-only log of notes attached to a
// request. Entries are ordered by insertion and are never edited or removed,
// which is what makes positional addressing in MarkSeen stable.
package timeline

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guardline/request-service/internal/domain"
	apperrors "github.com/guardline/request-service/pkg/util"
)

// AppendInput carries the caller-supplied fields of a new entry.
type AppendInput struct {
	Note        string
	Attachments []string
	PriceList   []domain.PriceLine
	TotalPrice  float64
}

// Append validates and appends a new entry to the request's timeline,
// snapshotting the actor's current display name. Returns the appended entry.
// The request is mutated in place; persistence is the caller's concern.
func Append(request *domain.Request, input AppendInput, actor domain.Principal, now time.Time) (*domain.TimelineEntry, error) {
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return nil, apperrors.NewValidationError("note is required", nil)
	}

	attachments := input.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	entry := domain.TimelineEntry{
		ID:          uuid.NewString(),
		Note:        note,
		Attachments: attachments,
		AddedBy:     actor.DisplayName,
		AddedAt:     now,
		SeenBy:      []string{},
		PriceList:   input.PriceList,
		TotalPrice:  input.TotalPrice,
	}
	request.Timeline = append(request.Timeline, entry)
	return &request.Timeline[len(request.Timeline)-1], nil
}

// MarkSeen records that userID has seen the entry at entryIndex. Returns
// false when the user is already in the seen set, so callers can skip the
// write entirely. Out-of-range indexes yield NotFound.
func MarkSeen(request *domain.Request, entryIndex int, userID string) (bool, error) {
	if entryIndex < 0 || entryIndex >= len(request.Timeline) {
		return false, apperrors.NewNotFound("timeline entry", map[string]any{"index": entryIndex})
	}
	return request.Timeline[entryIndex].MarkSeenBy(userID), nil
}
