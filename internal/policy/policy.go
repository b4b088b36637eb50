// Package policy is the single authorization decision point for request
// lifecycle operations. Decisions are pure functions of the actor, the
// target request, and the action; a denial is terminal.
package policy

import (
	"github.com/guardline/request-service/internal/domain"
)

// Action identifies a lifecycle operation being authorized.
type Action string

const (
	ActionRead           Action = "read"
	ActionUpdateStatus   Action = "update-status"
	ActionDelete         Action = "delete"
	ActionAddComment     Action = "add-comment"
	ActionMarkSeen       Action = "mark-seen"
	ActionMarkViewedBulk Action = "mark-viewed-bulk"
)

// CanAccess decides whether actor may perform action on request. For
// ActionMarkViewedBulk the request argument is ignored (the action targets a
// set of tickets) and may be nil.
func CanAccess(actor domain.Principal, request *domain.Request, action Action) bool {
	if actor.IsAdmin() {
		return true
	}

	switch action {
	case ActionRead, ActionAddComment, ActionMarkSeen, ActionDelete:
		return request != nil && request.OwnerID == actor.ID
	case ActionUpdateStatus, ActionMarkViewedBulk:
		return false
	default:
		return false
	}
}
