package domain

// Variant is the per-kind behavior table: identifier prefix, the closed set
// of categories and statuses, and which status counts as the completed
// terminal for completedAt derivation. Lifecycle and timeline logic is shared
// across variants; only this table differs.
type Variant struct {
	Kind            RequestKind
	Prefix          string
	Noun            string
	Categories      []string
	Statuses        []RequestStatus
	CompletedStatus RequestStatus
}

var ticketVariant = Variant{
	Kind:   KindTicket,
	Prefix: "TKT-",
	Noun:   "ticket",
	Categories: []string{
		"CCTV",
		"Fire Alarm",
		"Electrical",
		"Intercom",
		"Access Control",
	},
	Statuses:        []RequestStatus{StatusNew, StatusInProgress, StatusClosed},
	CompletedStatus: StatusClosed,
}

var serviceRequestVariant = Variant{
	Kind:   KindServiceRequest,
	Prefix: "SRV-",
	Noun:   "service request",
	Categories: []string{
		"CCTV",
		"Fire Alarm",
		"Electrical",
		"Access Control",
		"Intruder Alarm",
	},
	Statuses:        []RequestStatus{StatusNew, StatusInProgress, StatusCompleted, StatusRejected},
	CompletedStatus: StatusCompleted,
}

// VariantFor resolves the descriptor for a kind.
func VariantFor(kind RequestKind) (Variant, bool) {
	switch kind {
	case KindTicket:
		return ticketVariant, true
	case KindServiceRequest:
		return serviceRequestVariant, true
	default:
		return Variant{}, false
	}
}

// AllowsStatus reports whether the status belongs to the variant's set.
// Transitions are non-strict forward: any status in the set is reachable
// from any other, so membership is the only structural check.
func (v Variant) AllowsStatus(status RequestStatus) bool {
	for _, candidate := range v.Statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// AllowsCategory reports whether the category belongs to the variant's set.
func (v Variant) AllowsCategory(category string) bool {
	for _, candidate := range v.Categories {
		if candidate == category {
			return true
		}
	}
	return false
}
