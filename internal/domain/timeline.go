package domain

import "time"

// PriceLine is one descriptive priced line item on a service-request
// timeline entry. Not a billing artifact.
type PriceLine struct {
	SequenceNo  int     `json:"sequence_no"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// TimelineEntry is one append-only note on a request's timeline. Entries are
// never edited or removed after append; insertion order is the only order.
// The struct carries json tags because the timeline is persisted as a JSONB
// document on the request row.
type TimelineEntry struct {
	ID          string      `json:"id"`
	Note        string      `json:"note"`
	Attachments []string    `json:"attachments"`
	AddedBy     string      `json:"added_by"`
	AddedAt     time.Time   `json:"added_at"`
	SeenBy      []string    `json:"seen_by"`
	PriceList   []PriceLine `json:"price_list,omitempty"`
	TotalPrice  float64     `json:"total_price,omitempty"`
}

// SeenByUser reports whether userID already acknowledged the entry.
func (e *TimelineEntry) SeenByUser(userID string) bool {
	for _, id := range e.SeenBy {
		if id == userID {
			return true
		}
	}
	return false
}

// MarkSeenBy adds userID to the seen set. Idempotent: returns false without
// mutating when the user is already present.
func (e *TimelineEntry) MarkSeenBy(userID string) bool {
	if e.SeenByUser(userID) {
		return false
	}
	e.SeenBy = append(e.SeenBy, userID)
	return true
}
