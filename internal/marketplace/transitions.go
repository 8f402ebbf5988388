package marketplace

// Listing status graph:
//
//	DRAFT ──► ACTIVE ──► SOLD
//	  │          │
//	  └──────────┴──► ARCHIVED
//
// SOLD and ARCHIVED are terminal. REMOVED is only ever reached through
// Delete, never through a status change.

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusArchived},
	StatusActive: {StatusSold, StatusArchived},
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no status change can leave s.
func IsTerminal(s Status) bool {
	switch s {
	case StatusSold, StatusArchived, StatusRemoved:
		return true
	case StatusDraft, StatusActive:
		return false
	}
	return true
}

// Action is a quick action a seller can take on their own listing.
type Action string

const (
	ActionView     Action = "view"
	ActionEdit     Action = "edit"
	ActionMarkSold Action = "mark_sold"
	ActionPublish  Action = "publish"
	ActionArchive  Action = "archive"
	ActionDelete   Action = "delete"
)

// Target is the status an action moves a listing to, if it changes status.
func (a Action) Target() (Status, bool) {
	switch a {
	case ActionMarkSold:
		return StatusSold, true
	case ActionPublish:
		return StatusActive, true
	case ActionArchive:
		return StatusArchived, true
	case ActionView, ActionEdit, ActionDelete:
		return "", false
	}
	return "", false
}

// AvailableActions lists the actions offered for a listing in status s.
func AvailableActions(s Status) []Action {
	actions := []Action{ActionView, ActionEdit}
	for _, a := range []Action{ActionMarkSold, ActionPublish, ActionArchive} {
		if to, _ := a.Target(); IsTransitionAllowed(s, to) {
			actions = append(actions, a)
		}
	}
	return append(actions, ActionDelete)
}
