package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/threadswap/storefront/internal/api"
	"github.com/threadswap/storefront/internal/querycache"
)

// Coordinator performs listing writes and keeps the cache consistent with
// them. Nothing is applied to the cache optimistically: entries are only
// invalidated or removed after the backend confirms the write, and a
// failed write leaves the cache untouched.
type Coordinator struct {
	api   *API
	cache *querycache.Orchestrator
	log   *slog.Logger
}

func NewCoordinator(a *API, cache *querycache.Orchestrator, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{api: a, cache: cache, log: log}
}

func (c *Coordinator) Create(ctx context.Context, req CreateRequest) (Listing, error) {
	l, err := c.api.Create(ctx, req)
	if err != nil {
		return Listing{}, err
	}
	c.invalidateLists()
	c.log.Info("listing created", "listing_id", l.ID)
	return l, nil
}

// Update patches a listing. A status carried in the patch obeys the same
// rules as UpdateStatus.
func (c *Coordinator) Update(ctx context.Context, id string, req UpdateRequest) (Listing, error) {
	if req.Status != nil {
		if err := c.checkStatusChange(id, *req.Status, true); err != nil {
			return Listing{}, err
		}
	}
	l, err := c.api.Update(ctx, id, req)
	if err != nil {
		return Listing{}, err
	}
	c.invalidateListing(id)
	return l, nil
}

// UpdateStatus moves a listing to status to. When the listing's current
// status is cached, a disallowed transition is rejected without a request.
func (c *Coordinator) UpdateStatus(ctx context.Context, id string, to Status) (Listing, error) {
	if err := c.checkStatusChange(id, to, false); err != nil {
		return Listing{}, err
	}

	l, err := c.api.UpdateStatus(ctx, id, to)
	if err != nil {
		return Listing{}, err
	}
	c.invalidateListing(id)
	c.log.Info("listing status changed", "listing_id", id, "status", to)
	return l, nil
}

func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, id); err != nil {
		return err
	}
	c.cache.Remove(DetailKey(id))
	c.invalidateLists()
	c.log.Info("listing deleted", "listing_id", id)
	return nil
}

// checkStatusChange rejects REMOVED, unknown statuses and, when the current
// status is cached, transitions the graph does not allow. keepSame lets an
// edit resend the status the listing already has.
func (c *Coordinator) checkStatusChange(id string, to Status, keepSame bool) error {
	switch to {
	case StatusDraft, StatusActive, StatusSold, StatusArchived:
	case StatusRemoved:
		return &api.ValidationError{Field: "status", Msg: "listings are removed by deleting them"}
	default:
		return &api.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", to)}
	}

	if cur, ok := c.cachedStatus(id); ok && !(keepSame && cur == to) && !IsTransitionAllowed(cur, to) {
		return &api.ValidationError{
			Field: "status",
			Msg:   fmt.Sprintf("cannot change status from %s to %s", cur, to),
		}
	}
	return nil
}

func (c *Coordinator) cachedStatus(id string) (Status, bool) {
	res, ok := c.cache.Peek(DetailKey(id))
	if !ok || res.Status != querycache.StatusSuccess {
		return "", false
	}
	l, ok := res.Data.(Listing)
	if !ok {
		return "", false
	}
	return l.Status, true
}

func (c *Coordinator) invalidateListing(id string) {
	c.cache.Invalidate(DetailKey(id))
	c.invalidateLists()
}

func (c *Coordinator) invalidateLists() {
	c.cache.InvalidateKind(KindList)
	c.cache.InvalidateKind(KindUserListings)
}

// EventType names a listing change pushed by the backend.
type EventType string

const (
	EventCreated       EventType = "listing:created"
	EventUpdated       EventType = "listing:updated"
	EventStatusChanged EventType = "listing:status"
	EventDeleted       EventType = "listing:deleted"
)

var EventTypes = []EventType{EventCreated, EventUpdated, EventStatusChanged, EventDeleted}

// Event is a listing change made elsewhere, by another session or seller.
type Event struct {
	Type      EventType
	ListingID string
}

// DecodeEvent reads the listing id from an event payload. Payloads carry
// either {"id": ...} or {"listingId": ...}.
func DecodeEvent(t EventType, data json.RawMessage) (Event, error) {
	var body struct {
		ID        string `json:"id"`
		ListingID string `json:"listingId"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			return Event{}, fmt.Errorf("decode %s payload: %w", t, err)
		}
	}
	ev := Event{Type: t, ListingID: body.ListingID}
	if ev.ListingID == "" {
		ev.ListingID = body.ID
	}
	return ev, nil
}

// ApplyEvent invalidates what a remote change made stale, by the same rules
// as the local mutations.
func (c *Coordinator) ApplyEvent(ev Event) error {
	switch ev.Type {
	case EventCreated:
		c.invalidateLists()
	case EventUpdated, EventStatusChanged:
		if ev.ListingID == "" {
			return fmt.Errorf("%s event without listing id", ev.Type)
		}
		c.invalidateListing(ev.ListingID)
	case EventDeleted:
		if ev.ListingID == "" {
			return fmt.Errorf("%s event without listing id", ev.Type)
		}
		c.cache.Remove(DetailKey(ev.ListingID))
		c.invalidateLists()
	default:
		return fmt.Errorf("unknown listing event %q", ev.Type)
	}
	c.log.Debug("applied listing event", "type", ev.Type, "listing_id", ev.ListingID)
	return nil
}
