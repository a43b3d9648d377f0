package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/iwslabs/featreq/internal/convert"
	"github.com/iwslabs/featreq/internal/model"
)

// listFields restricts the embedded request columns returned by the list
// endpoints to what the list views render.
var listFields = []string{"id", "title", "prod_area"}

// RequestList caches the open/closed request lists for the selected client.
// The two lists are independently lazy: nil means not fetched, an empty
// non-nil list means fetched and empty. Switching the selection to a
// different client nulls the other list and refetches the requested one;
// there is no stale reuse across switches.
type RequestList struct {
	tr    RequestListTransport
	log   *zap.Logger
	cache *model.RequestList

	// noPriorityFirst flips the presence direction of the open sort:
	// by default entries carrying a priority rank first.
	noPriorityFirst bool
}

// RequestListOption configures the list store.
type RequestListOption func(*RequestList)

// WithNoPriorityFirst ranks entries without a priority ahead of prioritized
// ones in the open-list sort.
func WithNoPriorityFirst() RequestListOption {
	return func(s *RequestList) { s.noPriorityFirst = true }
}

// NewRequestList constructs the list store.
func NewRequestList(tr RequestListTransport, log *zap.Logger, opts ...RequestListOption) *RequestList {
	if log == nil {
		log = zap.NewNop()
	}
	s := &RequestList{tr: tr, log: log, cache: &model.RequestList{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the shared list record consumers bind to.
func (s *RequestList) Cache() *model.RequestList { return s.cache }

// GetOpen returns the open list for clientID. An empty id clears both lists
// and returns nil without a network call; the current id with a fetched
// list is a cache hit; anything else fetches.
func (s *RequestList) GetOpen(ctx context.Context, clientID string) ([]model.OpenRequest, error) {
	if clientID == "" {
		s.clear()
		return nil, nil
	}
	if clientID == s.cache.ID && s.cache.OpenList != nil {
		return s.cache.OpenList, nil
	}
	return s.fetchOpen(ctx, clientID)
}

// GetClosed mirrors GetOpen for the closed list.
func (s *RequestList) GetClosed(ctx context.Context, clientID string) ([]model.ClosedRequest, error) {
	if clientID == "" {
		s.clear()
		return nil, nil
	}
	if clientID == s.cache.ID && s.cache.ClosedList != nil {
		return s.cache.ClosedList, nil
	}
	return s.fetchClosed(ctx, clientID)
}

// RefOpen refetches the open list for the current selection, bypassing the
// cache-hit check. With no selection it is a no-op.
func (s *RequestList) RefOpen(ctx context.Context) ([]model.OpenRequest, error) {
	if s.cache.ID == "" {
		return nil, nil
	}
	return s.fetchOpen(ctx, s.cache.ID)
}

// RefClosed refetches the closed list for the current selection.
func (s *RequestList) RefClosed(ctx context.Context) ([]model.ClosedRequest, error) {
	if s.cache.ID == "" {
		return nil, nil
	}
	return s.fetchClosed(ctx, s.cache.ID)
}

// PatchReq rewrites the denormalized title/prod_area of every open-list
// entry matching the request id, swapping in a fresh entry value so
// consumers comparing by reference observe the change. No refetch.
func (s *RequestList) PatchReq(id, title, prodArea string) {
	for i := range s.cache.OpenList {
		if s.cache.OpenList[i].Req.ID != id {
			continue
		}
		entry := s.cache.OpenList[i]
		entry.Req = model.RequestRef{ID: id, Title: title, ProdArea: prodArea}
		s.cache.OpenList[i] = entry
	}
}

func (s *RequestList) clear() {
	s.cache.ID = ""
	s.cache.OpenList = nil
	s.cache.ClosedList = nil
}

// fetchOpen loads the open list for clientID, routing the aggregate
// sentinel to the cross-client endpoint. The cache is only touched after a
// successful response.
func (s *RequestList) fetchOpen(ctx context.Context, clientID string) ([]model.OpenRequest, error) {
	var list []model.OpenRequest
	if clientID == model.AllClients {
		groups, err := s.tr.AllOpen(ctx, listFields)
		if err != nil {
			return nil, err
		}
		list = convert.FlattenOpen(groups)
	} else {
		recs, err := s.tr.OpenByClient(ctx, clientID, listFields)
		if err != nil {
			return nil, err
		}
		list = convert.OpenListFromWire(recs)
	}
	s.sortOpen(list)
	if clientID != s.cache.ID {
		s.cache.ClosedList = nil
		s.cache.ID = clientID
	}
	s.cache.OpenList = list
	s.log.Debug("open list cached", zap.String("client", clientID), zap.Int("entries", len(list)))
	return list, nil
}

func (s *RequestList) fetchClosed(ctx context.Context, clientID string) ([]model.ClosedRequest, error) {
	var list []model.ClosedRequest
	if clientID == model.AllClients {
		groups, err := s.tr.AllClosed(ctx, listFields)
		if err != nil {
			return nil, err
		}
		list = convert.FlattenClosed(groups)
	} else {
		recs, err := s.tr.ClosedByClient(ctx, clientID, listFields)
		if err != nil {
			return nil, err
		}
		list = convert.ClosedListFromWire(recs)
	}
	sortClosed(list)
	if clientID != s.cache.ID {
		s.cache.OpenList = nil
		s.cache.ID = clientID
	}
	s.cache.ClosedList = list
	s.log.Debug("closed list cached", zap.String("client", clientID), zap.Int("entries", len(list)))
	return list, nil
}

// sortOpen applies the open-list total order: priority ascending, then
// target date ascending, then opened-at ascending. At the priority and
// target-date levels an entry carrying a value ranks ahead of one without;
// the no-priority-first policy flips that direction for priority only.
func (s *RequestList) sortOpen(list []model.OpenRequest) {
	slices.SortStableFunc(list, func(a, b model.OpenRequest) int {
		if c := s.cmpPriority(a.Priority, b.Priority); c != 0 {
			return c
		}
		if c := cmpDate(a.DateTgt, b.DateTgt); c != 0 {
			return c
		}
		return a.OpenedAt.Compare(b.OpenedAt)
	})
}

func (s *RequestList) cmpPriority(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		if s.noPriorityFirst {
			return -1
		}
		return 1
	case b == nil:
		if s.noPriorityFirst {
			return 1
		}
		return -1
	}
	return cmp.Compare(*a, *b)
}

// cmpDate orders target dates ascending with dated entries first.
func cmpDate(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

// sortClosed orders by closed-at descending, most recent first.
func sortClosed(list []model.ClosedRequest) {
	slices.SortStableFunc(list, func(a, b model.ClosedRequest) int {
		return b.ClosedAt.Compare(a.ClosedAt)
	})
}
