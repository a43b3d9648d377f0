package store

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iwslabs/featreq/internal/convert"
	"github.com/iwslabs/featreq/internal/event"
	"github.com/iwslabs/featreq/internal/model"
)

// ClientList is the registry of known clients: the name-sorted list, an
// O(1) id index, aggregate open/closed totals, and the current selection.
type ClientList struct {
	tr    ClientTransport
	bus   *event.Bus
	log   *zap.Logger
	coll  *collate.Collator
	cache *model.ClientList
}

// NewClientList constructs the registry store.
func NewClientList(tr ClientTransport, bus *event.Bus, log *zap.Logger) *ClientList {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClientList{
		tr:  tr,
		bus: bus,
		log: log,
		// Loose collation folds case, width and diacritics for the
		// name sort order.
		coll:  collate.New(language.Und, collate.Loose),
		cache: &model.ClientList{ByID: make(map[string]*model.Client)},
	}
}

// Cache returns the shared registry record consumers bind to.
func (s *ClientList) Cache() *model.ClientList { return s.cache }

// GetClients fetches the client list, sorts it by name, rebuilds the id
// index, and recomputes the aggregate totals. On failure the cache keeps
// its last-known-good contents.
func (s *ClientList) GetClients(ctx context.Context) ([]*model.Client, error) {
	recs, err := s.tr.Clients(ctx)
	if err != nil {
		return nil, err
	}
	list := convert.ClientsFromWire(recs)
	s.coll.Sort(byName(list))

	byID := make(map[string]*model.Client, len(list))
	var open, closed int
	for _, c := range list {
		byID[c.ID] = c
		open += c.OpenCount
		closed += c.ClosedCount
	}
	s.cache.List = list
	s.cache.ByID = byID
	s.cache.Open = open
	s.cache.Closed = closed
	s.log.Debug("client list rebuilt",
		zap.Int("clients", len(list)),
		zap.Int("open", open),
		zap.Int("closed", closed),
	)
	return list, nil
}

// ClientByID returns the cached client, or nil when absent.
func (s *ClientList) ClientByID(id string) *model.Client {
	return s.cache.ByID[id]
}

// ClientName resolves a client name. An empty id resolves against the
// current selection; an unknown id yields the empty string.
func (s *ClientList) ClientName(id string) string {
	if id == "" {
		id = s.cache.ID
	}
	if c := s.cache.ByID[id]; c != nil {
		return c.Name
	}
	return ""
}

// Select records the new selection and broadcasts ClientSelected. Selecting
// the already-current id is a no-op.
func (s *ClientList) Select(id string) {
	if id == s.cache.ID {
		return
	}
	s.cache.ID = id
	s.bus.Publish(event.ClientSelected, id)
}

// Clear resets the registry to an empty list, zero aggregates, a cleared
// index, and no selection.
func (s *ClientList) Clear() {
	s.cache.List = nil
	s.cache.ByID = make(map[string]*model.Client)
	s.cache.Open = 0
	s.cache.Closed = 0
	s.cache.ID = ""
}

// byName adapts the client list to the collator's sort interface.
type byName []*model.Client

func (l byName) Len() int           { return len(l) }
func (l byName) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }
func (l byName) Bytes(i int) []byte { return []byte(l[i].Name) }
