package store

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/iwslabs/featreq/internal/convert"
	"github.com/iwslabs/featreq/internal/errs"
	"github.com/iwslabs/featreq/internal/event"
	"github.com/iwslabs/featreq/internal/model"
)

// ClientDetail owns the single "current client" record. Bound views observe
// field updates in place without re-subscribing.
type ClientDetail struct {
	tr     ClientTransport
	bus    *event.Bus
	log    *zap.Logger
	client *model.Client
}

// NewClientDetail constructs the detail store.
func NewClientDetail(tr ClientTransport, bus *event.Bus, log *zap.Logger) *ClientDetail {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClientDetail{tr: tr, bus: bus, log: log, client: &model.Client{}}
}

// Client returns the shared current-client record.
func (s *ClientDetail) Client() *model.Client { return s.client }

// GetDetails loads one client into the shared record. The aggregate
// sentinel and the empty id synthesize a placeholder (ID "") without a
// network call.
func (s *ClientDetail) GetDetails(ctx context.Context, id string) (*model.Client, error) {
	if id == "" || id == model.AllClients {
		*s.client = model.Client{}
		return s.client, nil
	}
	rec, err := s.tr.ClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	*s.client = convert.ClientFromWire(rec)
	return s.client, nil
}

// Update diffs the mutable field set against the current record and posts
// only the fields that differ. A (nil, nil) return means nothing differed
// and no request was made; it is a vacuous success, not a failure.
func (s *ClientDetail) Update(ctx context.Context, patch model.ClientPatch) (*model.Client, error) {
	fields := make(map[string]any)
	if patch.Name != nil && *patch.Name != s.client.Name {
		fields["name"] = *patch.Name
	}
	if patch.ConName != nil && *patch.ConName != s.client.ConName {
		fields["con_name"] = *patch.ConName
	}
	if patch.ConMail != nil && *patch.ConMail != s.client.ConMail {
		fields["con_mail"] = *patch.ConMail
	}
	if len(fields) == 0 {
		return nil, nil
	}
	rec, err := s.tr.ClientAction(ctx, s.client.ID, "update", fields)
	if err != nil {
		return nil, err
	}
	*s.client = convert.ClientFromWire(rec)
	s.bus.Publish(event.ClientUpdated, s.client)
	return s.client, nil
}

// Add creates a client under a fresh id. The name is required and checked
// before any network call.
func (s *ClientDetail) Add(ctx context.Context, patch model.ClientPatch) (*model.Client, error) {
	if patch.Name == nil || *patch.Name == "" {
		return nil, errs.ErrNameRequired
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	fields := map[string]any{"name": *patch.Name}
	if patch.ConName != nil {
		fields["con_name"] = *patch.ConName
	}
	if patch.ConMail != nil {
		fields["con_mail"] = *patch.ConMail
	}
	rec, err := s.tr.ClientAction(ctx, id.String(), "create", fields)
	if err != nil {
		return nil, err
	}
	*s.client = convert.ClientFromWire(rec)
	s.log.Info("client created", zap.String("id", s.client.ID), zap.String("name", s.client.Name))
	s.bus.Publish(event.ClientUpdated, s.client)
	return s.client, nil
}

// Reset blanks the shared record for form use. With full=true the identity
// fields (id, date added) are cleared too, as a create form needs; with
// full=false they survive and only the editable fields reset.
func (s *ClientDetail) Reset(full bool) *model.Client {
	if full {
		*s.client = model.Client{}
		return s.client
	}
	s.client.Name = ""
	s.client.ConName = ""
	s.client.ConMail = ""
	return s.client
}
