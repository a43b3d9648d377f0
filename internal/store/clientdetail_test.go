package store

import (
	"context"
	"errors"
	"testing"

	"github.com/iwslabs/featreq/internal/api"
	"github.com/iwslabs/featreq/internal/errs"
	"github.com/iwslabs/featreq/internal/event"
	"github.com/iwslabs/featreq/internal/model"
)

func TestClientDetail_GetDetails(t *testing.T) {
	t.Parallel()
	tr := &fakeClientTr{byIDOut: api.ClientRecord{
		ID: "c1", Name: "Acme", ConName: "Road Runner", ConMail: "rr@acme.test",
		DateAdd: "2024-01-01 09:00:00",
	}}
	s := NewClientDetail(tr, event.NewBus(), nil)

	got, err := s.GetDetails(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetDetails: %v", err)
	}
	if got != s.Client() {
		t.Fatalf("GetDetails must return the shared record")
	}
	if got.Name != "Acme" || got.DateAdd.IsZero() {
		t.Fatalf("record not applied: %+v", got)
	}
	if tr.byIDIn != "c1" {
		t.Fatalf("fetched id %q", tr.byIDIn)
	}
}

func TestClientDetail_GetDetails_SentinelSkipsNetwork(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := &fakeClientTr{byIDOut: api.ClientRecord{ID: "c1", Name: "Acme"}}
	s := NewClientDetail(tr, event.NewBus(), nil)

	if _, err := s.GetDetails(ctx, "c1"); err != nil {
		t.Fatalf("GetDetails: %v", err)
	}

	for _, id := range []string{"", model.AllClients} {
		got, err := s.GetDetails(ctx, id)
		if err != nil {
			t.Fatalf("GetDetails(%q): %v", id, err)
		}
		if got.ID != "" || got.Name != "" {
			t.Fatalf("placeholder for %q: %+v", id, got)
		}
	}
	if tr.byIDCalls != 1 {
		t.Fatalf("sentinel lookups must not hit the network, calls=%d", tr.byIDCalls)
	}
}

func TestClientDetail_Update_DiffsFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := &fakeClientTr{
		byIDOut:   api.ClientRecord{ID: "c1", Name: "Acme", ConName: "Road Runner"},
		actionOut: api.ClientRecord{ID: "c1", Name: "Acme Ltd", ConName: "Road Runner"},
	}
	bus := event.NewBus()
	s := NewClientDetail(tr, bus, nil)
	updates := countEvents(bus, event.ClientUpdated)

	if _, err := s.GetDetails(ctx, "c1"); err != nil {
		t.Fatalf("GetDetails: %v", err)
	}

	got, err := s.Update(ctx, model.ClientPatch{
		Name:    model.String("Acme Ltd"),
		ConName: model.String("Road Runner"), // unchanged, must not be sent
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Acme Ltd" {
		t.Fatalf("canonical record not applied: %+v", got)
	}
	if tr.actionName != "update" || tr.actionID != "c1" {
		t.Fatalf("action=%q id=%q", tr.actionName, tr.actionID)
	}
	if _, sent := tr.actionFields["con_name"]; sent {
		t.Fatalf("unchanged field sent: %v", tr.actionFields)
	}
	if tr.actionFields["name"] != "Acme Ltd" {
		t.Fatalf("changed field missing: %v", tr.actionFields)
	}
	if *updates != 1 {
		t.Fatalf("ClientUpdated events: %d", *updates)
	}
}

func TestClientDetail_Update_NoChangeIsVacuousSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := &fakeClientTr{byIDOut: api.ClientRecord{ID: "c1", Name: "Acme"}}
	s := NewClientDetail(tr, event.NewBus(), nil)
	if _, err := s.GetDetails(ctx, "c1"); err != nil {
		t.Fatalf("GetDetails: %v", err)
	}

	got, err := s.Update(ctx, model.ClientPatch{Name: model.String("Acme")})
	if err != nil {
		t.Fatalf("vacuous update must not fail: %v", err)
	}
	if got != nil {
		t.Fatalf("vacuous update must resolve to nil, got %+v", got)
	}
	if tr.actionCalls != 0 {
		t.Fatalf("vacuous update must not issue a network call")
	}
}

func TestClientDetail_Add_RequiresName(t *testing.T) {
	t.Parallel()
	tr := &fakeClientTr{}
	s := NewClientDetail(tr, event.NewBus(), nil)

	for _, patch := range []model.ClientPatch{{}, {Name: model.String("")}} {
		_, err := s.Add(context.Background(), patch)
		if !errors.Is(err, errs.ErrNameRequired) {
			t.Fatalf("want ErrNameRequired, got %v", err)
		}
	}
	if tr.actionCalls != 0 {
		t.Fatalf("validation failure must not issue a network call")
	}
}

func TestClientDetail_Add_CreatesUnderFreshID(t *testing.T) {
	t.Parallel()
	tr := &fakeClientTr{actionOut: api.ClientRecord{ID: "c9", Name: "Initech"}}
	s := NewClientDetail(tr, event.NewBus(), nil)

	got, err := s.Add(context.Background(), model.ClientPatch{Name: model.String("Initech")})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tr.actionName != "create" || tr.actionID == "" {
		t.Fatalf("action=%q id=%q", tr.actionName, tr.actionID)
	}
	if got.ID != "c9" {
		t.Fatalf("canonical record not applied: %+v", got)
	}
}

func TestClientDetail_Reset(t *testing.T) {
	t.Parallel()
	tr := &fakeClientTr{byIDOut: api.ClientRecord{
		ID: "c1", Name: "Acme", ConName: "RR", DateAdd: "2024-01-01 09:00:00",
	}}
	s := NewClientDetail(tr, event.NewBus(), nil)
	if _, err := s.GetDetails(context.Background(), "c1"); err != nil {
		t.Fatalf("GetDetails: %v", err)
	}

	partial := s.Reset(false)
	if partial.Name != "" || partial.ConName != "" {
		t.Fatalf("editable fields not cleared: %+v", partial)
	}
	if partial.ID != "c1" || partial.DateAdd.IsZero() {
		t.Fatalf("identity fields must survive a partial reset: %+v", partial)
	}

	full := s.Reset(true)
	if full.ID != "" || !full.DateAdd.IsZero() {
		t.Fatalf("full reset must clear identity fields: %+v", full)
	}
}
