// Package store contains the shared, long-lived view-model stores: each
// owns one mutable record per entity kind, mediates fetches through the
// transport, and broadcasts coordination events after successful mutations.
//
// Stores assume a single cooperative caller goroutine. The cache-hit check
// in every operation is synchronous and happens before any network call;
// there is no in-flight deduplication, so two overlapping calls with the
// same key both reach the server and the last response to arrive wins.
package store

import (
	"context"

	"github.com/iwslabs/featreq/internal/api"
)

// AuthTransport is the slice of the transport the auth store needs.
type AuthTransport interface {
	AuthStatus(ctx context.Context) (api.AuthRecord, error)
	Login(ctx context.Context, username, password string) (api.AuthRecord, error)
	Logout(ctx context.Context) (api.AuthRecord, error)
	// SetCSRFToken installs the token on all subsequent mutating requests.
	SetCSRFToken(tok string)
}

// ClientTransport serves the client registry and detail stores.
type ClientTransport interface {
	Clients(ctx context.Context) ([]api.ClientRecord, error)
	ClientByID(ctx context.Context, id string) (api.ClientRecord, error)
	ClientAction(ctx context.Context, id, action string, fields map[string]any) (api.ClientRecord, error)
}

// RequestListTransport serves the per-client and aggregate request lists.
type RequestListTransport interface {
	OpenByClient(ctx context.Context, clientID string, fields []string) ([]api.OpenReqRecord, error)
	ClosedByClient(ctx context.Context, clientID string, fields []string) ([]api.ClosedReqRecord, error)
	AllOpen(ctx context.Context, fields []string) ([]api.GroupedOpenRecord, error)
	AllClosed(ctx context.Context, fields []string) ([]api.GroupedClosedRecord, error)
}

// RequestTransport serves the request detail store.
type RequestTransport interface {
	RequestByID(ctx context.Context, id string) (api.ReqRecord, error)
	RequestLists(ctx context.Context, id string) ([]api.OpenReqRecord, []api.ClosedReqRecord, error)
	RequestAction(ctx context.Context, id, action string, fields map[string]any) (api.ReqRecord, error)
	OpenAction(ctx context.Context, id, action string, fields map[string]any) ([]api.OpenReqRecord, []api.ClosedReqRecord, error)
}
