// Package convert normalizes raw server records into view-model records:
// date parsing, optional-field defaults, and inversion of the grouped
// aggregate payloads.
package convert

import (
	"time"

	"github.com/iwslabs/featreq/internal/api"
	"github.com/iwslabs/featreq/internal/model"
)

// Server timestamp format (Django-style, no subsecond resolution) and the
// date-only format used for target dates. RFC3339 is tried first.
const (
	wireTimeFormat = "2006-01-02 15:04:05"
	wireDateFormat = "2006-01-02"
)

// parseTime parses a wire timestamp. Malformed input yields the zero time
// rather than an error; list entries keep their place with an invalid-date
// marker. Known gap, inherited from the source behavior.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse(wireTimeFormat, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(wireDateFormat, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// parseTimePtr maps an absent value to nil, keeping "unset" distinct from
// any parsed (or invalid) date.
func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTime(s)
	return &t
}

// AuthFromWire normalizes the session status record.
func AuthFromWire(in api.AuthRecord) model.AuthStatus {
	return model.AuthStatus{
		LoggedIn:      in.LoggedIn,
		Username:      in.Username,
		FullName:      in.FullName,
		CSRFToken:     in.CSRFToken,
		SessionExpiry: parseTime(in.SessionExpiry),
	}
}

// ClientFromWire normalizes one client record.
func ClientFromWire(in api.ClientRecord) model.Client {
	return model.Client{
		ID:          in.ID,
		Name:        in.Name,
		ConName:     in.ConName,
		ConMail:     in.ConMail,
		DateAdd:     parseTime(in.DateAdd),
		OpenCount:   in.OpenCount,
		ClosedCount: in.ClosedCount,
	}
}

// ClientsFromWire normalizes a client list.
func ClientsFromWire(ins []api.ClientRecord) []*model.Client {
	out := make([]*model.Client, 0, len(ins))
	for _, in := range ins {
		c := ClientFromWire(in)
		out = append(out, &c)
	}
	return out
}

// OpenFromWire normalizes one open attachment row.
func OpenFromWire(in api.OpenReqRecord) model.OpenRequest {
	return model.OpenRequest{
		ClientID: in.ClientID,
		Priority: in.Priority,
		DateTgt:  parseTimePtr(in.DateTgt),
		OpenedAt: parseTime(in.OpenedAt),
		OpenedBy: in.OpenedBy,
		Req: model.RequestRef{
			ID:       in.Req.ID,
			Title:    in.Req.Title,
			ProdArea: in.Req.ProdArea,
		},
	}
}

// OpenListFromWire normalizes a fetched open list. The result is non-nil
// even when empty: nil is reserved for "not yet fetched".
func OpenListFromWire(ins []api.OpenReqRecord) []model.OpenRequest {
	out := make([]model.OpenRequest, 0, len(ins))
	for _, in := range ins {
		out = append(out, OpenFromWire(in))
	}
	return out
}

// StatusFromWire maps a close status to its single-letter code, accepting
// either the code or the display name.
func StatusFromWire(s string) model.CloseStatus {
	switch s {
	case "C", "Complete":
		return model.Complete
	case "R", "Rejected":
		return model.Rejected
	case "D", "Deferred":
		return model.Deferred
	}
	return model.CloseStatus(s)
}

// ClosedFromWire normalizes one closed attachment row.
func ClosedFromWire(in api.ClosedReqRecord) model.ClosedRequest {
	open := OpenFromWire(in.OpenReqRecord)
	return model.ClosedRequest{
		ClientID: open.ClientID,
		Priority: open.Priority,
		DateTgt:  open.DateTgt,
		OpenedAt: open.OpenedAt,
		OpenedBy: open.OpenedBy,
		ClosedAt: parseTime(in.ClosedAt),
		ClosedBy: in.ClosedBy,
		Status:   StatusFromWire(in.Status),
		Reason:   in.Reason,
		Req:      open.Req,
	}
}

// ClosedListFromWire normalizes a fetched closed list (non-nil even when
// empty, as with OpenListFromWire).
func ClosedListFromWire(ins []api.ClosedReqRecord) []model.ClosedRequest {
	out := make([]model.ClosedRequest, 0, len(ins))
	for _, in := range ins {
		out = append(out, ClosedFromWire(in))
	}
	return out
}

// FeatureReqFromWire normalizes the full request record.
func FeatureReqFromWire(in api.ReqRecord) model.FeatureReq {
	return model.FeatureReq{
		ID:       in.ID,
		Title:    in.Title,
		Desc:     in.Desc,
		RefURL:   in.RefURL,
		ProdArea: in.ProdArea,
		DateCr:   parseTime(in.DateCr),
		DateUp:   parseTime(in.DateUp),
		UserCr:   in.UserCr,
		UserUp:   in.UserUp,
	}
}

// FlattenOpen inverts the grouped aggregate payload into a flat entry list,
// annotating each entry with its parent request's summary.
func FlattenOpen(groups []api.GroupedOpenRecord) []model.OpenRequest {
	out := make([]model.OpenRequest, 0, len(groups))
	for _, g := range groups {
		for _, in := range g.OpenList {
			entry := OpenFromWire(in)
			entry.Req = model.RequestRef{
				ID:       g.Req.ID,
				Title:    g.Req.Title,
				ProdArea: g.Req.ProdArea,
			}
			out = append(out, entry)
		}
	}
	return out
}

// FlattenClosed mirrors FlattenOpen for closed attachments.
func FlattenClosed(groups []api.GroupedClosedRecord) []model.ClosedRequest {
	out := make([]model.ClosedRequest, 0, len(groups))
	for _, g := range groups {
		for _, in := range g.ClosedList {
			entry := ClosedFromWire(in)
			entry.Req = model.RequestRef{
				ID:       g.Req.ID,
				Title:    g.Req.Title,
				ProdArea: g.Req.ProdArea,
			}
			out = append(out, entry)
		}
	}
	return out
}
