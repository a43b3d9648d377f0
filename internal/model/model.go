// Package model defines the view-model records shared between stores and
// their consumers. Each store owns exactly one record per entity kind and
// mutates it in place; consumers hold read-only references.
package model

import "time"

// AllClients is the selection sentinel that routes list fetches to the
// cross-client aggregate endpoints.
const AllClients = "_all"

// AuthStatus is the single shared session record. It is created once at
// startup and overwritten in place on every login/logout/refresh response.
type AuthStatus struct {
	LoggedIn      bool
	Username      string
	FullName      string
	CSRFToken     string
	SessionExpiry time.Time // zero when the server does not report one
	ErrMsg        string    // last failure message, cleared on success
}

// Client holds one client's details and request counters. The registry list
// entry is authoritative for the counters, the detail record for the
// editable fields.
type Client struct {
	ID          string
	Name        string
	ConName     string
	ConMail     string
	DateAdd     time.Time
	OpenCount   int
	ClosedCount int
}

// ClientList is the registry cache: the name-sorted client list, the current
// selection, aggregate counters, and an id index. After a successful fetch
// ByID[c.ID] == c for every element of List.
type ClientList struct {
	List   []*Client
	ID     string // currently selected client id ("" = none)
	Open   int
	Closed int
	ByID   map[string]*Client
}

// RequestRef is the denormalized request summary embedded in list entries.
type RequestRef struct {
	ID       string
	Title    string
	ProdArea string
}

// OpenRequest is one client's open attachment of a request.
type OpenRequest struct {
	ClientID string
	Priority *int       // nil = no priority assigned
	DateTgt  *time.Time // nil = no target date
	OpenedAt time.Time
	OpenedBy string
	Req      RequestRef
}

// CloseStatus is the single-letter close status code from the server.
type CloseStatus string

const (
	Complete CloseStatus = "C"
	Rejected CloseStatus = "R"
	Deferred CloseStatus = "D"
)

func (s CloseStatus) String() string {
	switch s {
	case Complete:
		return "Complete"
	case Rejected:
		return "Rejected"
	case Deferred:
		return "Deferred"
	}
	return string(s)
}

// ClosedRequest is one client's closed attachment, carrying the open-time
// fields frozen at the point of closing.
type ClosedRequest struct {
	ClientID string
	Priority *int
	DateTgt  *time.Time
	OpenedAt time.Time
	OpenedBy string
	ClosedAt time.Time
	ClosedBy string
	Status   CloseStatus
	Reason   string
	Req      RequestRef
}

// RequestList caches the open/closed lists for the selected client.
// A nil list means "not fetched for this client"; an empty non-nil list
// means "fetched, empty". The distinction drives the lazy-fetch policy.
type RequestList struct {
	ID         string // selected client id ("" = none, AllClients = aggregate)
	OpenList   []OpenRequest
	ClosedList []ClosedRequest
}

// FeatureReq is the full request record.
type FeatureReq struct {
	ID       string
	Title    string
	Desc     string
	RefURL   string
	ProdArea string
	DateCr   time.Time
	DateUp   time.Time
	UserCr   string
	UserUp   string
}

// RequestDetail is the current request plus its open/closed attachments
// across clients. Req.ID is the cache key.
type RequestDetail struct {
	Req    FeatureReq
	Open   []OpenRequest
	Closed []ClosedRequest
}

// ProdAreas lists the product areas the server accepts.
var ProdAreas = []string{"Policies", "Billing", "Claims", "Reports"}

// ValidArea reports whether s names a known product area.
func ValidArea(s string) bool {
	for _, a := range ProdAreas {
		if s == a {
			return true
		}
	}
	return false
}
