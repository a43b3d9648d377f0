package api

// Raw wire records as the server emits them inside the {"data": ...}
// envelope. Dates stay strings here; internal/convert parses them into
// view-model records.

// AuthRecord is the session status payload of GET/POST /auth/.
type AuthRecord struct {
	LoggedIn      bool   `json:"logged_in"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	CSRFToken     string `json:"csrf_token"`
	SessionExpiry string `json:"session_expiry,omitempty"`
}

// ClientRecord is a client row from the list or detail endpoints.
type ClientRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ConName     string `json:"con_name"`
	ConMail     string `json:"con_mail"`
	DateAdd     string `json:"date_add"`
	OpenCount   int    `json:"open_count"`
	ClosedCount int    `json:"closed_count"`
}

// ReqRecord is the full request payload of GET/POST /requests/{id}.
type ReqRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	RefURL   string `json:"ref_url"`
	ProdArea string `json:"prod_area"`
	DateCr   string `json:"date_cr"`
	DateUp   string `json:"date_up"`
	UserCr   string `json:"user_cr"`
	UserUp   string `json:"user_up"`
}

// ReqRef is the denormalized request summary embedded in list entries,
// restricted by the fields query parameter.
type ReqRef struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ProdArea string `json:"prod_area"`
}

// OpenReqRecord is one open attachment row. client_id is present on the
// aggregate endpoints and omitted on the per-client ones.
type OpenReqRecord struct {
	ClientID string `json:"client_id,omitempty"`
	Priority *int   `json:"priority"`
	DateTgt  string `json:"date_tgt"`
	OpenedAt string `json:"opened_at"`
	OpenedBy string `json:"opened_by"`
	Req      ReqRef `json:"req"`
}

// ClosedReqRecord is one closed attachment row.
type ClosedReqRecord struct {
	OpenReqRecord
	ClosedAt string `json:"closed_at"`
	ClosedBy string `json:"closed_by"`
	Status   string `json:"status"`
	Reason   string `json:"reason"`
}

// GroupedOpenRecord is the aggregate-endpoint shape: one request with its
// per-client open attachments, which the list store inverts into a flat list.
type GroupedOpenRecord struct {
	Req      ReqRef          `json:"req"`
	OpenList []OpenReqRecord `json:"open_list"`
}

// GroupedClosedRecord mirrors GroupedOpenRecord for closed attachments.
type GroupedClosedRecord struct {
	Req        ReqRef            `json:"req"`
	ClosedList []ClosedReqRecord `json:"closed_list"`
}

// --- response envelopes ---

type authEnvelope struct {
	Data AuthRecord `json:"data"`
}

type clientListEnvelope struct {
	Data struct {
		ClientList []ClientRecord `json:"client_list"`
	} `json:"data"`
}

type clientEnvelope struct {
	Data struct {
		Client ClientRecord `json:"client"`
	} `json:"data"`
}

type openListEnvelope struct {
	Data struct {
		ClientID string          `json:"client_id"`
		OpenList []OpenReqRecord `json:"open_list"`
	} `json:"data"`
}

type closedListEnvelope struct {
	Data struct {
		ClientID   string            `json:"client_id"`
		ClosedList []ClosedReqRecord `json:"closed_list"`
	} `json:"data"`
}

type groupedOpenEnvelope struct {
	Data struct {
		ReqList []GroupedOpenRecord `json:"req_list"`
	} `json:"data"`
}

type groupedClosedEnvelope struct {
	Data struct {
		ReqList []GroupedClosedRecord `json:"req_list"`
	} `json:"data"`
}

type reqEnvelope struct {
	Data struct {
		Req ReqRecord `json:"req"`
	} `json:"data"`
}

type reqListsEnvelope struct {
	Data struct {
		OpenList   []OpenReqRecord   `json:"open_list"`
		ClosedList []ClosedReqRecord `json:"closed_list"`
	} `json:"data"`
}
