package store

import (
	"context"

	"github.com/iwslabs/featreq/internal/api"
)

// Transport fakes: record arguments, return canned outputs, count calls.

type fakeAuthTr struct {
	statusOut   api.AuthRecord
	statusErr   error
	statusCalls int

	loginOut   api.AuthRecord
	loginErr   error
	loginCalls int
	loginUser  string
	loginPass  string

	logoutOut   api.AuthRecord
	logoutErr   error
	logoutCalls int

	csrf []string
}

var _ AuthTransport = (*fakeAuthTr)(nil)

func (f *fakeAuthTr) AuthStatus(context.Context) (api.AuthRecord, error) {
	f.statusCalls++
	return f.statusOut, f.statusErr
}

func (f *fakeAuthTr) Login(_ context.Context, username, password string) (api.AuthRecord, error) {
	f.loginCalls++
	f.loginUser, f.loginPass = username, password
	return f.loginOut, f.loginErr
}

func (f *fakeAuthTr) Logout(context.Context) (api.AuthRecord, error) {
	f.logoutCalls++
	return f.logoutOut, f.logoutErr
}

func (f *fakeAuthTr) SetCSRFToken(tok string) {
	f.csrf = append(f.csrf, tok)
}

type fakeClientTr struct {
	clientsOut   []api.ClientRecord
	clientsErr   error
	clientsCalls int

	byIDOut   api.ClientRecord
	byIDErr   error
	byIDCalls int
	byIDIn    string

	actionOut    api.ClientRecord
	actionErr    error
	actionCalls  int
	actionID     string
	actionName   string
	actionFields map[string]any
}

var _ ClientTransport = (*fakeClientTr)(nil)

func (f *fakeClientTr) Clients(context.Context) ([]api.ClientRecord, error) {
	f.clientsCalls++
	return append([]api.ClientRecord(nil), f.clientsOut...), f.clientsErr
}

func (f *fakeClientTr) ClientByID(_ context.Context, id string) (api.ClientRecord, error) {
	f.byIDCalls++
	f.byIDIn = id
	return f.byIDOut, f.byIDErr
}

func (f *fakeClientTr) ClientAction(_ context.Context, id, action string, fields map[string]any) (api.ClientRecord, error) {
	f.actionCalls++
	f.actionID, f.actionName, f.actionFields = id, action, fields
	return f.actionOut, f.actionErr
}

type fakeListTr struct {
	openOut   []api.OpenReqRecord
	openErr   error
	openCalls int
	openIn    string

	closedOut   []api.ClosedReqRecord
	closedErr   error
	closedCalls int
	closedIn    string

	allOpenOut   []api.GroupedOpenRecord
	allOpenErr   error
	allOpenCalls int

	allClosedOut   []api.GroupedClosedRecord
	allClosedErr   error
	allClosedCalls int
}

var _ RequestListTransport = (*fakeListTr)(nil)

func (f *fakeListTr) OpenByClient(_ context.Context, clientID string, _ []string) ([]api.OpenReqRecord, error) {
	f.openCalls++
	f.openIn = clientID
	return append([]api.OpenReqRecord(nil), f.openOut...), f.openErr
}

func (f *fakeListTr) ClosedByClient(_ context.Context, clientID string, _ []string) ([]api.ClosedReqRecord, error) {
	f.closedCalls++
	f.closedIn = clientID
	return append([]api.ClosedReqRecord(nil), f.closedOut...), f.closedErr
}

func (f *fakeListTr) AllOpen(context.Context, []string) ([]api.GroupedOpenRecord, error) {
	f.allOpenCalls++
	return append([]api.GroupedOpenRecord(nil), f.allOpenOut...), f.allOpenErr
}

func (f *fakeListTr) AllClosed(context.Context, []string) ([]api.GroupedClosedRecord, error) {
	f.allClosedCalls++
	return append([]api.GroupedClosedRecord(nil), f.allClosedOut...), f.allClosedErr
}

type fakeReqTr struct {
	byIDOut   api.ReqRecord
	byIDErr   error
	byIDCalls int
	byIDIn    string

	listsOpenOut   []api.OpenReqRecord
	listsClosedOut []api.ClosedReqRecord
	listsErr       error
	listsCalls     int

	actionOut    api.ReqRecord
	actionErr    error
	actionCalls  int
	actionID     string
	actionName   string
	actionFields map[string]any

	openActOpenOut   []api.OpenReqRecord
	openActClosedOut []api.ClosedReqRecord
	openActErr       error
	openActCalls     int
	openActID        string
	openActName      string
	openActFields    map[string]any
}

var _ RequestTransport = (*fakeReqTr)(nil)

func (f *fakeReqTr) RequestByID(_ context.Context, id string) (api.ReqRecord, error) {
	f.byIDCalls++
	f.byIDIn = id
	return f.byIDOut, f.byIDErr
}

func (f *fakeReqTr) RequestLists(_ context.Context, _ string) ([]api.OpenReqRecord, []api.ClosedReqRecord, error) {
	f.listsCalls++
	return append([]api.OpenReqRecord(nil), f.listsOpenOut...),
		append([]api.ClosedReqRecord(nil), f.listsClosedOut...), f.listsErr
}

func (f *fakeReqTr) RequestAction(_ context.Context, id, action string, fields map[string]any) (api.ReqRecord, error) {
	f.actionCalls++
	f.actionID, f.actionName, f.actionFields = id, action, fields
	return f.actionOut, f.actionErr
}

func (f *fakeReqTr) OpenAction(_ context.Context, id, action string, fields map[string]any) ([]api.OpenReqRecord, []api.ClosedReqRecord, error) {
	f.openActCalls++
	f.openActID, f.openActName, f.openActFields = id, action, fields
	return append([]api.OpenReqRecord(nil), f.openActOpenOut...),
		append([]api.ClosedReqRecord(nil), f.openActClosedOut...), f.openActErr
}
