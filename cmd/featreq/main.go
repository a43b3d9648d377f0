// Command featreq is a CLI client for the feature-request tracking service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	u "github.com/gofrs/uuid/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iwslabs/featreq/internal/api"
	"github.com/iwslabs/featreq/internal/event"
	"github.com/iwslabs/featreq/internal/model"
	"github.com/iwslabs/featreq/internal/store"
)

// ---- app wiring ----

// app carries the transport, the event bus, and the stores bound to it.
type app struct {
	base *url.URL
	jar  http.CookieJar
	api  *api.Client

	bus     *event.Bus
	auth    *store.Auth
	clients *store.ClientList
	client  *store.ClientDetail
	lists   *store.RequestList
	detail  *store.RequestDetail
}

func newApp(baseURL string, log *zap.Logger) (*app, error) {
	if log == nil {
		log = zap.NewNop()
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, csrf, err := loadSession(base)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	ac := api.New(baseURL,
		api.WithHTTPClient(&http.Client{Jar: jar, Timeout: 30 * time.Second}),
		api.WithLogger(log),
	)
	if csrf != "" {
		ac.SetCSRFToken(csrf)
	}

	bus := event.NewBus()
	a := &app{
		base:    base,
		jar:     jar,
		api:     ac,
		bus:     bus,
		auth:    store.NewAuth(ac, bus, log),
		clients: store.NewClientList(ac, bus, log),
		client:  store.NewClientDetail(ac, bus, log),
		lists:   store.NewRequestList(ac, log),
		detail:  store.NewRequestDetail(ac, bus, log),
	}

	ac.OnSessionExpired(a.auth.HandleExpiry)
	bus.Subscribe(event.OpenRequestUpdated, func(p any) {
		if req, ok := p.(*model.FeatureReq); ok {
			a.lists.PatchReq(req.ID, req.Title, req.ProdArea)
		}
	})
	bus.Subscribe(event.SessionEnded, func(any) {
		a.clients.Clear()
		a.client.Reset(true)
		a.detail.Clear()
	})
	return a, nil
}

// persist writes the cookie jar and the latest CSRF token back to disk.
func (a *app) persist() {
	if err := saveSession(a.base, a.jar, a.auth.Status().CSRFToken); err != nil {
		fmt.Fprintln(os.Stderr, "save session:", err)
	}
}

// ---- utils ----

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func checkID(id string) string {
	if _, err := u.FromString(id); err != nil {
		fmt.Fprintf(os.Stderr, "bad id %q: %v\n", id, err)
		os.Exit(1)
	}
	return id
}

func checkArea(area string) {
	if area != "" && !model.ValidArea(area) {
		fmt.Fprintf(os.Stderr, "bad prod area %q (one of %s)\n", area, strings.Join(model.ProdAreas, ", "))
		os.Exit(1)
	}
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// openPatchFlags builds an OpenPatch from the priority/date flag set.
// -clear-priority and -clear-date send explicit nulls.
func openPatchFlags(clientID string, priority int, date string, clearPriority, clearDate bool) (model.OpenPatch, error) {
	patch := model.OpenPatch{ClientID: clientID}
	switch {
	case clearPriority:
		patch.Priority = model.NullInt()
	case priority > 0:
		patch.Priority = model.SomeInt(priority)
	}
	switch {
	case clearDate:
		patch.DateTgt = model.NullDate()
	case date != "":
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return patch, fmt.Errorf("bad date %q: %w", date, err)
		}
		patch.DateTgt = model.SomeDate(d)
	}
	return patch, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return model.String(s)
}

func usage() {
	fmt.Fprintf(os.Stderr, `featreq CLI
Usage:
  featreq [-addr URL] [-v] <cmd> [args]

Commands:
  status
  login         -u <username> -p <password>
  logout
  clients
  client        -id <uuid>
  open          [-client <uuid>|_all]
  closed        [-client <uuid>|_all]
  req           -id <uuid>
  add-client    -name <name> [-con-name x] [-con-mail x]
  update-client -id <uuid> [-name x] [-con-name x] [-con-mail x]
  add-req       -title <t> -desc <d> -client <uuid> [-area x] [-url x] [-priority n] [-date YYYY-MM-DD]
  update-req    -id <uuid> [-title x] [-desc x] [-area x] [-url x]
  open-req      -id <uuid> -client <uuid> [-priority n] [-date YYYY-MM-DD]
  update-open   -id <uuid> -client <uuid> [-priority n|-clear-priority] [-date YYYY-MM-DD|-clear-date]
  close-req     -id <uuid> -status <C|R|D> -reason <text> [-client <uuid>]
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against a shared store graph. Every network
// command refreshes the auth state first so the CSRF token and expiry
// interception are in place before the real call.
func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", getEnv("FEATREQ_URL", "http://localhost:8000"), "server base URL")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	log := zap.NewNop()
	if *verbose {
		log, _ = zap.NewDevelopment()
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := newApp(*addr, log)
	if err != nil {
		fail(err)
	}

	switch cmd {

	case "version":
		fmt.Printf("featreq %s (%s)\n", version, buildDate)

	case "status":
		st, err := a.auth.Refresh(ctx)
		if err != nil {
			fail(err)
		}
		a.persist()
		printJSON(st)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		usr := fs.String("u", "", "username")
		pwd := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *usr == "" || *pwd == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}

		// the status call seeds the session cookie and CSRF token the
		// login post must carry
		if _, err := a.auth.Refresh(ctx); err != nil {
			fail(err)
		}
		st, err := a.auth.Login(ctx, *usr, *pwd)
		if err != nil {
			fail(err)
		}
		a.persist()
		if !st.LoggedIn {
			fmt.Fprintln(os.Stderr, "login rejected:", st.ErrMsg)
			os.Exit(1)
		}
		fmt.Println("ok")

	case "logout":
		if _, err := a.auth.Logout(ctx); err != nil {
			fail(err)
		}
		if err := clearSession(); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "clients":
		list, err := a.clients.GetClients(ctx)
		if err != nil {
			fail(err)
		}
		a.persist()
		type row struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Open   int    `json:"open"`
			Closed int    `json:"closed"`
		}
		rows := make([]row, 0, len(list))
		for _, c := range list {
			rows = append(rows, row{ID: c.ID, Name: c.Name, Open: c.OpenCount, Closed: c.ClosedCount})
		}
		printJSON(rows)

	case "client":
		fs := flag.NewFlagSet("client", flag.ExitOnError)
		id := fs.String("id", "", "client id (uuid)")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}

		c, err := a.client.GetDetails(ctx, checkID(*id))
		if err != nil {
			fail(err)
		}
		a.persist()
		printJSON(c)

	case "open":
		fs := flag.NewFlagSet("open", flag.ExitOnError)
		clientID := fs.String("client", model.AllClients, "client id or _all")
		_ = fs.Parse(flag.Args()[1:])

		list, err := a.lists.GetOpen(ctx, *clientID)
		if err != nil {
			fail(err)
		}
		a.persist()
		type row struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			ProdArea string `json:"prod_area"`
			Client   string `json:"client,omitempty"`
			Priority *int   `json:"priority"`
			DateTgt  string `json:"date_tgt,omitempty"`
			OpenedAt string `json:"opened_at"`
		}
		rows := make([]row, 0, len(list))
		for _, e := range list {
			rows = append(rows, row{
				ID: e.Req.ID, Title: e.Req.Title, ProdArea: e.Req.ProdArea,
				Client: e.ClientID, Priority: e.Priority,
				DateTgt:  dateString(e.DateTgt),
				OpenedAt: e.OpenedAt.Format(time.RFC3339),
			})
		}
		printJSON(rows)

	case "closed":
		fs := flag.NewFlagSet("closed", flag.ExitOnError)
		clientID := fs.String("client", model.AllClients, "client id or _all")
		_ = fs.Parse(flag.Args()[1:])

		list, err := a.lists.GetClosed(ctx, *clientID)
		if err != nil {
			fail(err)
		}
		a.persist()
		type row struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Client   string `json:"client,omitempty"`
			Status   string `json:"status"`
			Reason   string `json:"reason"`
			ClosedAt string `json:"closed_at"`
		}
		rows := make([]row, 0, len(list))
		for _, e := range list {
			rows = append(rows, row{
				ID: e.Req.ID, Title: e.Req.Title, Client: e.ClientID,
				Status: e.Status.String(), Reason: e.Reason,
				ClosedAt: e.ClosedAt.Format(time.RFC3339),
			})
		}
		printJSON(rows)

	case "req":
		fs := flag.NewFlagSet("req", flag.ExitOnError)
		id := fs.String("id", "", "request id (uuid)")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}

		d, err := a.detail.GetDetails(ctx, checkID(*id))
		if err != nil {
			fail(err)
		}
		a.persist()
		printJSON(d)

	case "add-client":
		fs := flag.NewFlagSet("add-client", flag.ExitOnError)
		name := fs.String("name", "", "client name")
		conName := fs.String("con-name", "", "contact name")
		conMail := fs.String("con-mail", "", "contact mail")
		_ = fs.Parse(flag.Args()[1:])

		c, err := a.client.Add(ctx, model.ClientPatch{
			Name:    optString(*name),
			ConName: optString(*conName),
			ConMail: optString(*conMail),
		})
		if err != nil {
			fail(err)
		}
		a.persist()
		printJSON(c)

	case "update-client":
		fs := flag.NewFlagSet("update-client", flag.ExitOnError)
		id := fs.String("id", "", "client id (uuid)")
		name := fs.String("name", "", "client name")
		conName := fs.String("con-name", "", "contact name")
		conMail := fs.String("con-mail", "", "contact mail")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}

		if _, err := a.client.GetDetails(ctx, checkID(*id)); err != nil {
			fail(err)
		}
		c, err := a.client.Update(ctx, model.ClientPatch{
			Name:    optString(*name),
			ConName: optString(*conName),
			ConMail: optString(*conMail),
		})
		if err != nil {
			fail(err)
		}
		a.persist()
		if c == nil {
			fmt.Println("no changes")
			return
		}
		printJSON(c)

	case "add-req":
		fs := flag.NewFlagSet("add-req", flag.ExitOnError)
		title := fs.String("title", "", "request title")
		desc := fs.String("desc", "", "description")
		area := fs.String("area", "", "prod area")
		refURL := fs.String("url", "", "reference URL")
		clientID := fs.String("client", "", "opening client id (uuid)")
		priority := fs.Int("priority", 0, "priority (1 = highest)")
		date := fs.String("date", "", "target date YYYY-MM-DD")
		_ = fs.Parse(flag.Args()[1:])
		checkArea(*area)
		if *clientID != "" {
			checkID(*clientID)
		}

		open, err := openPatchFlags(*clientID, *priority, *date, false, false)
		if err != nil {
			fail(err)
		}
		d, err := a.detail.Add(ctx, model.ReqPatch{
			Title:    optString(*title),
			Desc:     optString(*desc),
			ProdArea: optString(*area),
			RefURL:   optString(*refURL),
		}, open)
		if err != nil {
			fail(err)
		}
		a.persist()
		printJSON(d)

	case "update-req":
		fs := flag.NewFlagSet("update-req", flag.ExitOnError)
		id := fs.String("id", "", "request id (uuid)")
		title := fs.String("title", "", "request title")
		desc := fs.String("desc", "", "description to append")
		area := fs.String("area", "", "prod area")
		refURL := fs.String("url", "", "reference URL")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		checkArea(*area)

		if _, err := a.detail.GetDetails(ctx, checkID(*id)); err != nil {
			fail(err)
		}
		d, err := a.detail.Update(ctx, model.ReqPatch{
			Title:    optString(*title),
			Desc:     optString(*desc),
			ProdArea: optString(*area),
			RefURL:   optString(*refURL),
		})
		if err != nil {
			fail(err)
		}
		a.persist()
		if d == nil {
			fmt.Println("no changes")
			return
		}
		printJSON(d)

	case "open-req":
		fs := flag.NewFlagSet("open-req", flag.ExitOnError)
		id := fs.String("id", "", "request id (uuid)")
		clientID := fs.String("client", "", "client id (uuid)")
		priority := fs.Int("priority", 0, "priority (1 = highest)")
		date := fs.String("date", "", "target date YYYY-MM-DD")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" || *clientID == "" {
			fmt.Fprintln(os.Stderr, "need -id and -client")
			os.Exit(1)
		}

		if _, err := a.detail.GetDetails(ctx, checkID(*id)); err != nil {
			fail(err)
		}
		patch, err := openPatchFlags(checkID(*clientID), *priority, *date, false, false)
		if err != nil {
			fail(err)
		}
		d, err := a.detail.Open(ctx, patch)
		if err != nil {
			fail(err)
		}
		a.persist()
		printJSON(d)

	case "update-open":
		fs := flag.NewFlagSet("update-open", flag.ExitOnError)
		id := fs.String("id", "", "request id (uuid)")
		clientID := fs.String("client", "", "client id (uuid)")
		priority := fs.Int("priority", 0, "priority (1 = highest)")
		date := fs.String("date", "", "target date YYYY-MM-DD")
		clearPriority := fs.Bool("clear-priority", false, "clear the priority")
		clearDate := fs.Bool("clear-date", false, "clear the target date")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" || *clientID == "" {
			fmt.Fprintln(os.Stderr, "need -id and -client")
			os.Exit(1)
		}

		if _, err := a.detail.GetDetails(ctx, checkID(*id)); err != nil {
			fail(err)
		}
		patch, err := openPatchFlags(checkID(*clientID), *priority, *date, *clearPriority, *clearDate)
		if err != nil {
			fail(err)
		}
		d, err := a.detail.UpdateOpen(ctx, patch)
		if err != nil {
			fail(err)
		}
		a.persist()
		if d == nil {
			fmt.Println("no changes")
			return
		}
		printJSON(d)

	case "close-req":
		fs := flag.NewFlagSet("close-req", flag.ExitOnError)
		id := fs.String("id", "", "request id (uuid)")
		clientID := fs.String("client", "", "client id (uuid, empty = all)")
		status := fs.String("status", "", "close status (C, R, or D)")
		reason := fs.String("reason", "", "close reason")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		if *clientID != "" {
			checkID(*clientID)
		}

		if _, err := a.detail.GetDetails(ctx, checkID(*id)); err != nil {
			fail(err)
		}
		d, err := a.detail.Close(ctx, model.ClosePatch{
			ClientID: *clientID,
			Status:   *status,
			Reason:   *reason,
		})
		if err != nil {
			fail(err)
		}
		a.persist()
		printJSON(d)

	default:
		usage()
	}
}

func fail(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 0 {
			fmt.Fprintln(os.Stderr, "server unreachable:", apiErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "server error: status=%d msg=%s\n", apiErr.StatusCode, apiErr.Message)
		}
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
