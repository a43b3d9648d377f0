package main

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
)

// ---- session store ----

// The server tracks the session in cookies plus a CSRF token. Both are
// persisted between invocations under the user's config dir so that a
// login survives across commands.

type sessionCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sessionFile struct {
	CSRFToken string          `json:"csrf_token"`
	Cookies   []sessionCookie `json:"cookies"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "featreq")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "featreq")
}

func sessionPath() string { return filepath.Join(cfgDir(), "session.json") }

// loadSession builds a cookie jar for base from the saved session file.
// A missing file yields a fresh jar and an empty token.
func loadSession(base *url.URL) (http.CookieJar, string, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, "", err
	}
	b, err := os.ReadFile(sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return jar, "", nil
		}
		return nil, "", err
	}
	var sf sessionFile
	if err := json.Unmarshal(b, &sf); err != nil {
		return nil, "", err
	}
	cookies := make([]*http.Cookie, 0, len(sf.Cookies))
	for _, c := range sf.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(base, cookies)
	return jar, sf.CSRFToken, nil
}

// saveSession persists the jar's cookies for base alongside the current
// CSRF token.
func saveSession(base *url.URL, jar http.CookieJar, csrf string) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	sf := sessionFile{CSRFToken: csrf}
	for _, c := range jar.Cookies(base) {
		sf.Cookies = append(sf.Cookies, sessionCookie{Name: c.Name, Value: c.Value})
	}
	f, err := os.Create(sessionPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sf)
}

func clearSession() error {
	err := os.Remove(sessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
