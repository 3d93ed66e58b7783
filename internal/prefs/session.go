package prefs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jask/emotionpoll/internal/secrets"
)

const sessionFile = "session.json"

// Session is what survives between runs: who logged in last and the cookies
// that keep the backend session open.
type Session struct {
	Server  string
	Email   string
	Cookies []*http.Cookie
}

// storedSession is the on-disk shape; cookies are sealed.
type storedSession struct {
	Server  string `json:"server"`
	Email   string `json:"email"`
	Cookies string `json:"cookies,omitempty"`
}

func sessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "emotionpoll")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFile), nil
}

func SaveSession(s Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	sf := storedSession{Server: s.Server, Email: s.Email}
	if len(s.Cookies) > 0 {
		raw, err := json.Marshal(s.Cookies)
		if err != nil {
			return err
		}
		if sf.Cookies, err = secrets.Seal(raw); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSession returns the zero Session when nothing was saved. Cookies that
// cannot be unsealed are dropped; the email survives.
func LoadSession() (Session, error) {
	path, err := sessionPath()
	if err != nil {
		return Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var sf storedSession
	if err := json.Unmarshal(data, &sf); err != nil {
		return Session{}, fmt.Errorf("parse %s: %w", sessionFile, err)
	}
	s := Session{Server: sf.Server, Email: sf.Email}
	if sf.Cookies == "" {
		return s, nil
	}
	raw, err := secrets.Open(sf.Cookies)
	if err != nil {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.Cookies); err != nil {
		s.Cookies = nil
	}
	return s, nil
}

// ClearSession forgets the cookies but keeps the last email for the login
// form.
func ClearSession() error {
	s, err := LoadSession()
	if err != nil {
		return err
	}
	if s.Server == "" && s.Email == "" {
		return nil
	}
	s.Cookies = nil
	return SaveSession(s)
}

// CookieSource exposes the cookies a client currently holds.
type CookieSource interface {
	Cookies() []*http.Cookie
}

// Keeper saves the session of one backend after each login.
type Keeper struct {
	Server string
	Jar    CookieSource
}

func (k Keeper) Save(email string) error {
	return SaveSession(Session{Server: k.Server, Email: email, Cookies: k.Jar.Cookies()})
}

func (k Keeper) Clear() error { return ClearSession() }

// Restore returns the saved session when it belongs to server.
func Restore(server string) (Session, bool) {
	s, err := LoadSession()
	if err != nil || s.Server != server {
		return Session{}, false
	}
	return s, true
}
