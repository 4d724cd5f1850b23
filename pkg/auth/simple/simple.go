package simple

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/anthonyraymond/stompauth/pkg/auth"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"gopkg.in/ini.v1"
)

const authSection = "auth"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var _ auth.Authenticator = (*SimpleAuthenticator)(nil)

// SimpleAuthenticator checks login/passcode pairs against an in-memory table
// loaded from the [auth] section of an INI file:
//
//	[auth]
//	someuser = somepass
//	anotheruser = anotherpass
//
// Logins and passwords are taken as written, except that ini.v1 always unquotes
// values wrapped in backticks or triple double quotes. Passwords are stored and
// compared in plain text.
type SimpleAuthenticator struct {
	store atomic.Value // holds a map[string]string, never mutated once stored
}

// New returns an authenticator backed by a copy of store. A nil store is an empty one.
// The zero value is also usable and rejects everybody.
func New(store map[string]string) *SimpleAuthenticator {
	s := make(map[string]string, len(store))
	for login, password := range store {
		s[login] = password
	}
	a := &SimpleAuthenticator{}
	a.store.Store(s)
	return a
}

// LoadFile replaces the credentials with the [auth] section of the first candidate
// path that can be read and parsed. On error the current credentials are kept.
func (a *SimpleAuthenticator) LoadFile(paths ...string) error {
	if len(paths) == 0 {
		return auth.NewUnparsableSourceError("", errors.New("no candidate path given"))
	}

	var lastErr error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		f, err := parse(data)
		if err != nil {
			lastErr = errors.Wrapf(err, "failed to parse '%s'", path)
			continue
		}
		return a.replaceFrom(f, path)
	}
	return auth.NewUnparsableSourceError(strings.Join(paths, ", "), lastErr)
}

// LoadReader replaces the credentials with the [auth] section read from r.
// On error the current credentials are kept.
func (a *SimpleAuthenticator) LoadReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return auth.NewUnparsableSourceError("<stream>", err)
	}
	f, err := parse(data)
	if err != nil {
		return auth.NewUnparsableSourceError("<stream>", err)
	}
	return a.replaceFrom(f, "<stream>")
}

func (a *SimpleAuthenticator) replaceFrom(f *ini.File, source string) error {
	sec, err := f.GetSection(authSection)
	if err != nil {
		return auth.NewMissingSectionError(source, authSection)
	}
	// KeysHash builds a fresh map, safe to publish as is
	a.store.Store(sec.KeysHash())
	return nil
}

// Authenticate reports whether login is known and its password equals passcode exactly.
func (a *SimpleAuthenticator) Authenticate(login, passcode string) bool {
	password, ok := a.snapshot()[login]
	return ok && password == passcode
}

// Len returns the number of logins currently loaded.
func (a *SimpleAuthenticator) Len() int {
	return len(a.snapshot())
}

// Logins returns the currently loaded logins in lexical order.
func (a *SimpleAuthenticator) Logins() []string {
	s := a.snapshot()
	logins := make([]string, 0, len(s))
	for login := range s {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}

func (a *SimpleAuthenticator) snapshot() map[string]string {
	s, _ := a.store.Load().(map[string]string)
	return s
}

func parse(data []byte) (*ini.File, error) {
	if err := checkLeadingSectionHeader(data); err != nil {
		return nil, err
	}
	return ini.LoadSources(loadOptions(), data)
}

// checkLeadingSectionHeader rejects entries written before any section header, which
// ini.v1 would otherwise file under its implicit DEFAULT section.
func checkLeadingSectionHeader(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		if line[0] != '[' {
			return errors.Errorf("line %d: entry before any section header: %q", lineNumber, line)
		}
		return nil
	}
	return scanner.Err()
}

func loadOptions() ini.LoadOptions {
	// section and key names stay case sensitive (ini.v1 default)
	return ini.LoadOptions{
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
	}
}
