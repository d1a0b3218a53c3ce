package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Token lifetime for admin sessions. The cookie max-age mirrors this.
const SessionTTL = 48 * time.Hour

// Principal is one of the fixed admin accounts. Each maps 1:1 to a
// password supplied through the environment at deploy time.
type Principal struct {
	AccessName  string
	DisplayName string
	Password    string
}

// App holds everything loaded at startup. It is built once in main and
// injected into consumers; nothing reads the environment after this.
type App struct {
	SessionSecret string
	SessionTTL    time.Duration
	Principals    map[string]Principal
}

// Principal looks up an admin account by access name.
func (a *App) Principal(accessName string) (Principal, bool) {
	p, ok := a.Principals[accessName]
	return p, ok
}

// FromEnv builds the application configuration. A missing SESSION_SECRET
// is a hard error: the server must never issue unsigned tokens.
func FromEnv() (*App, error) {
	secret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if secret == "" {
		return nil, errors.New("SESSION_SECRET is not set; refusing to start without a signing secret")
	}

	accounts := map[string]string{
		"znd": "Znd",
		"sel": "Sel",
	}

	principals := make(map[string]Principal, len(accounts))
	for name, display := range accounts {
		password := strings.TrimSpace(os.Getenv(strings.ToUpper(name) + "_PASSWORD"))
		if password == "" {
			return nil, fmt.Errorf("no password configured for access name %q (set %s_PASSWORD)", name, strings.ToUpper(name))
		}
		principals[name] = Principal{
			AccessName:  name,
			DisplayName: display,
			Password:    password,
		}
	}

	return &App{
		SessionSecret: secret,
		SessionTTL:    SessionTTL,
		Principals:    principals,
	}, nil
}
