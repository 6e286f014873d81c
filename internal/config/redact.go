package config

import (
	"encoding/json"
	"fmt"

	"github.com/streamdate/sapi/internal/ice"
)

const redactedPlaceholder = "[redacted]"

// Redacted returns a copy of the config safe for logs and the config API:
// the password salt, the MySQL password and TURN credentials are masked.
func (c *Config) Redacted() Config {
	out := *c

	if out.Auth.UserPasswordSalt != "" {
		out.Auth.UserPasswordSalt = redactedPlaceholder
	}
	if out.DB.MySQL.Pass != "" {
		out.DB.MySQL.Pass = redactedPlaceholder
	}

	out.ICE.Servers = make([]string, len(c.ICE.Servers))
	for i, uri := range c.ICE.Servers {
		srv, err := ice.Parse(uri)
		if err != nil {
			// Should not happen after validation; mask the whole entry
			// rather than risk echoing a credential.
			out.ICE.Servers[i] = redactedPlaceholder
			continue
		}
		out.ICE.Servers[i] = srv.URL()
	}

	return out
}

// String implements fmt.Stringer with secrets masked, so a Config can be
// logged without leaking credentials.
func (c *Config) String() string {
	masked := c.Redacted()
	data, err := json.Marshal(masked)
	if err != nil {
		return fmt.Sprintf("%+v", masked)
	}
	return string(data)
}
