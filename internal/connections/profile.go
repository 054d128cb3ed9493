package connections

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Profile is a saved database connection. Passwords are stored alongside
// the profile but stripped from every API response.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	Database string    `json:"database"`
	User     string    `json:"user"`
	Password string    `json:"password,omitempty"`
	SSLMode  string    `json:"sslmode"`
	Schema   string    `json:"schema"`
}

// DSN assembles the postgres connection string. Credentials are URL
// escaped; auth negotiation (SCRAM vs MD5) is left to the driver.
func (p Profile) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + p.Database,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	q := url.Values{}
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Redacted returns a copy safe for API responses.
func (p Profile) Redacted() Profile {
	p.Password = ""
	return p
}
