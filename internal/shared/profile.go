package shared

import (
	"fmt"
	"strings"
)

// DefaultSecretKey is used when SECRET_KEY is not set.
const DefaultSecretKey = "this-really-needs-to-be-changed"

// Settings profile names, selected with the APP_SETTINGS environment variable.
const (
	ProfileProduction  = "production"
	ProfileStaging     = "staging"
	ProfileDevelopment = "development"
	ProfileTesting     = "testing"
)

// Profile is the environment-specific settings bundle.
type Profile struct {
	Name        string
	Debug       bool
	Testing     bool
	CSRFEnabled bool
	SecretKey   string
	DatabaseURL string // empty in the testing profile
}

// LoadProfile resolves the named profile, reading DATABASE_URL and SECRET_KEY through getenv.
//
// Names are case-insensitive and may be given in dotted class form ("config.StagingConfig").
// An empty name selects the development profile.
func LoadProfile(name string, getenv func(string) string) (*Profile, error) {
	p := &Profile{
		Name:        normalizeProfileName(name),
		CSRFEnabled: true,
		SecretKey:   DefaultSecretKey,
	}
	if key := getenv("SECRET_KEY"); key != "" {
		p.SecretKey = key
	}

	switch p.Name {
	case ProfileProduction:
		p.Debug = false
	case ProfileStaging, ProfileDevelopment:
		p.Debug = true
	case ProfileTesting:
		p.Testing = true
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}

	p.DatabaseURL = getenv("DATABASE_URL")
	if p.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: required by the %s profile", ErrMissingDatabaseURL, p.Name)
	}
	if _, err := DatabaseDSN(p.DatabaseURL); err != nil {
		return nil, err
	}
	return p, nil
}

// UsesDefaultSecret reports whether the secret key was never overridden.
func (p *Profile) UsesDefaultSecret() bool {
	return p.SecretKey == DefaultSecretKey
}

func normalizeProfileName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "Config")
	name = strings.ToLower(name)
	if name == "" {
		return ProfileDevelopment
	}
	return name
}

// DatabaseDSN converts a DATABASE_URL into a go-sqlite3 data source name.
//
// The sqlite:// and sqlite3:// schemes are stripped and file: URIs and plain paths pass through.
// Any other scheme (postgres://, mysql://) is rejected with [ErrInvalidConfig].
func DatabaseDSN(url string) (string, error) {
	for _, scheme := range []string{"sqlite3://", "sqlite://"} {
		if strings.HasPrefix(url, scheme) {
			return strings.TrimPrefix(url, scheme), nil
		}
	}
	if strings.HasPrefix(url, "file:") || !strings.Contains(url, "://") {
		return url, nil
	}
	scheme, _, _ := strings.Cut(url, "://")
	return "", fmt.Errorf("%w: DATABASE_URL scheme %q is not supported, only sqlite databases are", ErrInvalidConfig, scheme)
}
