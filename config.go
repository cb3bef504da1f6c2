package session

import "time"

// Default external interface values. The cookie is the only resource shared
// across trust domains; its name and expiry are part of the contract with
// the edge guard.
const (
	DefaultCookieName     = "auth-token"
	DefaultCookieDuration = 7 * 24 * time.Hour
	DefaultLoginPath      = "/login"
	DefaultProfilePath    = "/profile"
	DefaultReturnToParam  = "from"
)

var (
	defaultProtectedPrefixes = []string{"/profile", "/admin", "/dashboard"}
	defaultAuthOnlyPrefixes  = []string{"/login", "/register"}
)

// SimpleConfig is a plain struct implementation of Config.
type SimpleConfig struct {
	CookieName        string
	CookieDuration    time.Duration
	ProtectedPrefixes []string
	AuthOnlyPrefixes  []string
	LoginPath         string
	ProfilePath       string
	ReturnToParam     string
}

var _ Config = &SimpleConfig{}

// DefaultConfig returns a SimpleConfig populated with the platform defaults.
func DefaultConfig() *SimpleConfig {
	return &SimpleConfig{
		CookieName:        DefaultCookieName,
		CookieDuration:    DefaultCookieDuration,
		ProtectedPrefixes: append([]string{}, defaultProtectedPrefixes...),
		AuthOnlyPrefixes:  append([]string{}, defaultAuthOnlyPrefixes...),
		LoginPath:         DefaultLoginPath,
		ProfilePath:       DefaultProfilePath,
		ReturnToParam:     DefaultReturnToParam,
	}
}

func (c *SimpleConfig) GetCookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

func (c *SimpleConfig) GetCookieDuration() time.Duration {
	if c.CookieDuration <= 0 {
		return DefaultCookieDuration
	}
	return c.CookieDuration
}

func (c *SimpleConfig) GetProtectedPrefixes() []string {
	if len(c.ProtectedPrefixes) == 0 {
		return defaultProtectedPrefixes
	}
	return c.ProtectedPrefixes
}

func (c *SimpleConfig) GetAuthOnlyPrefixes() []string {
	if len(c.AuthOnlyPrefixes) == 0 {
		return defaultAuthOnlyPrefixes
	}
	return c.AuthOnlyPrefixes
}

func (c *SimpleConfig) GetLoginPath() string {
	if c.LoginPath == "" {
		return DefaultLoginPath
	}
	return c.LoginPath
}

func (c *SimpleConfig) GetProfilePath() string {
	if c.ProfilePath == "" {
		return DefaultProfilePath
	}
	return c.ProfilePath
}

func (c *SimpleConfig) GetReturnToParam() string {
	if c.ReturnToParam == "" {
		return DefaultReturnToParam
	}
	return c.ReturnToParam
}
