package session

import (
	"sync"
	"time"

	"github.com/goliatone/go-router"
)

var _ CookieJar = &MemoryCookieJar{}
var _ CookieJar = &ContextCookieJar{}

type memoryCookie struct {
	value     string
	expiresAt time.Time
}

// MemoryCookieJar is an in-process CookieJar. It backs tests and non-HTTP
// embeddings (desktop shells, CLIs) where no real cookie store exists.
type MemoryCookieJar struct {
	mu      sync.Mutex
	cookies map[string]memoryCookie
	now     func() time.Time
}

// NewMemoryCookieJar returns an empty jar.
func NewMemoryCookieJar() *MemoryCookieJar {
	return &MemoryCookieJar{
		cookies: map[string]memoryCookie{},
		now:     time.Now,
	}
}

// WithClock injects a custom clock (useful for tests).
func (j *MemoryCookieJar) WithClock(clock func() time.Time) *MemoryCookieJar {
	if clock != nil {
		j.now = clock
	}
	return j
}

func (j *MemoryCookieJar) Get(name string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, ok := j.cookies[name]
	if !ok {
		return "", false
	}

	if !c.expiresAt.IsZero() && j.now().After(c.expiresAt) {
		delete(j.cookies, name)
		return "", false
	}

	return c.value, true
}

func (j *MemoryCookieJar) Set(name, value string, maxAge time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c := memoryCookie{value: value}
	if maxAge > 0 {
		c.expiresAt = j.now().Add(maxAge)
	}
	j.cookies[name] = c
}

func (j *MemoryCookieJar) Remove(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.cookies, name)
}

// ContextCookieJar binds the CookieJar capability to a single HTTP
// request/response pair. Reads come from the request cookies, writes go to
// the response, so a value written earlier in the request is visible to
// later reads within the same request.
type ContextCookieJar struct {
	ctx     router.Context
	written map[string]string
	removed map[string]bool
}

// NewContextCookieJar returns a jar scoped to the given router context.
func NewContextCookieJar(ctx router.Context) *ContextCookieJar {
	return &ContextCookieJar{
		ctx:     ctx,
		written: map[string]string{},
		removed: map[string]bool{},
	}
}

func (j *ContextCookieJar) Get(name string) (string, bool) {
	if j.removed[name] {
		return "", false
	}

	if v, ok := j.written[name]; ok {
		return v, true
	}

	v := j.ctx.Cookies(name)
	return v, v != ""
}

func (j *ContextCookieJar) Set(name, value string, maxAge time.Duration) {
	j.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(maxAge),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	j.written[name] = value
	delete(j.removed, name)
}

func (j *ContextCookieJar) Remove(name string) {
	j.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	j.removed[name] = true
	delete(j.written, name)
}
