package session_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMemoryCookieJar(t *testing.T) {
	t.Run("set get remove", func(t *testing.T) {
		jar := session.NewMemoryCookieJar()

		_, ok := jar.Get("auth-token")
		assert.False(t, ok)

		jar.Set("auth-token", "tok-1", time.Hour)
		got, ok := jar.Get("auth-token")
		assert.True(t, ok)
		assert.Equal(t, "tok-1", got)

		jar.Remove("auth-token")
		_, ok = jar.Get("auth-token")
		assert.False(t, ok)
	})

	t.Run("expired cookies are gone", func(t *testing.T) {
		now := time.Now()
		jar := session.NewMemoryCookieJar().WithClock(func() time.Time { return now })

		jar.Set("auth-token", "tok-1", 7*24*time.Hour)

		now = now.Add(6 * 24 * time.Hour)
		_, ok := jar.Get("auth-token")
		assert.True(t, ok)

		now = now.Add(2 * 24 * time.Hour)
		_, ok = jar.Get("auth-token")
		assert.False(t, ok)
	})

	t.Run("overwrite is idempotent", func(t *testing.T) {
		jar := session.NewMemoryCookieJar()
		jar.Set("auth-token", "tok-1", time.Hour)
		jar.Set("auth-token", "tok-1", time.Hour)

		got, ok := jar.Get("auth-token")
		assert.True(t, ok)
		assert.Equal(t, "tok-1", got)
	})
}

func TestContextCookieJar(t *testing.T) {
	t.Run("reads request cookie", func(t *testing.T) {
		ctx := new(MockContext)
		ctx.On("Cookies", "auth-token").Return("tok-1")

		jar := session.NewContextCookieJar(ctx)
		got, ok := jar.Get("auth-token")
		assert.True(t, ok)
		assert.Equal(t, "tok-1", got)
	})

	t.Run("write is visible to later reads in the same request", func(t *testing.T) {
		ctx := new(MockContext)
		ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
			return c.Name == "auth-token" && c.Value == "tok-1" && c.HTTPOnly
		})).Return()

		jar := session.NewContextCookieJar(ctx)
		jar.Set("auth-token", "tok-1", time.Hour)

		got, ok := jar.Get("auth-token")
		assert.True(t, ok)
		assert.Equal(t, "tok-1", got)

		ctx.AssertExpectations(t)
	})

	t.Run("remove masks the request cookie", func(t *testing.T) {
		ctx := new(MockContext)
		ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
			return c.Name == "auth-token" && c.Value == "" && c.Expires.Before(time.Now())
		})).Return()

		jar := session.NewContextCookieJar(ctx)
		jar.Remove("auth-token")

		_, ok := jar.Get("auth-token")
		assert.False(t, ok)

		ctx.AssertExpectations(t)
	})
}
