package session

import (
	"github.com/goliatone/go-router"
)

// TemplateUserKey is the view data key the current identity is published
// under.
var TemplateUserKey = "current_user"

// TemplateHelpers returns helper functions for authentication-aware
// templates, meant for a view engine's global data.
//
// In templates:
//
//	{% if current_user %}
//	{% if current_user|has_role:"admin" %}
//	{% if current_user|is_at_least:"user" %}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": templateIsAuthenticated,
		"has_role":         templateHasRole,
		"is_at_least":      templateIsAtLeast,

		"roles": map[string]string{
			"guest": RoleGuest,
			"user":  RoleUser,
			"admin": RoleAdmin,
		},
	}
}

// TemplateHelpersWithUser returns the template helpers with a specific user
// published as current_user.
func TemplateHelpersWithUser(user *User) map[string]any {
	helpers := TemplateHelpers()
	helpers[TemplateUserKey] = user
	return helpers
}

// MergeSessionData layers the session's derived facts onto view data so a
// render call never has to re-derive them from the store. Explicit keys in
// data win over the injected ones.
func MergeSessionData(sync *Synchronizer, data router.ViewContext) router.ViewContext {
	if data == nil {
		data = router.ViewContext{}
	}

	if sync == nil {
		return data
	}

	merged := router.ViewContext{
		TemplateUserKey:    sync.CurrentUser(),
		"is_authenticated": sync.IsAuthenticated(),
		"is_admin":         sync.IsAdmin(),
		"is_guest":         sync.IsGuest(),
	}

	for key, value := range data {
		merged[key] = value
	}

	return merged
}

// templateIsAuthenticated reports whether the value holds an identity.
// Templates may hand us a *User, a value copy, or a JSON-decoded map.
func templateIsAuthenticated(user any) bool {
	switch u := user.(type) {
	case *User:
		return u != nil
	case User:
		return true
	case map[string]any:
		return len(u) > 0
	default:
		return false
	}
}

func templateHasRole(user any, role string) bool {
	r, ok := templateRole(user)
	return ok && r == role
}

func templateIsAtLeast(user any, minRole string) bool {
	r, ok := templateRole(user)
	return ok && RoleIsAtLeast(r, minRole)
}

func templateRole(user any) (UserRole, bool) {
	switch u := user.(type) {
	case *User:
		if u == nil {
			return "", false
		}
		return u.Role, true
	case User:
		return u.Role, true
	case map[string]any:
		if role, ok := u["role"].(string); ok {
			return role, true
		}
		return "", false
	default:
		return "", false
	}
}
