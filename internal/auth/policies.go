package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"

	"github.com/magma-studio/atelier/internal/logger"
)

// SeedDefaultPolicies ensures that the application has a baseline set of
// authorization rules. It checks if each default policy exists before
// adding it, making the operation idempotent and safe to run on every
// application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	// Anonymous visitors can browse the public site and reach the login
	// form. Authors manage the blog; editors additionally manage projects,
	// testimonials and content fields; admins additionally manage settings,
	// categories and the reset operation. Each role inherits the previous.
	policies := [][]string{
		{"anonymous", "/", "GET"},
		{"anonymous", "/blog", "GET"},
		{"anonymous", "/blog/*", "GET"},
		{"anonymous", "/portfolio", "GET"},
		{"anonymous", "/work/*", "GET"},
		{"anonymous", "/nav", "GET"},
		{"anonymous", "/contact", "POST"},
		{"anonymous", "/sitemap.xml", "GET"},
		{"anonymous", "/robots.txt", "GET"},
		{"anonymous", "/static/*", "GET"},
		{"anonymous", "/admin/login", "GET"},
		{"anonymous", "/admin/login", "POST"},
		{"anonymous", "/auth/login", "GET"},
		{"anonymous", "/auth/callback", "GET"},

		{"author", "/admin", "GET"},
		{"author", "/admin/logout", "POST"},
		{"author", "/admin/posts", "POST"},
		{"author", "/admin/posts/*", "POST"},

		{"editor", "/admin/projects", "POST"},
		{"editor", "/admin/projects/*", "POST"},
		{"editor", "/admin/testimonials", "POST"},
		{"editor", "/admin/testimonials/*", "POST"},
		{"editor", "/admin/content/*", "POST"},

		{"admin", "/admin/categories", "POST"},
		{"admin", "/admin/categories/*", "POST"},
		{"admin", "/admin/settings/*", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	roles := [][2]string{
		{"author", "anonymous"},
		{"editor", "author"},
		{"admin", "editor"},
	}
	for _, r := range roles {
		if has, _ := e.HasRoleForUser(r[0], r[1]); !has {
			if _, err := e.AddRoleForUser(r[0], r[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role %q -> %q", r[0], r[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
