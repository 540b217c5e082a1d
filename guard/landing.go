package guard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goAuthClient/session"
)

// Landing maps each role to its home area.
type Landing struct {
	Student string `env:"STUDENT" envDefault:"/student/dashboard"`
	Advisor string `env:"ADVISOR" envDefault:"/advisor/dashboard"`
	Admin   string `env:"ADMIN" envDefault:"/admin/dashboard"`
	Login   string `env:"LOGIN" envDefault:"/login"`
}

// DefaultLanding returns the standard dashboard layout.
func DefaultLanding() Landing {
	return Landing{
		Student: "/student/dashboard",
		Advisor: "/advisor/dashboard",
		Admin:   "/admin/dashboard",
		Login:   "/login",
	}
}

// PathFor returns the landing path for role. Unrecognised roles get the login path.
func (l Landing) PathFor(role session.Role) string {
	switch role {
	case session.RoleStudent:
		return l.Student
	case session.RoleAdvisor:
		return l.Advisor
	case session.RoleAdmin:
		return l.Admin
	default:
		return l.Login
	}
}

// Validate requires every path to be a distinct local absolute path.
func (l Landing) Validate() error {
	paths := map[string]string{
		"student": l.Student,
		"advisor": l.Advisor,
		"admin":   l.Admin,
		"login":   l.Login,
	}
	seen := make(map[string]string, len(paths))
	for _, name := range []string{"student", "advisor", "admin", "login"} {
		p := paths[name]
		if !isLocalPath(p) {
			return fmt.Errorf("landing %s path %q must be a local absolute path", name, p)
		}
		if other, dup := seen[p]; dup {
			return fmt.Errorf("landing %s path %q duplicates %s", name, p, other)
		}
		seen[p] = name
	}
	if strings.ContainsAny(l.Login, "?#") {
		return errors.New("landing login path must not carry a query or fragment")
	}
	return nil
}
