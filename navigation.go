package goAuthClient

import (
	"github.com/MrEthical07/goAuthClient/guard"
)

// Decide evaluates q against the current session with the configured landing paths.
func (c *Client) Decide(q guard.Query) guard.Decision {
	return guard.Decide(c.Session(), q, c.config.Landing)
}

// Landing returns the configured landing paths.
func (c *Client) Landing() guard.Landing {
	return c.config.Landing
}

// LandingPath returns the viewer's home area, or the login path when not authenticated.
func (c *Client) LandingPath() string {
	s := c.Session()
	if s.Status != StatusAuthenticated || s.User == nil {
		return c.config.Landing.Login
	}
	return c.config.Landing.PathFor(s.User.Role)
}

// PostLoginTarget is where to navigate after login: the captured origin when it is a safe local
// path, otherwise the viewer's landing. Not authenticated yields the login path.
func (c *Client) PostLoginTarget(origin string) string {
	s := c.Session()
	if s.Status != StatusAuthenticated || s.User == nil {
		return c.config.Landing.Login
	}
	if safe := guard.SafeOrigin(origin, c.config.Landing.Login); safe != "" {
		return safe
	}
	return c.config.Landing.PathFor(s.User.Role)
}
