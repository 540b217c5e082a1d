package fake

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// NewServer exposes g over HTTP with the gateway wire contract. The returned handler can be
// mounted on an http.Server or an httptest.Server.
func NewServer(g *Gateway) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	auth := router.Group("/auth")
	auth.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, failure("email and password are required"))
			return
		}
		resp, err := g.Login(c.Request.Context(), gateway.Credentials{Email: req.Email, Password: req.Password})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, success(resp))
	})

	auth.POST("/logout", func(c *gin.Context) {
		if err := g.Logout(c.Request.Context(), bearer(c)); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope{Status: "success"})
	})

	auth.GET("/me", func(c *gin.Context) {
		user, err := g.GetCurrentUser(c.Request.Context(), bearer(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, success(user))
	})

	auth.POST("/refresh", func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, failure("refreshToken is required"))
			return
		}
		tokens, err := g.RefreshToken(c.Request.Context(), req.RefreshToken)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, success(tokens))
	})

	return router
}

func success(data any) envelope {
	return envelope{Status: "success", Data: data}
}

func failure(message string) envelope {
	return envelope{Status: "error", Message: message}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, failure("invalid email or password"))
	case errors.Is(err, gateway.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, failure("unauthorized"))
	case errors.Is(err, gateway.ErrNetworkFailure):
		c.JSON(http.StatusServiceUnavailable, failure("service unavailable"))
	default:
		c.JSON(http.StatusInternalServerError, failure("internal error"))
	}
}

func bearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
