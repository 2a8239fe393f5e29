package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
	"github.com/SlpAus/quiz-share-backend/internal/user"
)

// HealthReporter exposes the store health state.
type HealthReporter interface {
	Healthy() bool
	StateName() string
}

// SetupRoutes mounts router under /api and the health probe at /healthz.
// Every path below /api goes through the route table, so unknown paths get
// the same NotImplemented envelope as in-process calls.
func SetupRoutes(engine *gin.Engine, router *Router, health HealthReporter) {
	engine.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		if !health.Healthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": health.StateName()})
	})

	apiGroup := engine.Group("/api", user.LoadTokenMiddleware())
	apiGroup.Any("/*path", dispatchHandler(router))
}

func dispatchHandler(router *Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, newFailure(apperr.Validation, "Invalid fields"))
			return
		}

		path := c.Param("path")
		if c.Request.URL.RawQuery != "" {
			path += "?" + c.Request.URL.RawQuery
		}

		resp, err := router.Dispatch(c.Request.Context(), Request{
			Method: c.Request.Method,
			Path:   path,
			Body:   body,
			Token:  c.GetString(user.TokenKey),
		})
		if err != nil {
			var f *Failure
			if !errors.As(err, &f) {
				f = toFailure(err)
			}
			c.JSON(f.Status(), f)
			return
		}
		c.JSON(resp.Status, resp)
	}
}
