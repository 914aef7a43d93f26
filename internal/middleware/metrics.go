package middleware

import (
	"strconv"
	"time"

	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Start timer for request duration
		start := time.Now()

		// Process request
		err := next(c)
		if prometheus.HttpRequestsTotal == nil {
			return err
		}

		// Calculate request duration
		duration := time.Since(start).Seconds()

		// Get request details
		method := c.Request().Method
		path := c.Path()
		status := c.Response().Status
		if err != nil {
			// the error handler has not written the response yet
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		statusStr := strconv.Itoa(status)

		// Record metrics
		prometheus.HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		return err
	}
}
