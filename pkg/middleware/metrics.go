package middleware

import (
	"strconv"
	"time"

	"github.com/beamdrop/beamdrop/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Transport struct {
	MetricsMiddleware *MetricsMiddleware
}

type MetricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger: logger,
	}
}

func (m *MetricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Route pattern, not the raw path, to keep cardinality bounded.
		path := c.Route().Path
		prometheus.RequestTotal.WithLabelValues(
			c.Method(),
			path,
			strconv.Itoa(c.Response().StatusCode()),
		).Inc()
		prometheus.RequestLatency.WithLabelValues(c.Method(), path).
			Observe(float64(time.Since(start).Milliseconds()))

		return err
	}
}
