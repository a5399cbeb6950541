package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by engine, route and status.",
	}, []string{"engine", "route", "method", "status"})

	reqSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by engine and route.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"engine", "route", "method"})

	inFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	}, []string{"engine"})
)

// Metrics 以路由模板为标签，未匹配的路由统一记为 unmatched
func Metrics(engine string) gin.HandlerFunc {
	g := inFlight.WithLabelValues(engine)
	return func(c *gin.Context) {
		g.Inc()
		start := time.Now()
		defer func() {
			g.Dec()
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			reqSeconds.WithLabelValues(engine, route, c.Request.Method).Observe(time.Since(start).Seconds())
			reqTotal.WithLabelValues(engine, route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		}()
		c.Next()
	}
}
