// Package metrics exposes request and collection metrics to Prometheus.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/penglongli/gin-metrics/ginmetrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Sizer reports the number of stored todos.
type Sizer interface {
	Len() int
}

// RegisterTodoGauge registers a gauge sampling the collection size on scrape.
func RegisterTodoGauge(reg prometheus.Registerer, store Sizer) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "todo_items",
		Help: "Number of todos currently held in memory.",
	}, func() float64 {
		return float64(store.Len())
	}))
}

// Instrument attaches the gin-metrics middleware to app and returns a
// separate router serving the metrics endpoint at path.
func Instrument(app *gin.Engine, path string) *gin.Engine {
	metricRouter := gin.New()

	m := ginmetrics.GetMonitor()
	m.SetMetricPath(path)
	m.SetSlowTime(10)
	// request duration buckets, used for p95/p99
	m.SetDuration([]float64{0.1, 0.3, 1.2, 5, 10})
	m.UseWithoutExposingEndpoint(app)
	m.Expose(metricRouter)

	return metricRouter
}
