package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skladd_operations_total",
	Help: "Операции ядра по имени и исходу.",
}, []string{"op", "status"})

func observe(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	opsTotal.WithLabelValues(op, status).Inc()
}
