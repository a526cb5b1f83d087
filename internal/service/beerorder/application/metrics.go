// internal/service/beerorder/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// transitionsTotal 按事件和目标状态统计已提交的状态转换。
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brewery",
		Subsystem: "beerorder",
		Name:      "state_transitions_total",
		Help:      "Committed beer order state transitions by event and target status.",
	}, []string{"event", "status"})

	// invalidTransitionsTotal 统计被转换表拒绝的事件。
	invalidTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brewery",
		Subsystem: "beerorder",
		Name:      "invalid_transitions_total",
		Help:      "Beer order events rejected because no transition matched.",
	}, []string{"event"})

	// pollTimeoutsTotal 统计轮询等待触顶后带着陈旧状态继续的次数。
	pollTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brewery",
		Subsystem: "beerorder",
		Name:      "status_poll_timeouts_total",
		Help:      "Bounded status poll-waits that hit the attempt ceiling.",
	})
)
