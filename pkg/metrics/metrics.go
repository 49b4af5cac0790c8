package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cidfeed/pkg/model"
)

var (
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cidfeed",
		Name:      "commands_total",
		Help:      "Total command invocations by result",
	}, []string{"command", "result"})

	NodeOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cidfeed",
		Subsystem: "node",
		Name:      "online",
		Help:      "Whether the private node is online (1=online, 0=offline)",
	})

	NodePeerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cidfeed",
		Subsystem: "node",
		Name:      "peer_count",
		Help:      "Simulated peer count of the private node",
	})
)

// ObserveNode mirrors a node snapshot into the node gauges.
func ObserveNode(s model.NodeStatus) {
	if s.Online {
		NodeOnline.Set(1)
	} else {
		NodeOnline.Set(0)
	}
	NodePeerCount.Set(float64(s.PeerCount))
}

// ObserveCommand counts one invocation.
func ObserveCommand(command string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CommandsTotal.WithLabelValues(command, result).Inc()
}
