package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "knowx_messages_sent_total",
			Help: "Total number of messages accepted by the submission gate",
		},
	)

	messagesMarkedRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "knowx_messages_marked_read_total",
			Help: "Total number of messages flipped from unread to read",
		},
	)

	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowx_store_errors_total",
			Help: "Total number of failed message store calls",
		},
		[]string{"op"},
	)
)
