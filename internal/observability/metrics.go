// Package observability provides domain metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notice delivery outcomes.
const (
	NoticeDelivered = "delivered"
	NoticeFailed    = "failed"
	NoticeSkipped   = "skipped"
)

var (
	// QuestionsCreated counts questions persisted.
	QuestionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackit_questions_created_total",
		Help: "Total number of questions created",
	})

	// AnswersCreated counts answers persisted.
	AnswersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackit_answers_created_total",
		Help: "Total number of answers created",
	})

	// VotesTotal counts applied votes by direction.
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_votes_total",
		Help: "Total number of votes applied to answers",
	}, []string{"direction"})

	// AnswersAccepted counts approve operations that committed.
	AnswersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackit_answers_accepted_total",
		Help: "Total number of answers marked as accepted",
	})

	// LikesTotal counts question likes.
	LikesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stackit_likes_total",
		Help: "Total number of question likes",
	})

	// NoticesTotal counts notice fan-out attempts by kind and result.
	NoticesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_notices_total",
		Help: "Total number of notices by kind and delivery result",
	}, []string{"kind", "result"})

	// WebSocketConnectionsTotal is the gauge of registered hub clients.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stackit_websocket_connections_total",
		Help: "Total number of active WebSocket connections registered with the hub",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
