package consumer

import (
	jsoncodec "github.com/drblury/ackflow/internal/consumer/jsoncodec"
	loggingpkg "github.com/drblury/ackflow/internal/consumer/logging"
)

// ErrorReporter records one failing delivery. It is fire-and-forget: the
// gateway contains panics and ignores anything the reporter does, so a broken
// reporter can never affect delivery resolution.
type ErrorReporter func(consumerName, message string, cause error, consumerTag string, routing RoutingInfo, metadata map[string]string, body []byte)

// bodyPreviewLimit caps how much of a failing message body ends up in logs.
const bodyPreviewLimit = 1024

type reportEnvelope struct {
	Exchange    string            `json:"exchange"`
	RoutingKey  string            `json:"routing_key"`
	Redelivered bool              `json:"redelivered"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Body        string            `json:"body"`
	BodyBytes   int               `json:"body_bytes"`
}

// LoggingErrorReporter returns the default ErrorReporter: it logs the failure
// together with a JSON rendering of the delivery envelope.
func LoggingErrorReporter(log loggingpkg.ServiceLogger) ErrorReporter {
	return func(consumerName, message string, cause error, consumerTag string, routing RoutingInfo, metadata map[string]string, body []byte) {
		preview := body
		if len(preview) > bodyPreviewLimit {
			preview = preview[:bodyPreviewLimit]
		}

		envelope, err := jsoncodec.Marshal(reportEnvelope{
			Exchange:    routing.Exchange,
			RoutingKey:  routing.RoutingKey,
			Redelivered: routing.Redelivered,
			Metadata:    metadata,
			Body:        string(preview),
			BodyBytes:   len(body),
		})
		if err != nil {
			envelope = []byte(`{"error":"failed to render envelope"}`)
		}

		log.Error(message, cause, loggingpkg.LogFields{
			"consumer":     consumerName,
			"consumer_tag": consumerTag,
			"envelope":     string(envelope),
		})
	}
}
