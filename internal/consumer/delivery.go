package consumer

// RoutingInfo describes where a delivery came from.
type RoutingInfo struct {
	Exchange    string
	RoutingKey  string
	Redelivered bool
}

// Delivery is one message received from the broker. It is created once by the
// transport adapter and treated as read-only afterwards; the consumer owns it
// until its tag is resolved, then discards it.
type Delivery struct {
	// ConsumerTag identifies the broker-level registration that produced
	// this delivery.
	ConsumerTag string

	// DeliveryTag is the broker-assigned identifier used to ack or reject
	// this specific delivery. Tags are scoped to a connection handle.
	DeliveryTag uint64

	Routing  RoutingInfo
	Metadata map[string]string
	Body     []byte
}
