package kafka

// Kafka topics
const (
	TopicProductEvents = "product-events"
)

// Message headers
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)
