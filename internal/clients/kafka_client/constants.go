package kafka_client

import "time"

const (
	KAFKA_TOPIC_GENERATION_REQUEST = "review-generation-request" // requests to seed reviews for a product
	KAFKA_TOPIC_GENERATION_RESULTS = "review-generation-results" // finished batch results, consumed by the catalog service
)

const (
	MAX_RETRIES       = 5
	RETRY_DELAY       = 2 * time.Second
	POLL_TIMEOUT      = time.Second
	FLUSH_TIMEOUT_MS  = 5000
	DELIVERY_DEADLINE = 10 * time.Second
)
