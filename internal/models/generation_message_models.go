package models

// GenerationResultMessage is published to the results topic once a request has been handled.
type GenerationResultMessage struct {
	RequestID string       `json:"request_id"`
	ProductID string       `json:"product_id"`
	Result    *BatchResult `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
}
