package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

func SerializeToJSON(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("[KafkaUtils] failed to serialize %T: %w", value, err)
	}
	return data, nil
}

// DeserializeFromJSON rejects empty payloads and unknown fields.
func DeserializeFromJSON(data []byte, v any) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return errors.New("[KafkaUtils] empty message payload")
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("[KafkaUtils] failed to deserialize into %T: %w", v, err)
	}
	return nil
}

func HandleConsumerError(err error) {
	if err == nil {
		return
	}
	slog.Error("[KafkaUtils] Kafka Consumer Error",
		slog.String("error", err.Error()))
}
