package reviewgen

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/spacesedan/reviewseed/internal/models"
)

const (
	maxTitleLength   = 100
	maxContentLength = 1000
	maxHelpfulCount  = 15
	truncationMarker = "..."

	fallbackTitle   = "Đánh giá sản phẩm"
	fallbackContent = "Sản phẩm ổn, đáng giá tiền."
)

var fenceMarkers = regexp.MustCompile("```json\\n?|```\\n?")

var requiredFields = []string{"customerName", "title", "content"}

// ResponseValidator turns a raw completion into a ReviewRecord or a ClassifiedError.
type ResponseValidator struct {
	rand Rand
}

func NewResponseValidator(r Rand) *ResponseValidator {
	return &ResponseValidator{rand: r}
}

func (v *ResponseValidator) Validate(resp *clients.CompletionResponse, target int) (models.ReviewRecord, *ClassifiedError) {
	if resp == nil || !resp.HasCandidate {
		return models.ReviewRecord{}, newError(KindAPI, "no candidates returned from provider", nil)
	}

	if !resp.FinishReason.Normal() {
		slog.Warn("[ResponseValidator] Generation finished with abnormal reason",
			slog.String("finish_reason", resp.FinishReason.String()),
			slog.String("raw_finish_reason", resp.RawFinishReason))
		if resp.FinishReason == clients.FinishSafety {
			return models.ReviewRecord{}, newError(KindValidation, "content blocked by safety filters", nil)
		}
	}

	raw := strings.TrimSpace(resp.Text)
	if raw == "" {
		return models.ReviewRecord{}, newError(KindAPI, "no text content in response", nil)
	}

	cleaned := stripCodeFence(raw)
	var payload any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		slog.Error("[ResponseValidator] Failed to unmarshal generated review",
			slog.String("error", err.Error()),
			slog.String("raw_response", preview(raw)))
		return models.ReviewRecord{}, newError(KindParsing, fmt.Sprintf("invalid JSON format: %s", err), err)
	}

	review, ok := payload.(map[string]any)
	if !ok {
		return models.ReviewRecord{}, newError(KindValidation, "review is not a valid object", nil)
	}

	var missing []string
	for _, field := range requiredFields {
		if s, ok := review[field].(string); !ok || s == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return models.ReviewRecord{}, newError(KindValidation,
			fmt.Sprintf("missing or invalid fields: %s", strings.Join(missing, ", ")), nil)
	}

	return v.sanitize(review, target), nil
}

func (v *ResponseValidator) sanitize(review map[string]any, target int) models.ReviewRecord {
	name := strings.TrimSpace(review["customerName"].(string))
	if name == "" {
		name = randomName(v.rand)
	}

	isVerified, ok := review["isVerified"].(bool)
	if !ok {
		isVerified = randomVerified(v.rand)
	}

	helpful := randomHelpfulCount(v.rand)
	if n, ok := review["helpfulCount"].(float64); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
		helpful = int(math.Max(0, math.Min(maxHelpfulCount, math.Floor(n))))
	}

	return models.ReviewRecord{
		CustomerName: name,
		// always the assigned target, never the provider's value
		Rating:       target,
		Title:        sanitizeText(stripProvenanceMarkers(review["title"].(string)), fallbackTitle, maxTitleLength),
		Content:      sanitizeText(review["content"].(string), fallbackContent, maxContentLength),
		IsVerified:   isVerified,
		HelpfulCount: helpful,
	}
}

func sanitizeText(text, fallback string, maxLength int) string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return fallback
	}
	runes := []rune(cleaned)
	if len(runes) > maxLength {
		return strings.TrimSpace(string(runes[:maxLength])) + truncationMarker
	}
	return cleaned
}

// stripCodeFence unwraps a ```json fenced block. Unterminated fences fall back to dropping the markers.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.Contains(text, "```") {
		return text
	}
	if block, ok := fencedBlock(text); ok {
		return strings.TrimSpace(block)
	}
	return strings.TrimSpace(fenceMarkers.ReplaceAllString(text, ""))
}

func fencedBlock(text string) (string, bool) {
	md := blackfriday.New(blackfriday.WithExtensions(blackfriday.FencedCode))
	root := md.Parse([]byte(text))

	var literal []byte
	found := false
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if entering && node.Type == blackfriday.CodeBlock && node.IsFenced {
			literal = node.Literal
			found = true
			return blackfriday.Terminate
		}
		return blackfriday.GoToNext
	})
	return string(literal), found
}

func preview(raw string) string {
	runes := []rune(raw)
	if len(runes) > 200 {
		return string(runes[:200]) + "..."
	}
	return raw
}
