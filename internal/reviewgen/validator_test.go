package reviewgen

import (
	"strings"
	"testing"

	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidReview(t *testing.T) {
	v := NewResponseValidator(stubRand{})

	rec, cerr := v.Validate(validReview(), 2)
	require.Nil(t, cerr)
	assert.Equal(t, "Trần Thị Bình", rec.CustomerName)
	assert.Equal(t, 2, rec.Rating, "rating must follow the target, not the provider")
	assert.Equal(t, "Dùng ổn", rec.Title)
	assert.True(t, rec.IsVerified)
	assert.Equal(t, 3, rec.HelpfulCount)
}

func TestValidate_FencedJSON(t *testing.T) {
	v := NewResponseValidator(stubRand{})
	body := reviewJSON(map[string]any{"customerName": "An", "title": "Ổn", "content": "Tạm được"})

	for _, text := range []string{
		"```json\n" + body + "\n```",
		"Here you go:\n\n```json\n" + body + "\n```\n",
		"```json\n" + body,
	} {
		rec, cerr := v.Validate(okResponse(text), 3)
		require.Nil(t, cerr, text)
		assert.Equal(t, "Tạm được", rec.Content)
	}
}

func TestValidate_Failures(t *testing.T) {
	v := NewResponseValidator(stubRand{})

	tests := []struct {
		name string
		resp *clients.CompletionResponse
		kind ErrorKind
	}{
		{"nil response", nil, KindAPI},
		{"no candidate", &clients.CompletionResponse{}, KindAPI},
		{"empty text", okResponse("   "), KindAPI},
		{"safety block", &clients.CompletionResponse{HasCandidate: true, FinishReason: clients.FinishSafety, Text: "{}"}, KindValidation},
		{"not json", okResponse("Sản phẩm tốt lắm"), KindParsing},
		{"array", okResponse(`[{"title":"x"}]`), KindValidation},
		{"missing content", okResponse(`{"customerName":"An","title":"Tốt"}`), KindValidation},
		{"wrong type", okResponse(`{"customerName":"An","title":5,"content":"ok"}`), KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cerr := v.Validate(tt.resp, 4)
			require.NotNil(t, cerr)
			assert.Equal(t, tt.kind, cerr.Kind)
		})
	}
}

func TestValidate_TruncatedFinishStillParses(t *testing.T) {
	v := NewResponseValidator(stubRand{})
	resp := validReview()
	resp.FinishReason = clients.FinishLength

	_, cerr := v.Validate(resp, 5)
	assert.Nil(t, cerr)
}

func TestValidate_Sanitizes(t *testing.T) {
	v := NewResponseValidator(stubRand{f: 0.9})
	long := strings.Repeat("ờ", 1200)

	rec, cerr := v.Validate(okResponse(reviewJSON(map[string]any{
		"customerName": "  ",
		"title":        "Tuyệt vời [Fallback]",
		"content":      long,
		"helpfulCount": 99,
	})), 5)
	require.Nil(t, cerr)

	assert.Equal(t, customerNames[0], rec.CustomerName)
	assert.Equal(t, "Tuyệt vời", rec.Title)
	assert.Equal(t, ProvenanceModel, ProvenanceOf(rec.Title))
	assert.Equal(t, maxContentLength+len([]rune(truncationMarker)), len([]rune(rec.Content)))
	assert.True(t, strings.HasSuffix(rec.Content, truncationMarker))
	assert.Equal(t, 15, rec.HelpfulCount)
	assert.True(t, rec.IsVerified)
}

func TestValidate_NegativeHelpfulCount(t *testing.T) {
	v := NewResponseValidator(stubRand{})
	rec, cerr := v.Validate(okResponse(reviewJSON(map[string]any{
		"customerName": "An",
		"title":        "Tệ",
		"content":      "Không như mô tả",
		"helpfulCount": -4,
	})), 1)
	require.Nil(t, cerr)
	assert.Equal(t, 0, rec.HelpfulCount)
}

func TestValidate_StripsImpersonatedMarkers(t *testing.T) {
	v := NewResponseValidator(stubRand{})

	tests := map[string]string{
		"Hay lắm [ERROR: không":         "Hay lắm",
		"Hay lắm [ERROR: PARSING_ERROR]": "Hay lắm",
		"Tốt [RATE_LIMIT] thật":         "Tốt thật",
		"[ERR[Fallback]OR: x] Ổn":       "Ổn",
		"Giao [API_ERROR]nhanh":         "Giaonhanh",
	}

	for title, want := range tests {
		rec, cerr := v.Validate(okResponse(reviewJSON(map[string]any{
			"customerName": "An",
			"title":        title,
			"content":      "Dùng tốt",
		})), 4)
		require.Nil(t, cerr, title)
		assert.Equal(t, want, rec.Title, title)
		assert.Equal(t, ProvenanceModel, ProvenanceOf(rec.Title), title)
	}
}
