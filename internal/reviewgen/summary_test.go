package reviewgen

import (
	"testing"

	"github.com/spacesedan/reviewseed/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFallbackTag(t *testing.T) {
	assert.Equal(t, "[RATE_LIMIT]", FallbackTag(KindRateLimited))
	assert.Equal(t, "[API_ERROR]", FallbackTag(KindAPI))
	assert.Equal(t, "[ERROR: VALIDATION_ERROR]", FallbackTag(KindValidation))
	assert.Equal(t, "[ERROR: AUTHENTICATION]", FallbackTag(KindAuth))
	assert.Equal(t, "[ERROR: UNKNOWN]", FallbackTag(KindUnknown))
}

func TestProvenanceOf(t *testing.T) {
	assert.Equal(t, ProvenanceModel, ProvenanceOf("Sản phẩm tốt"))
	assert.Equal(t, ProvenanceFallback, ProvenanceOf("Sản phẩm tốt [Fallback]"))
	assert.Equal(t, ProvenanceFallback, ProvenanceOf("Sản phẩm tốt [RATE_LIMIT]"))
	assert.Equal(t, ProvenanceFallback, ProvenanceOf("Sản phẩm tốt [API_ERROR]"))
	assert.Equal(t, ProvenanceError, ProvenanceOf("Sản phẩm tốt [ERROR: PARSING_ERROR]"))
}

func TestQualitativeStatus(t *testing.T) {
	assert.Equal(t, StatusExcellent, QualitativeStatus(100))
	assert.Equal(t, StatusExcellent, QualitativeStatus(80))
	assert.Equal(t, StatusGood, QualitativeStatus(79))
	assert.Equal(t, StatusGood, QualitativeStatus(60))
	assert.Equal(t, StatusDegraded, QualitativeStatus(40))
	assert.Equal(t, StatusPoor, QualitativeStatus(39))
	assert.Equal(t, StatusPoor, QualitativeStatus(0))
}

func TestSummarize(t *testing.T) {
	produced := []models.ReviewRecord{
		{Title: "Ổn"},
		{Title: "Tốt"},
		{Title: "Khá hài lòng [RATE_LIMIT]"},
		{Title: "Bình thường [Fallback]"},
		{Title: "Có vấn đề [ERROR: VALIDATION_ERROR]"},
		{Title: "Rất tốt"},
	}

	s := Summarize(6, produced)
	assert.Equal(t, models.RunSummary{
		Requested:          6,
		Generated:          6,
		ModelGenerated:     3,
		FallbackCount:      2,
		ErrorTaggedCount:   1,
		SuccessRatePercent: 50,
		QualitativeStatus:  StatusDegraded,
	}, s)
	assert.Equal(t, "Generated 6/6 Vietnamese reviews: 3 AI-generated, 2 fallback, 1 errors (50% success rate)",
		summaryMessage(s))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(3, nil)
	assert.Equal(t, 0, s.Generated)
	assert.Equal(t, 0, s.SuccessRatePercent)
	assert.Equal(t, StatusPoor, s.QualitativeStatus)
}
