package reviewgen

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spacesedan/reviewseed/internal/models"
)

const (
	FallbackMarker    = "[Fallback]"
	errorMarkerPrefix = "[ERROR:"

	StatusExcellent = "excellent"
	StatusGood      = "good"
	StatusDegraded  = "degraded"
	StatusPoor      = "poor"
)

// An [ERROR: marker with no closing bracket runs to the end of the title.
var provenanceMarkers = regexp.MustCompile(`\s*\[(?:Fallback\]|RATE_LIMIT\]|API_ERROR\]|ERROR:[^\]]*(?:\]|$))`)

type Provenance int

const (
	ProvenanceModel Provenance = iota
	ProvenanceFallback
	ProvenanceError
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceFallback:
		return "fallback"
	case ProvenanceError:
		return "error"
	default:
		return "model"
	}
}

// FallbackTag is the title marker for a unit that failed with kind. Transient provider failures read as plain
// fallbacks, everything else is flagged as an error.
func FallbackTag(kind ErrorKind) string {
	if kind.Retryable() {
		return "[" + kind.String() + "]"
	}
	return fmt.Sprintf("%s %s]", errorMarkerPrefix, kind)
}

func ProvenanceOf(title string) Provenance {
	switch {
	case strings.Contains(title, errorMarkerPrefix):
		return ProvenanceError
	case strings.Contains(title, FallbackMarker),
		strings.Contains(title, FallbackTag(KindRateLimited)),
		strings.Contains(title, FallbackTag(KindAPI)):
		return ProvenanceFallback
	default:
		return ProvenanceModel
	}
}

// stripProvenanceMarkers keeps model output from impersonating a fallback record.
// Removal repeats until nothing changes, so markers split by another marker cannot reassemble.
func stripProvenanceMarkers(title string) string {
	for {
		next := provenanceMarkers.ReplaceAllString(title, "")
		if next == title {
			return strings.TrimSpace(next)
		}
		title = next
	}
}

func QualitativeStatus(successRate int) string {
	switch {
	case successRate >= 80:
		return StatusExcellent
	case successRate >= 60:
		return StatusGood
	case successRate >= 40:
		return StatusDegraded
	default:
		return StatusPoor
	}
}

func Summarize(requested int, produced []models.ReviewRecord) models.RunSummary {
	s := models.RunSummary{
		Requested: requested,
		Generated: len(produced),
	}
	for _, r := range produced {
		switch ProvenanceOf(r.Title) {
		case ProvenanceError:
			s.ErrorTaggedCount++
		case ProvenanceFallback:
			s.FallbackCount++
		default:
			s.ModelGenerated++
		}
	}
	if requested > 0 {
		s.SuccessRatePercent = int(math.Round(float64(s.ModelGenerated) / float64(requested) * 100))
	}
	s.QualitativeStatus = QualitativeStatus(s.SuccessRatePercent)
	return s
}

func summaryMessage(s models.RunSummary) string {
	return fmt.Sprintf("Generated %d/%d Vietnamese reviews: %d AI-generated, %d fallback, %d errors (%d%% success rate)",
		s.Generated, s.Requested, s.ModelGenerated, s.FallbackCount, s.ErrorTaggedCount, s.SuccessRatePercent)
}
