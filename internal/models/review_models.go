package models

// RatingDistribution holds percentage targets per star bucket. They are expected to sum to ~100.
type RatingDistribution struct {
	Star5 float64 `json:"star5" validate:"gte=0,lte=100"`
	Star4 float64 `json:"star4" validate:"gte=0,lte=100"`
	Star3 float64 `json:"star3" validate:"gte=0,lte=100"`
	Star2 float64 `json:"star2" validate:"gte=0,lte=100"`
	Star1 float64 `json:"star1" validate:"gte=0,lte=100"`
}

// DefaultRatingDistribution mirrors what a healthy storefront listing tends to look like.
var DefaultRatingDistribution = RatingDistribution{
	Star5: 45,
	Star4: 35,
	Star3: 15,
	Star2: 4,
	Star1: 1,
}

type GenerationRequest struct {
	RequestID          string              `json:"request_id,omitempty"`
	ProductID          string              `json:"product_id" validate:"required"`
	Quantity           int                 `json:"quantity" validate:"min=1,max=50"`
	RatingDistribution *RatingDistribution `json:"rating_distribution,omitempty" validate:"omitnil"`
	CustomPrompt       string              `json:"custom_prompt,omitempty"`
}

// ReviewRecord is one generated (or synthesized) review. Rating always equals the target it was produced for.
type ReviewRecord struct {
	CustomerName string `json:"customerName"`
	Rating       int    `json:"rating"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	IsVerified   bool   `json:"isVerified"`
	HelpfulCount int    `json:"helpfulCount"`
}

type RunSummary struct {
	Requested          int    `json:"requested"`
	Generated          int    `json:"generated"`
	ModelGenerated     int    `json:"model_generated"`
	FallbackCount      int    `json:"fallback_count"`
	ErrorTaggedCount   int    `json:"error_tagged_count"`
	SuccessRatePercent int    `json:"success_rate_percent"`
	QualitativeStatus  string `json:"status"`
}

type BatchResult struct {
	RunID            string         `json:"run_id"`
	ProductID        string         `json:"product_id"`
	Requested        int            `json:"requested"`
	Produced         []ReviewRecord `json:"reviews"`
	Summary          RunSummary     `json:"summary"`
	Success          bool           `json:"success"`
	Message          string         `json:"message"`
	HasErrors        bool           `json:"has_errors"`
	IsPartialSuccess bool           `json:"is_partial_success"`
	Cancelled        bool           `json:"cancelled,omitempty"`
}
