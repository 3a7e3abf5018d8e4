package reviewgen

import (
	"fmt"
	"strings"

	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/spacesedan/reviewseed/internal/models"
)

const (
	generationTemperature = 0.7
	generationTopP        = 0.95
	generationMaxTokens   = 1024
)

var reviewSchema = clients.ResponseSchema{
	Name:        "product_review",
	Description: "Một đánh giá sản phẩm của khách hàng Việt Nam",
	Fields: []clients.SchemaField{
		{Name: "customerName", Type: "string", Description: "Tên khách hàng Việt Nam tự nhiên"},
		{Name: "rating", Type: "number", Description: "Số sao đánh giá (1-5)"},
		{Name: "title", Type: "string", Description: "Tiêu đề ngắn gọn cho đánh giá (5-15 từ)"},
		{Name: "content", Type: "string", Description: "Nội dung đánh giá chi tiết bằng tiếng Việt"},
		{Name: "isVerified", Type: "boolean", Description: "Trạng thái xác minh khách hàng"},
		{Name: "helpfulCount", Type: "number", Description: "Số lượt đánh giá hữu ích (0-15)"},
	},
}

const styleGuideline = `Bạn là chuyên gia tạo đánh giá sản phẩm thực tế cho thị trường Việt Nam.

NHIỆM VỤ: Tạo đánh giá tự nhiên, đa dạng style như người thật.

PHÂN BỐ STYLE (tự động thay đổi giữa các lần tạo):
- 70% đánh giá ngắn gọn, bình thường: "Sản phẩm tốt", "Giao hàng nhanh", "Ổn"
- 20% đánh giá có ngữ cảnh: nhắc tới 1-2 đặc điểm cụ thể của sản phẩm một cách tự nhiên
- 10% đánh giá cực ngắn: "Tốt", "Ok", "👍", "Ổn áp"`

const toneGuideline = `GIỌNG VĂN NGƯỜI VIỆT:
- Ngôn ngữ đời thường, không trang trọng
- Dùng xen kẽ các từ "ổn", "tạm", "khá", "tốt", "ok"
- Thỉnh thoảng có lỗi gõ nhẹ như người thật
- Đôi khi dùng emoji (👍, 😊, ❤️)`

var ratingGuidelines = map[int]string{
	5: "5 sao: tích cực nhưng không khen quá lời",
	4: "4 sao: hài lòng, đôi khi nhắc tới điểm cần cải thiện",
	3: "3 sao: trung lập, kiểu \"tạm được\", \"bình thường\"",
	2: "2 sao: thất vọng nhưng không gay gắt",
	1: "1 sao: thất vọng nhưng không cực đoan",
}

// buildPrompt assembles the instruction for a single review at the target rating.
func buildPrompt(product models.Product, target int, hint string) string {
	var sb strings.Builder
	sb.WriteString(styleGuideline)
	sb.WriteString("\n\n")
	sb.WriteString(toneGuideline)
	sb.WriteString("\n\nTHEO SỐ SAO:\n- ")
	if g, ok := ratingGuidelines[target]; ok {
		sb.WriteString(g)
	} else {
		sb.WriteString(ratingGuidelines[3])
	}

	sb.WriteString("\n\nTHÔNG TIN SẢN PHẨM:\n")
	fmt.Fprintf(&sb, "- Tên: %s\n", product.Name)
	fmt.Fprintf(&sb, "- Mô tả: %s\n", product.PromptDescription())
	fmt.Fprintf(&sb, "- Số sao mục tiêu: %d/5 sao\n", target)

	if hint = strings.TrimSpace(hint); hint != "" {
		fmt.Fprintf(&sb, "\nGHI CHÚ: %s\n", hint)
	}

	fmt.Fprintf(&sb, "\nTạo 1 đánh giá %d sao theo hướng dẫn trên, tự nhiên như người Việt thật. Chỉ trả về JSON.", target)
	return sb.String()
}

func newCompletionRequest(product models.Product, target int, hint string) clients.CompletionRequest {
	return clients.CompletionRequest{
		Prompt:      buildPrompt(product, target, hint),
		Schema:      reviewSchema,
		Temperature: generationTemperature,
		TopP:        generationTopP,
		MaxTokens:   generationMaxTokens,
	}
}
