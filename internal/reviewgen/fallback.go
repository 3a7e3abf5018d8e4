package reviewgen

import (
	"strings"

	"github.com/spacesedan/reviewseed/internal/models"
)

var customerNames = []string{
	"Nguyễn Thị Hương", "Trần Văn Nam", "Lê Thị Mai", "Phạm Minh Tuấn", "Hoàng Thị Lan",
	"Võ Văn Đức", "Đặng Thị Ngọc", "Bùi Minh Khoa", "Đỗ Thị Hồng", "Ngô Văn Hùng",
	"Lý Thị Thảo", "Vũ Minh Châu", "Đinh Thị Linh", "Chu Văn Sơn", "Mai Thị Yến",
	"Tạ Minh Đức", "Dương Thị Tú", "Lưu Văn Thắng", "Phan Thị Nhung", "Tô Minh Phúc",
	"Cao Thị Bích", "Lâm Văn Hoàng", "Đào Thị Thu", "Trịnh Minh Tâm", "Hồ Thị Liên",
	"Từ Văn Quang", "Kiều Thị Oanh", "Thái Minh Đại", "Ôn Thị Hạnh", "La Văn Khôi",
	"Âu Thị Mỹ", "Quan Minh Hải", "Ưng Thị Phượng", "Ích Văn Long", "Ỷ Thị Xuân",
}

type reviewTemplate struct {
	titles   []string
	contents []string
}

var fallbackTemplates = map[int]reviewTemplate{
	5: {
		titles: []string{"Sản phẩm tuyệt vời [Fallback]", "Rất hài lòng [Fallback]", "Chất lượng tốt [Fallback]"},
		contents: []string{
			"Sản phẩm chất lượng tốt, đáng tiền. Sẽ mua lại lần sau.",
			"Rất hài lòng với sản phẩm này. Giao hàng nhanh, đóng gói cẩn thận.",
			"Chất lượng vượt mong đợi. Giá cả hợp lý, sẽ giới thiệu cho bạn bè.",
		},
	},
	4: {
		titles: []string{"Sản phẩm tốt [Fallback]", "Khá hài lòng [Fallback]", "Đáng mua [Fallback]"},
		contents: []string{
			"Sản phẩm tốt, chỉ có một vài điểm nhỏ cần cải thiện.",
			"Nhìn chung khá hài lòng. Chất lượng ổn, giao hàng đúng hẹn.",
			"Đáng mua, phù hợp với giá tiền. Có thể cân nhắc mua lại.",
		},
	},
	3: {
		titles: []string{"Sản phẩm ổn [Fallback]", "Bình thường [Fallback]", "Có thể dùng được [Fallback]"},
		contents: []string{
			"Sản phẩm bình thường, có thể sử dụng được.",
			"Chất lượng trung bình, giá cả hợp lý.",
			"Ổn, không có gì đặc biệt nhưng cũng không tệ.",
		},
	},
	2: {
		titles: []string{"Chưa hài lòng [Fallback]", "Có vấn đề [Fallback]", "Cần cải thiện [Fallback]"},
		contents: []string{
			"Sản phẩm có một số vấn đề, chưa đáp ứng mong đợi.",
			"Chất lượng chưa tốt, cần cải thiện nhiều.",
			"Không như mô tả, khá thất vọng với sản phẩm này.",
		},
	},
	1: {
		titles: []string{"Rất thất vọng [Fallback]", "Không khuyến khích [Fallback]", "Chất lượng kém [Fallback]"},
		contents: []string{
			"Rất thất vọng với sản phẩm này. Chất lượng kém, không đáng tiền.",
			"Không khuyến khích mọi người mua. Nhiều vấn đề cần khắc phục.",
			"Chất lượng quá kém, hoàn toàn không đáp ứng mong đợi.",
		},
	},
}

type FallbackSynthesizer struct {
	rand Rand
}

func NewFallbackSynthesizer(r Rand) *FallbackSynthesizer {
	return &FallbackSynthesizer{rand: r}
}

// Synthesize builds a template review for the target rating. The tag replaces the [Fallback] marker in the
// title; an empty tag keeps it. Ratings outside 1..5 use the 3★ templates but keep their own rating.
func (f *FallbackSynthesizer) Synthesize(target int, tag string) models.ReviewRecord {
	if tag == "" {
		tag = FallbackMarker
	}
	tmpl, ok := fallbackTemplates[target]
	if !ok {
		tmpl = fallbackTemplates[3]
	}

	title := tmpl.titles[f.rand.IntN(len(tmpl.titles))]
	content := tmpl.contents[f.rand.IntN(len(tmpl.contents))]

	return models.ReviewRecord{
		CustomerName: randomName(f.rand),
		Rating:       target,
		Title:        strings.Replace(title, FallbackMarker, tag, 1),
		Content:      content,
		IsVerified:   randomVerified(f.rand),
		HelpfulCount: randomHelpfulCount(f.rand),
	}
}

func randomName(r Rand) string {
	return customerNames[r.IntN(len(customerNames))]
}

// roughly 70% of reviews come from verified buyers
func randomVerified(r Rand) bool {
	return r.Float64() > 0.3
}

func randomHelpfulCount(r Rand) int {
	return r.IntN(maxHelpfulCount + 1)
}
