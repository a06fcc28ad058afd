package services

import (
	"math"
	"sort"

	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
)

// CosineSimilarity 计算两个向量的余弦相似度。
// 维度不一致或任一向量范数为零时返回 0（视为无信号，不参与排序加分）。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankedVideo 表示排序后的候选及其得分。
type RankedVideo struct {
	Video      *po.Video
	Similarity float64
}

// RankBySimilarity 按与兴趣向量的余弦相似度对候选降序排序，再截断到 limit。
// 无向量的候选不参与排序。同分按创建时间倒序，保证排序稳定可复现。
// 先全量排序后截断，避免截断发生在排序之前导致高分候选被丢弃。
func RankBySimilarity(interest []float32, candidates []*po.Video, limit int) []RankedVideo {
	ranked := make([]RankedVideo, 0, len(candidates))
	for _, v := range candidates {
		if !v.HasEmbedding() {
			continue
		}
		ranked = append(ranked, RankedVideo{
			Video:      v,
			Similarity: CosineSimilarity(interest, v.Embedding),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		return ranked[i].Video.CreatedAt.After(ranked[j].Video.CreatedAt)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
