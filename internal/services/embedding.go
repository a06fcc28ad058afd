package services

// WeightedVector 表示参与兴趣聚合的一条向量及其权重。
type WeightedVector struct {
	Vector []float32
	Weight int64
}

// WeightedCentroid 计算加权质心：sum(weight_i * v_i) / sum(weight_i)。
// 跳过空向量与非正权重；维度以首条有效向量为准，维度不一致的条目同样跳过。
// 没有任何有效条目时返回 nil，表示"无兴趣信号"。
func WeightedCentroid(items []WeightedVector) []float32 {
	var (
		acc         []float64
		totalWeight int64
	)
	for _, item := range items {
		if len(item.Vector) == 0 || item.Weight <= 0 {
			continue
		}
		if acc == nil {
			acc = make([]float64, len(item.Vector))
		}
		if len(item.Vector) != len(acc) {
			continue
		}
		w := float64(item.Weight)
		for i, v := range item.Vector {
			acc[i] += w * float64(v)
		}
		totalWeight += item.Weight
	}
	if totalWeight == 0 {
		return nil
	}
	out := make([]float32, len(acc))
	for i, v := range acc {
		out[i] = float32(v / float64(totalWeight))
	}
	return out
}
