// Package retriever 基于余弦相似度对文档分块进行排序检索。
package retriever

import (
	"math"
	"sort"

	"docmind-go/internal/model"
)

// DefaultTopK 是检索返回的默认分块数量。
const DefaultTopK = 3

// CosineSimilarity 计算两个向量的余弦相似度，取值范围约为 [-1, 1]。
// 维度不一致或任一向量模为零时相似度无定义，此时返回最低分 -1
// 而不是报错，保证排序始终可进行。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank 将文档的全部分块按与查询向量的相似度降序排序，返回前 topK 个。
// 相似度相同时保持分块的原始顺序（稳定排序），结果确定可复现；
// 分块数不足 topK 时返回全部分块，文档为空时返回空序列。
func Rank(queryEmbedding []float32, doc *model.Document, topK int) []model.RetrievalResult {
	if topK <= 0 {
		topK = DefaultTopK
	}

	results := make([]model.RetrievalResult, 0, len(doc.Chunks))
	for i, chunk := range doc.Chunks {
		var emb []float32
		if i < len(doc.Embeddings) {
			emb = doc.Embeddings[i]
		}
		results = append(results, model.RetrievalResult{
			Chunk:      chunk,
			Similarity: CosineSimilarity(queryEmbedding, emb),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
