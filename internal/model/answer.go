package model

// Citation 指向支撑答案的分块来源。
type Citation struct {
	Page    int    `json:"page"`
	ChunkID string `json:"chunkId"`
	Snippet string `json:"snippet"` // 不超过约 30 个词的原文摘录
}

// Answer 是问答接口返回给前端的结构化结果。
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	FollowUp  string     `json:"follow_up"`
}
