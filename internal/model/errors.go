package model

import "errors"

// 摄取与问答流程中可识别的错误类别。
// 前三类会使摄取流程整体中止，不会留下部分入库的文档；
// ErrDocumentNotFound 是面向用户的正常 "未找到" 结果；
// 答案生成失败在 AnswerService 内部吸收为兜底回复，永远不会作为错误向上传播。
var (
	ErrExtraction         = errors.New("文本提取失败")
	ErrInvalidChunkConfig = errors.New("无效的分块配置")
	ErrEmbedding          = errors.New("向量化失败")
	ErrDocumentNotFound   = errors.New("文档不存在")
)
