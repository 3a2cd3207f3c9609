package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docmind-go/internal/model"
	"docmind-go/internal/service"
	"docmind-go/pkg/log"
)

// QuestionHandler 负责处理问答相关的 API 请求。
type QuestionHandler struct {
	questionService service.QuestionService
}

// NewQuestionHandler 创建一个新的 QuestionHandler 实例。
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// askRequest 是问答接口的请求体。
type askRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	Question   string `json:"question" binding:"required"`
}

// Ask 是处理提问请求的 Gin 处理函数。
func (h *QuestionHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[QuestionHandler] 提问请求参数无效: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "documentId 和 question 为必填项"})
		return
	}

	answer, err := h.questionService.Ask(c.Request.Context(), req.DocumentID, req.Question)
	if err != nil {
		if errors.Is(err, model.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
			return
		}
		log.Errorf("[QuestionHandler] 问答服务返回错误, DocumentID: %s, err: %v", req.DocumentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "提问处理失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    answer,
	})
}
