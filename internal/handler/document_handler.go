// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docmind-go/internal/model"
	"docmind-go/internal/service"
	"docmind-go/pkg/log"
)

// DocumentHandler 负责处理所有与文档管理相关的 API 请求。
type DocumentHandler struct {
	docService   service.DocumentService
	maxUploadLen int64
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(docService service.DocumentService, maxUploadMB int64) *DocumentHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &DocumentHandler{
		docService:   docService,
		maxUploadLen: maxUploadMB << 20,
	}
}

// Upload 处理 PDF 上传并触发同步摄取。
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warnf("[DocumentHandler] 上传请求缺少文件: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "未上传文件"})
		return
	}

	if fileHeader.Size > h.maxUploadLen {
		log.Warnf("[DocumentHandler] 文件过大: %s, size: %d", fileHeader.Filename, fileHeader.Size)
		c.JSON(http.StatusBadRequest, gin.H{"error": "文件大小超出限制"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("[DocumentHandler] 打开上传文件失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("[DocumentHandler] 读取上传文件失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}

	result, err := h.docService.IngestDocument(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		log.Errorf("[DocumentHandler] 文档摄取失败, 文件: %s, err: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "文档摄取成功",
		"data":    result,
	})
}

// Get 处理按 id 获取文档元数据的请求。
func (h *DocumentHandler) Get(c *gin.Context) {
	documentID := c.Param("documentId")

	summary, err := h.docService.GetDocument(documentID)
	if err != nil {
		if errors.Is(err, model.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
			return
		}
		log.Error("[DocumentHandler] 获取文档失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取文档失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "获取文档成功",
		"data":    summary,
	})
}

// List 处理获取全部文档摘要列表的请求。
func (h *DocumentHandler) List(c *gin.Context) {
	summaries := h.docService.ListDocuments()
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "获取文档列表成功",
		"data":    gin.H{"documents": summaries},
	})
}

// Delete 处理按 id 删除文档的请求。
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("documentId")

	if err := h.docService.DeleteDocument(documentID); err != nil {
		if errors.Is(err, model.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
			return
		}
		log.Error("[DocumentHandler] 删除文档失败", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除文档失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "文档删除成功",
	})
}
