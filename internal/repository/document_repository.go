// Package repository 提供了数据访问层的实现。
package repository

import (
	"sync"

	"docmind-go/internal/model"
)

// DocumentRepository 定义了文档的存取操作。
// 参考实现是进程内内存表：随进程启动初始化为空，进程结束即消失；
// 实例在 main 中构造一次并注入各个使用方，不使用包级单例。
type DocumentRepository interface {
	// Put 存入文档；同一 id 重复写入时直接覆盖。
	Put(id string, doc *model.Document)
	// Get 按 id 查找文档，未找到时第二个返回值为 false。
	Get(id string) (*model.Document, bool)
	// Delete 删除文档，id 不存在时返回 false。
	Delete(id string) bool
	// ListAll 按插入顺序返回全部文档。
	ListAll() []*model.Document
}

type memoryDocumentRepository struct {
	mu    sync.RWMutex
	docs  map[string]*model.Document
	order []string
}

// NewDocumentRepository 创建一个空的内存文档仓库。
func NewDocumentRepository() DocumentRepository {
	return &memoryDocumentRepository{
		docs: make(map[string]*model.Document),
	}
}

func (r *memoryDocumentRepository) Put(id string, doc *model.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[id]; !exists {
		r.order = append(r.order, id)
	}
	r.docs[id] = doc
}

func (r *memoryDocumentRepository) Get(id string) (*model.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	return doc, ok
}

func (r *memoryDocumentRepository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false
	}
	delete(r.docs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *memoryDocumentRepository) ListAll() []*model.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := make([]*model.Document, 0, len(r.docs))
	for _, id := range r.order {
		docs = append(docs, r.docs[id])
	}
	return docs
}
