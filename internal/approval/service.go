package approval

import (
	"context"
	"fmt"

	"backend/internal/common"
	"backend/internal/logger"
	"backend/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================================
// 请求结构
// ============================================================================

// SubmitDocumentRequest 上报决裁文书请求
type SubmitDocumentRequest struct {
	Title    string         `json:"title" binding:"required,max=200"`
	DocType  string         `json:"docType" binding:"required"`
	Content  string         `json:"content"`
	FormData datatypes.JSON `json:"formData"`

	// 起案人信息由认证中间件注入，不从请求体读取
	AuthorID   string `json:"-"`
	AuthorName string `json:"-"`
	DeptCode   string `json:"-"`
	DeptName   string `json:"-"`
}

// ListDocumentsRequest 文书列表查询请求
type ListDocumentsRequest struct {
	common.PaginationRequest
	Status   string `form:"status"`
	DocType  string `form:"docType"`
	AuthorID string `form:"authorId"`
	Keyword  string `form:"keyword"`
}

// ============================================================================
// 文书服务
// ============================================================================

// DocumentService 决裁文书服务：上报与查询
type DocumentService struct {
	*common.BaseService
	resolver   *Resolver
	history    *HistoryRecorder
	dispatcher *Dispatcher
	bus        *DocumentEventBus
	logger     *zap.Logger
}

// DocumentOption 配置文书服务
type DocumentOption func(*DocumentService)

// WithDocumentDispatcher 设置通知分发器
func WithDocumentDispatcher(d *Dispatcher) DocumentOption {
	return func(s *DocumentService) { s.dispatcher = d }
}

// WithDocumentEventBus 设置事件总线
func WithDocumentEventBus(bus *DocumentEventBus) DocumentOption {
	return func(s *DocumentService) { s.bus = bus }
}

// WithDocumentLogger 设置日志器
func WithDocumentLogger(l *zap.Logger) DocumentOption {
	return func(s *DocumentService) { s.logger = l }
}

// NewDocumentService 创建文书服务
func NewDocumentService(db *gorm.DB, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		BaseService: common.NewBaseService(db),
		logger:      logger.Get(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.resolver = NewResolver(db, s.logger)
	s.history = NewHistoryRecorder(db, s.logger)
	return s
}

// Submit 上报决裁文书
// 上报时固化决裁线快照；无可用规程时决裁线为空，文书直接完结
func (s *DocumentService) Submit(ctx context.Context, req *SubmitDocumentRequest) (*ApprovalDocument, error) {
	docType, err := ParseDocType(req.DocType)
	if err != nil {
		return nil, err
	}

	line, err := s.resolver.ResolveLine(ctx, docType, req.DeptCode)
	if err != nil {
		return nil, err
	}

	status := StatusPending
	if len(line) == 0 {
		status = StatusApproved
	}

	doc := &ApprovalDocument{
		ID:         uuid.New().String(),
		Title:      req.Title,
		DocType:    docType,
		Status:     status,
		DeptCode:   req.DeptCode,
		DeptName:   req.DeptName,
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
		Content:    req.Content,
		FormData:   req.FormData,
		Line:       line,
		Version:    0,
		CreatedBy:  req.AuthorID,
		UpdatedBy:  req.AuthorID,
	}

	if err := s.DB.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, fmt.Errorf("上报决裁文书失败: %w", err)
	}

	s.history.Record(ctx, doc.ID, req.AuthorID, ActionCreated, "")
	if !doc.Status.IsTerminal() {
		metrics.DocumentsPendingGauge.WithLabelValues(string(docType)).Inc()
	}

	if s.bus != nil {
		s.bus.Publish(DocumentEvent{
			DocID:   doc.ID,
			Status:  doc.Status,
			ActorID: req.AuthorID,
			Action:  ActionCreated,
		})
	}
	if s.dispatcher != nil {
		if first, ok := doc.CurrentStep(); ok {
			s.dispatcher.NotifyApprovalRequested(doc, first)
		}
	}

	s.logger.Info("决裁文书已上报",
		zap.String("docId", doc.ID),
		zap.String("docType", string(docType)),
		zap.String("authorId", req.AuthorID),
		zap.Int("lineSteps", len(line)),
	)
	return doc, nil
}

// Get 查询单份文书
func (s *DocumentService) Get(ctx context.Context, docID string) (*ApprovalDocument, error) {
	return getDocument(ctx, s.DB, docID)
}

// List 分页查询文书
func (s *DocumentService) List(ctx context.Context, req *ListDocumentsRequest) ([]*ApprovalDocument, int64, error) {
	query := s.DB.Model(&ApprovalDocument{})
	query = s.ApplyEqual(query, "status", req.Status)
	query = s.ApplyEqual(query, "doc_type", req.DocType)
	query = s.ApplyEqual(query, "author_id", req.AuthorID)
	query = s.ApplyKeyword(query, "title", req.Keyword)
	query = query.Order("created_at DESC")

	var items []*ApprovalDocument
	total, err := s.CountThenFind(ctx, query, req.PaginationRequest, &items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListHistory 查询文书履历，按时间升序
func (s *DocumentService) ListHistory(ctx context.Context, docID string) ([]*ApprovalHistory, error) {
	if _, err := s.Get(ctx, docID); err != nil {
		return nil, err
	}
	return s.history.ListByDocument(ctx, docID)
}

// PreviewLine 预览指定文书类型当前会固化的决裁线
func (s *DocumentService) PreviewLine(ctx context.Context, docType, deptCode string) (ApprovalLine, error) {
	dt, err := ParseDocType(docType)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveLine(ctx, dt, deptCode)
}
