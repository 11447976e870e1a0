package approval

import (
	"sync"
	"time"
)

// DocumentEvent 描述文书决裁状态变化
type DocumentEvent struct {
	DocID      string
	Status     DocStatus
	ActorID    string
	Action     string // 履历动作标签
	Comment    string
	Forced     bool // 是否为管理员强制操作
	OccurredAt time.Time
}

// EventBusConfig 控制事件总线行为
type EventBusConfig struct {
	BufferSize int
}

// DocumentEventBus 简单本地事件总线，按文书ID分发
type DocumentEventBus struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]chan DocumentEvent
	seq    uint64
	buffer int
}

// NewDocumentEventBus 创建事件总线
func NewDocumentEventBus(cfg *EventBusConfig) *DocumentEventBus {
	buffer := 1
	if cfg != nil && cfg.BufferSize > 0 {
		buffer = cfg.BufferSize
	}
	return &DocumentEventBus{
		subs:   make(map[string]map[uint64]chan DocumentEvent),
		buffer: buffer,
	}
}

// Publish 发布事件
func (b *DocumentEventBus) Publish(evt DocumentEvent) {
	if b == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	// 持有读锁遍历：发送非阻塞不会卡住锁，且 close 只发生在写锁内，
	// 读锁存续期间不可能向已关闭的通道发送
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[evt.DocID] {
		select {
		case ch <- evt:
		default:
			// 接收方处理慢则丢弃，保持非阻塞
		}
	}
}

// Subscribe 订阅指定文书的事件
func (b *DocumentEventBus) Subscribe(docID string) (<-chan DocumentEvent, func()) {
	if b == nil {
		return nil, nil
	}
	ch := make(chan DocumentEvent, b.buffer)
	b.mu.Lock()
	b.seq++
	id := b.seq
	if _, ok := b.subs[docID]; !ok {
		b.subs[docID] = make(map[uint64]chan DocumentEvent)
	}
	b.subs[docID][id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.removeListener(docID, id)
	}
	return ch, cancel
}

func (b *DocumentEventBus) removeListener(docID string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if listeners, ok := b.subs[docID]; ok {
		if ch, exists := listeners[id]; exists {
			delete(listeners, id)
			close(ch)
		}
		if len(listeners) == 0 {
			delete(b.subs, docID)
		}
	}
}
