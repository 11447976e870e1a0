package approval

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewDocumentEventBus(&EventBusConfig{BufferSize: 2})

	ch, cancel := bus.Subscribe("doc-1")
	defer cancel()

	bus.Publish(DocumentEvent{DocID: "doc-1", Status: StatusInProgress, Action: ActionApproved})

	select {
	case evt := <-ch:
		assert.Equal(t, "doc-1", evt.DocID)
		assert.Equal(t, ActionApproved, evt.Action)
		assert.False(t, evt.OccurredAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("未收到事件")
	}
}

func TestEventBusIsolatesDocuments(t *testing.T) {
	bus := NewDocumentEventBus(nil)

	ch, cancel := bus.Subscribe("doc-a")
	defer cancel()

	bus.Publish(DocumentEvent{DocID: "doc-b", Action: ActionRejected})

	select {
	case <-ch:
		t.Fatal("收到了其他文书的事件")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBusNonBlockingPublish(t *testing.T) {
	bus := NewDocumentEventBus(&EventBusConfig{BufferSize: 1})

	_, cancel := bus.Subscribe("doc-1")
	defer cancel()

	// 缓冲占满后继续发布不得阻塞
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(DocumentEvent{DocID: "doc-1", Action: ActionModified})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish 发生阻塞")
	}
}

func TestEventBusConcurrentPublishAndCancel(t *testing.T) {
	bus := NewDocumentEventBus(&EventBusConfig{BufferSize: 1})

	// 同一文书上发布与订阅/取消并发进行，不得触发
	// map 并发读写或向已关闭通道发送
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					bus.Publish(DocumentEvent{DocID: "doc-race", Action: ActionApproved})
				}
			}
		}()
	}

	for i := 0; i < 5000; i++ {
		ch, cancel := bus.Subscribe("doc-race")
		select {
		case <-ch:
		default:
		}
		cancel()
	}

	close(stop)
	wg.Wait()
}

func TestEventBusCancelClosesChannel(t *testing.T) {
	bus := NewDocumentEventBus(nil)

	ch, cancel := bus.Subscribe("doc-1")
	cancel()

	_, ok := <-ch
	require.False(t, ok)

	// 取消后发布不应 panic
	bus.Publish(DocumentEvent{DocID: "doc-1"})
}
