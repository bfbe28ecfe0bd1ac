package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}

	// 等待连接登记完成
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			conn.Close()
			srv.Close()
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestNilHubPublishIsNoop(t *testing.T) {
	var h *Hub
	h.Publish("job_created", "j-1", nil)
	if h.ClientCount() != 0 {
		t.Fatal("nil hub should report zero clients")
	}
}

// 每个连接的写入必须串行化：多个业务请求同时 Publish 不允许在同一
// 连接上并发写（配合 -race 跑）。
func TestPublishSerializesConcurrentWrites(t *testing.T) {
	h := NewHub(nil)
	conn, cleanup := dialTestHub(t, h)
	defer cleanup()

	const n = 100
	received := make(chan struct{}, n)
	go func() {
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			received <- struct{}{}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Publish("part_issued", "j-1", map[string]int{"qty": 1})
		}()
	}
	wg.Wait()

	// 慢客户端可能被踢掉，但至少要收到一条且 hub 不崩
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestPublishDropsClosedClient(t *testing.T) {
	h := NewHub(nil)
	conn, cleanup := dialTestHub(t, h)
	defer cleanup()

	conn.Close()
	// 写入失败应把连接从集合里移除
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 0 {
		h.Publish("status_changed", "j-1", nil)
		if time.Now().After(deadline) {
			t.Fatalf("closed client still registered, count=%d", h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
