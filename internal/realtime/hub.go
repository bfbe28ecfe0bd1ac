package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/AutoServe360/AutoServe360/internal/common/logger"
	"github.com/gorilla/websocket"
)

// Event 推送给车间看板的业务事件。
type Event struct {
	Kind      string      `json:"kind"` // job_created / status_changed / part_issued / invoiced
	JobCardID string      `json:"jobcard_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	At        time.Time   `json:"at"`
}

// client 包一层写锁：gorilla/websocket 同一连接只允许一个并发写入者，
// 多个业务请求同时 Publish 时靠它串行化。
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) writeEvent(ev Event) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	return c.conn.WriteJSON(ev)
}

// Hub 维护 websocket 连接集合并向所有连接广播事件。
// 广播是尽力而为：慢连接直接断开，不阻塞业务请求。
type Hub struct {
	log      logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 门店内网部署，信任同源之外的前端开发环境
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// HandleWS 升级连接并登记到客户端集合。
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.log != nil {
			h.log.Warnf("websocket upgrade failed: %v", err)
		}
		return
	}
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	// 只读取以感知断开；业务上是单向推送
	go func() {
		defer h.remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish 向所有在线客户端广播事件。Hub 为 nil 时安全地不做任何事。
func (h *Hub) Publish(kind, jobCardID string, payload interface{}) {
	if h == nil {
		return
	}
	ev := Event{Kind: kind, JobCardID: jobCardID, Payload: payload, At: time.Now()}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.writeEvent(ev); err != nil {
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// ClientCount 当前在线连接数（监控/测试用）。
func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
