// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// ObserverClient 表示一个观察端的WebSocket连接
type ObserverClient struct {
	conn   *websocket.Conn
	send   chan []byte
	closed int32 // 原子操作标志，0=开启，1=关闭
}

// Close 安全关闭客户端连接
func (client *ObserverClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		// 只设置关闭标志，发送通道由写循环的defer负责关闭
		client.conn.Close()
	}
}

// IsClosed 检查连接是否已关闭
func (client *ObserverClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// ObserverHub 管理所有观察端连接，并向它们广播观察事件
type ObserverHub struct {
	clients    map[*ObserverClient]bool
	broadcast  chan []byte
	register   chan *ObserverClient
	unregister chan *ObserverClient
	logger     *zap.Logger
}

// NewObserverHub 创建连接管理器
func NewObserverHub(logger *zap.Logger) *ObserverHub {
	return &ObserverHub{
		clients:    make(map[*ObserverClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *ObserverClient, 64),
		unregister: make(chan *ObserverClient, 64),
		logger:     logger,
	}
}

// Run 运行连接管理循环，应在独立goroutine中调用
func (h *ObserverHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("观察端已连接", zap.Int("total", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
				h.logger.Info("观察端已断开", zap.Int("total", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				if client.IsClosed() {
					delete(h.clients, client)
					continue
				}
				select {
				case client.send <- message:
				default:
					// 发送队列满，放弃该连接
					delete(h.clients, client)
					client.Close()
					h.logger.Warn("观察端消息队列已满，连接被移除")
				}
			}
		}
	}
}

// Broadcast 向所有观察端广播一条类型化事件
func (h *ObserverHub) Broadcast(eventType string, payload any) {
	message, err := json.Marshal(map[string]any{
		"type":      eventType,
		"data":      payload,
		"timestamp": time.Now().Unix(),
	})
	if err != nil {
		h.logger.Error("广播消息序列化失败", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("广播队列已满，消息被丢弃", zap.String("type", eventType))
	}
}

// HandleObserverSocket 升级HTTP连接并接入管理器
func (h *ObserverHub) HandleObserverSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket升级失败", zap.Error(err))
		return
	}

	client := &ObserverClient{
		conn: conn,
		send: make(chan []byte, 64),
	}
	h.register <- client

	go h.writeLoop(client)
	go h.readLoop(client)
}

func (h *ObserverHub) writeLoop(client *ObserverClient) {
	// send通道不关闭，写循环靠连接关闭后的写失败退出
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		client.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.unregister <- client
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister <- client
				return
			}
		}
	}
}

func (h *ObserverHub) readLoop(client *ObserverClient) {
	defer func() {
		h.unregister <- client
	}()

	client.conn.SetReadLimit(1024)
	client.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	// 观察端只接收广播，入站消息仅用于保活
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
