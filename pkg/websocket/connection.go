package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"HelpBeacon/pkg/sse"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// Message 下行消息帧
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Connection 一个 websocket 订阅者，事件来源与 SSE 共用同一个 Hub
type Connection struct {
	conn   *websocket.Conn
	client *sse.Client
	hub    *sse.Hub
	cfg    *Config
	pong   chan struct{}
	once   sync.Once
}

// newUpgrader 根据配置创建WebSocket升级器
func newUpgrader(cfg *Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			if len(cfg.AllowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range cfg.AllowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
		EnableCompression: cfg.EnableCompression,
	}
}

// HandleWebSocket 升级连接并按 sub 订阅 Hub 事件，读写协程在后台运行
func HandleWebSocket(hub *sse.Hub, cfg *Config, w http.ResponseWriter, r *http.Request, sub sse.Subscription) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.normalized()

	upgrader := newUpgrader(cfg)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已经写回了错误响应
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := hub.AddClient(sub)
	if client == nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	c := &Connection{
		conn:   conn,
		client: client,
		hub:    hub,
		cfg:    cfg,
		pong:   make(chan struct{}, 1),
	}
	go c.writePump()
	go c.readPump()
}

func (c *Connection) close() {
	c.once.Do(func() {
		c.hub.RemoveClient(c.client.ID())
		_ = c.conn.Close()
	})
}

// readPump 只处理心跳和关闭，客户端不能通过 websocket 写入数据
func (c *Connection) readPump() {
	defer c.close()

	c.conn.SetReadLimit(int64(c.cfg.MaxMessageSize))
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ConnectionTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.ConnectionTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Warn("websocket read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ConnectionTimeout))

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == MessageTypePing {
			select {
			case c.pong <- struct{}{}:
			default:
			}
		}
	}
}

// writePump 所有写操作都在这个协程里完成
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.client.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
			return
		case ev := <-c.client.Events():
			if err := c.write(Message{Type: ev.Type, Data: ev.Data, Timestamp: time.Now().UnixMilli()}); err != nil {
				return
			}
		case <-c.pong:
			if err := c.write(Message{Type: MessageTypePong, Timestamp: time.Now().UnixMilli()}); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) write(msg Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}
