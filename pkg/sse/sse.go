package sse

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"HelpBeacon/pkg/geo"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	EventMessage       = "message"
	EventAlert         = "alert"
	EventAlertAccepted = "alert.accepted"
	EventDirectMessage = "direct-message"
	EventPing          = "ping"

	clientBuffer = 64
)

// Event 推送给订阅者的事件。Point 非空时按距离投递，Group 非空时投递给组内成员，
// 两者满足其一即可。
type Event struct {
	Type  string
	Data  interface{}
	Point *geo.Point
	Group string
}

// Subscription 一个连接关心的范围
type Subscription struct {
	Label    string // 客户端自报的 id，仅用于日志
	Center   *geo.Point
	RadiusKm float64
	Groups   []string
}

type Client struct {
	id     string
	sub    Subscription
	groups map[string]bool
	ch     chan Event
	done   chan struct{}
}

func (c *Client) ID() string { return c.id }

// Events 待投递的事件，供其它传输方式（如 websocket）消费
func (c *Client) Events() <-chan Event { return c.ch }

// Done 连接被移除或 Hub 关闭时关闭
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) wants(ev Event) bool {
	if ev.Group != "" && c.groups[ev.Group] {
		return true
	}
	if ev.Point != nil && c.sub.Center != nil {
		_, ok := c.sub.Center.Within(*ev.Point, c.sub.RadiusKm)
		return ok
	}
	return false
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	groups   map[string]map[string]bool // group -> clientID set
	interval time.Duration
	retryMs  int
	closed   bool
	log      *logrus.Entry
	onCount  func(int)
}

type Option func(*Hub)

// WithLogger 替换默认的 logrus 标准 logger
func WithLogger(l *logrus.Logger) Option {
	return func(h *Hub) { h.log = l.WithField("component", "sse") }
}

// WithClientObserver 连接数变化时回调，回调在锁外执行
func WithClientObserver(fn func(n int)) Option {
	return func(h *Hub) { h.onCount = fn }
}

func NewHub(interval time.Duration, opts ...Option) *Hub {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	h := &Hub{
		clients:  make(map[string]*Client),
		groups:   make(map[string]map[string]bool),
		interval: interval,
		retryMs:  5000,
		log:      logrus.StandardLogger().WithField("component", "sse"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddClient 注册一个新连接。Hub 已关闭时返回 nil
func (h *Hub) AddClient(sub Subscription) *Client {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	c := &Client{
		id:     uuid.NewString(),
		sub:    sub,
		groups: make(map[string]bool),
		ch:     make(chan Event, clientBuffer),
		done:   make(chan struct{}),
	}
	h.clients[c.id] = c
	for _, g := range sub.Groups {
		if g == "" {
			continue
		}
		c.groups[g] = true
		if h.groups[g] == nil {
			h.groups[g] = make(map[string]bool)
		}
		h.groups[g][c.id] = true
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{"client": c.id, "label": sub.Label, "groups": sub.Groups}).Info("subscriber attached")
	h.notify(n)
	return c
}

func (h *Hub) RemoveClient(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	h.dropLocked(c)
	n := len(h.clients)
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{"client": id, "label": c.sub.Label}).Info("subscriber detached")
	h.notify(n)
}

func (h *Hub) dropLocked(c *Client) {
	close(c.done)
	for g := range c.groups {
		delete(h.groups[g], c.id)
		if len(h.groups[g]) == 0 {
			delete(h.groups, g)
		}
	}
	delete(h.clients, c.id)
}

// Publish 把事件投递给所有感兴趣的连接。缓冲区满的连接丢弃该事件
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.wants(ev) {
			continue
		}
		select {
		case c.ch <- ev:
		default:
			h.log.WithFields(logrus.Fields{"client": c.id, "event": ev.Type}).Warn("subscriber too slow, event dropped")
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 断开所有连接，之后的 AddClient 返回 nil
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for _, c := range h.clients {
		h.dropLocked(c)
	}
	h.mu.Unlock()
	h.notify(0)
}

func (h *Hub) notify(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}

// Serve 在当前请求上输出事件流，直到客户端断开或 Hub 关闭
func (h *Hub) Serve(c *gin.Context, sub Subscription) {
	client := h.AddClient(sub)
	if client == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
		return
	}
	defer h.RemoveClient(client.id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	fmt.Fprintf(c.Writer, "retry: %d\n\n", h.retryMs)
	c.Writer.Flush()

	ping := time.NewTicker(h.interval)
	defer ping.Stop()

	for {
		select {
		case <-client.done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			c.SSEvent(EventPing, gin.H{})
			c.Writer.Flush()
		case ev := <-client.ch:
			c.SSEvent(ev.Type, ev.Data)
			c.Writer.Flush()
		}
	}
}
