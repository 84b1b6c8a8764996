package websocket

// WebSocket消息类型常量
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"

	// 默认配置值
	DefaultHeartbeatInterval = 30
	DefaultConnectionTimeout = 60
	DefaultReadBufferSize    = 1024
	DefaultWriteBufferSize   = 1024
	DefaultMaxMessageSize    = 512

	// 环境变量配置键
	EnvWebSocketHeartbeatInterval  = "WEBSOCKET_HEARTBEAT_INTERVAL"
	EnvWebSocketConnectionTimeout  = "WEBSOCKET_CONNECTION_TIMEOUT"
	EnvWebSocketReadBufferSize     = "WEBSOCKET_READ_BUFFER_SIZE"
	EnvWebSocketWriteBufferSize    = "WEBSOCKET_WRITE_BUFFER_SIZE"
	EnvWebSocketMaxMessageSize     = "WEBSOCKET_MAX_MESSAGE_SIZE"
	EnvWebSocketEnableCompression  = "WEBSOCKET_ENABLE_COMPRESSION"
	EnvWebSocketAllowedOriginsList = "WEBSOCKET_ALLOWED_ORIGINS"
)
