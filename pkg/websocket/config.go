package websocket

import (
	"strings"
	"time"

	"HelpBeacon/pkg/util"
)

// Config WebSocket连接配置
type Config struct {
	HeartbeatInterval time.Duration // 服务端 ping 间隔
	ConnectionTimeout time.Duration // 超过该时间未收到 pong 视为断开
	ReadBufferSize    int
	WriteBufferSize   int
	MaxMessageSize    int // 客户端上行消息的最大字节数
	EnableCompression bool
	AllowedOrigins    []string // 为空表示不校验 Origin
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		HeartbeatInterval: DefaultHeartbeatInterval * time.Second,
		ConnectionTimeout: DefaultConnectionTimeout * time.Second,
		ReadBufferSize:    DefaultReadBufferSize,
		WriteBufferSize:   DefaultWriteBufferSize,
		MaxMessageSize:    DefaultMaxMessageSize,
	}
}

// LoadConfigFromEnv 从环境变量加载WebSocket配置
func LoadConfigFromEnv() *Config {
	config := DefaultConfig()

	if heartbeatInterval := util.GetIntEnv(EnvWebSocketHeartbeatInterval); heartbeatInterval > 0 {
		config.HeartbeatInterval = time.Duration(heartbeatInterval) * time.Second
	}

	if connectionTimeout := util.GetIntEnv(EnvWebSocketConnectionTimeout); connectionTimeout > 0 {
		config.ConnectionTimeout = time.Duration(connectionTimeout) * time.Second
	}

	if readBuf := util.GetIntEnv(EnvWebSocketReadBufferSize); readBuf > 0 {
		config.ReadBufferSize = int(readBuf)
	}

	if writeBuf := util.GetIntEnv(EnvWebSocketWriteBufferSize); writeBuf > 0 {
		config.WriteBufferSize = int(writeBuf)
	}

	if maxMsg := util.GetIntEnv(EnvWebSocketMaxMessageSize); maxMsg > 0 {
		config.MaxMessageSize = int(maxMsg)
	}

	config.EnableCompression = util.GetBoolEnv(EnvWebSocketEnableCompression)

	if origins := util.GetEnv(EnvWebSocketAllowedOriginsList); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, o)
			}
		}
	}

	return config.normalized()
}

// normalized 返回修正后的副本，保证心跳间隔小于超时时间，不修改调用方共享的配置
func (c Config) normalized() *Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval * time.Second
	}
	if c.ConnectionTimeout <= c.HeartbeatInterval {
		c.ConnectionTimeout = 2 * c.HeartbeatInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	return &c
}
