package util

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// GetEnv 读取环境变量（去除首尾空白）
func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// GetEnvDefault 读取环境变量，未设置时返回默认值
func GetEnvDefault(key, def string) string {
	if v := GetEnv(key); v != "" {
		return v
	}
	return def
}

// GetIntEnv 读取整型环境变量，无法解析时返回 0
func GetIntEnv(key string) int64 {
	return cast.ToInt64(GetEnv(key))
}

// GetIntEnvDefault 读取整型环境变量，未设置或为 0 时返回默认值
func GetIntEnvDefault(key string, def int64) int64 {
	if v := GetIntEnv(key); v != 0 {
		return v
	}
	return def
}

// GetBoolEnv 读取布尔环境变量（true/1/yes 之外均为 false）
func GetBoolEnv(key string) bool {
	v := strings.ToLower(GetEnv(key))
	if v == "yes" || v == "on" {
		return true
	}
	return cast.ToBool(v)
}

// GetDurationEnv 读取时长环境变量，支持 "30s"、"5m" 以及纯数字（按秒计）
func GetDurationEnv(key string, def time.Duration) time.Duration {
	raw := GetEnv(key)
	if raw == "" {
		return def
	}
	if n, err := cast.ToInt64E(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := cast.ToDurationE(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// LookupEnv 与 os.LookupEnv 相同，但去除首尾空白
func LookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return strings.TrimSpace(v), ok
}
