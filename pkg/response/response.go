package response

import (
	"net/http"

	"HelpBeacon/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Ack 仅返回确认 {"ok": true}
func Ack(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Success 返回 {"ok": true, key: data}
func Success(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"ok": true, key: data})
}

// Data 直接返回数据本体（数组或对象）
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Fail 按错误码映射 HTTP 状态并返回 {"error": msg}
func Fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.StatusCode(err), gin.H{"error": errors.GetMessage(err)})
}
