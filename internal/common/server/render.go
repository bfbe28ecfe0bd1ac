package server

import (
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/gin-gonic/gin"
)

// AbortError 将领域错误映射为统一的 JSON 错误响应。
// 底层存储错误不外泄，只返回脱敏后的文案。
func AbortError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errs.HTTPStatus(err), gin.H{"error": errs.Message(err)})
}
