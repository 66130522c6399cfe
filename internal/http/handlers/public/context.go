package public

import "github.com/gin-gonic/gin"

// getUserID 读取可选鉴权中间件注入的用户 ID，匿名请求返回 0
func getUserID(c *gin.Context) uint {
	value, ok := c.Get("user_id")
	if !ok {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}
