package api

import (
	"net/http"
	"time"

	"budget/config"
	"budget/middleware"

	"github.com/gin-gonic/gin"
)

// getCookieOptions 根据运行模式返回 Cookie 的安全选项
// release 模式下启用 Secure
func getCookieOptions() (secure bool, sameSite http.SameSite) {
	cfg := config.GetConfig()
	if cfg != nil && cfg.Server.Mode == "release" {
		secure = true
	}
	sameSite = http.SameSiteLaxMode
	return
}

// setTokenCookie 写入登录 Cookie，供浏览器端会话使用
func setTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	secure, sameSite := getCookieOptions()
	c.SetSameSite(sameSite)
	c.SetCookie(middleware.TokenCookie, token, int(ttl/time.Second), "/", "", secure, true)
}

// clearTokenCookie 删除登录 Cookie
func clearTokenCookie(c *gin.Context) {
	secure, sameSite := getCookieOptions()
	c.SetSameSite(sameSite)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", secure, true)
}
