package errors

import (
	"fmt"
	"time"
)

// AccountExpiredError 账户已过期。
// 跨层共享的硬性拒绝：中间件与登录都要携带过期时间返回给客户端，
// 以便前端渲染续期提示，区别于一般的 403。
type AccountExpiredError struct {
	ExpiresAt time.Time
}

func (e *AccountExpiredError) Error() string {
	return fmt.Sprintf("账户已于 %s 过期，请联系管理员续期", e.ExpiresAt.Format("2006-01-02"))
}
