package service

import (
	"fmt"
	"math"
	"time"

	"invest-portal/internal/dto"
)

// 临期提醒阈值（天）
const expiryWarningDays = 7

// DaysRemaining 计算距过期的剩余天数，按自然天向上取整。
// expiresAt 早于或等于 now 时返回 ≤0。
func DaysRemaining(expiresAt, now time.Time) int {
	return int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
}

// IsExpired 过期判定。过期时刻等于当前时刻也算过期（剩余 0 天不是提醒，是拒绝）。
func IsExpired(expiresAt, now time.Time) bool {
	return !expiresAt.After(now)
}

// NewExpiryWarning 生成临期提醒。
// 仅在账户未过期且剩余天数落在 [1, 7] 区间时返回非 nil。
func NewExpiryWarning(expiresAt, now time.Time) *dto.ExpiryWarning {
	if IsExpired(expiresAt, now) {
		return nil
	}
	days := DaysRemaining(expiresAt, now)
	if days < 1 || days > expiryWarningDays {
		return nil
	}
	return &dto.ExpiryWarning{
		DaysRemaining: days,
		ExpiresAt:     expiresAt,
		Message:       fmt.Sprintf("您的账户将在 %d 天后过期，请联系管理员续期", days),
	}
}
