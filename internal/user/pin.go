package user

import (
	"strings"
)

const (
	pinMinLen = 4
	pinMaxLen = 6
)

// NormalizePIN 去除空白并校验 PIN 格式（4-6 位数字）。
// 合法返回规范化后的 PIN，否则返回 false。
func NormalizePIN(pin string) (string, bool) {
	pin = strings.TrimSpace(pin)
	if len(pin) < pinMinLen || len(pin) > pinMaxLen {
		return "", false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return pin, true
}

// MatchPIN 等值比对。门店场景按原样比较，不做哈希。
func MatchPIN(stored, given string) bool {
	g, ok := NormalizePIN(given)
	if !ok {
		return false
	}
	return stored == g
}
