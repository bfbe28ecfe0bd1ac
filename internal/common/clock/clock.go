package clock

import "time"

// Clock 显式时间源：业务代码不直接调用 time.Now()，便于测试注入固定时间。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real 返回系统时钟。
func Real() Clock { return realClock{} }

// Fixed 返回固定时间的时钟（测试用）。
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
