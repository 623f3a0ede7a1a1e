// Package alert 全局提示条：同一时间只显示一条，按时自动关闭。
package alert

import (
	"sync"
	"time"
)

// Severity 提示级别
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

// DefaultDismissAfter 默认自动关闭时间
const DefaultDismissAfter = 3 * time.Second

// Alert 当前提示
type Alert struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Severity Severity  `json:"severity"`
	ShownAt  time.Time `json:"shown_at"`
}

// Center 提示中心，并发安全
type Center struct {
	mu           sync.Mutex
	current      *Alert
	generation   uint64
	timer        *time.Timer
	dismissAfter time.Duration
	now          func() time.Time
}

// NewCenter dismissAfter<=0 时使用默认值
func NewCenter(dismissAfter time.Duration) *Center {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Center{dismissAfter: dismissAfter, now: time.Now}
}

// Show 显示提示，替换当前提示并重新计时
// 旧提示的计时器到期时只会关闭它自己那一代，不会误关新提示
func (c *Center) Show(title, content string, severity Severity) {
	switch severity {
	case SeverityError, SeveritySuccess, SeverityInfo:
	default:
		severity = SeverityError
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	gen := c.generation
	c.current = &Alert{Title: title, Content: content, Severity: severity, ShownAt: c.now()}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.dismissAfter, func() { c.expire(gen) })
}

// Error 显示错误提示
func (c *Center) Error(title, content string) { c.Show(title, content, SeverityError) }

// Success 显示成功提示
func (c *Center) Success(title, content string) { c.Show(title, content, SeveritySuccess) }

// Hide 立即关闭
func (c *Center) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Current 当前显示的提示
func (c *Center) Current() (Alert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Alert{}, false
	}
	return *c.current, true
}

func (c *Center) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.current = nil
	c.timer = nil
}
