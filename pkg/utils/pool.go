package utils

// Pool 简单的对象复用池
// 取出时优先复用已归还的对象，归还时调用 reset 清理状态
type Pool[T any] struct {
	free  []T
	newFn func() T
	reset func(T)

	created int
}

// NewPool 创建对象池
// 参数:
//   - newFn: 池为空时创建新对象
//   - reset: 归还时重置对象（可为 nil）
func NewPool[T any](newFn func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{newFn: newFn, reset: reset}
}

// Get 取出一个对象
func (p *Pool[T]) Get() T {
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free = p.free[:n-1]
		return v
	}
	p.created++
	return p.newFn()
}

// Put 归还对象
func (p *Pool[T]) Put(v T) {
	if p.reset != nil {
		p.reset(v)
	}
	p.free = append(p.free, v)
}

// Idle 返回池中空闲对象数
func (p *Pool[T]) Idle() int { return len(p.free) }

// Created 返回累计新建的对象数
func (p *Pool[T]) Created() int { return p.created }
