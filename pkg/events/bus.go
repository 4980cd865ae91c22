package events

import (
	"reflect"
)

// Bus 同步事件总线
// 按事件类型分发，投递顺序即订阅顺序，不排队、不异步；处理函数内可以再次发布事件。
// 仅在模拟线程上使用，不加锁。
type Bus struct {
	handlers  map[reflect.Type][]handlerEntry
	nextToken uint64
}

type handlerEntry struct {
	token uint64
	fn    any
}

// Subscription 订阅句柄，用于取消订阅
type Subscription struct {
	bus   *Bus
	typ   reflect.Type
	token uint64
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]handlerEntry)}
}

// Subscribe 订阅类型为 T 的事件
func Subscribe[T any](b *Bus, fn func(T)) Subscription {
	typ := typeOf[T]()
	b.nextToken++
	b.handlers[typ] = append(b.handlers[typ], handlerEntry{token: b.nextToken, fn: fn})
	return Subscription{bus: b, typ: typ, token: b.nextToken}
}

// Publish 把事件同步投递给当前全部订阅者
// 投递过程中新增的订阅者不会收到本次事件
func Publish[T any](b *Bus, ev T) {
	list := b.handlers[typeOf[T]()]
	for _, h := range list {
		h.fn.(func(T))(ev)
	}
}

// Unsubscribe 取消订阅（重复调用无效果）
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	list := s.bus.handlers[s.typ]
	for i, h := range list {
		if h.token == s.token {
			next := make([]handlerEntry, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			s.bus.handlers[s.typ] = next
			return
		}
	}
}

// SubscriberCount 返回类型 T 的订阅者数量
func SubscriberCount[T any](b *Bus) int {
	return len(b.handlers[typeOf[T]()])
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
