package ecs

// IDAllocator 单调递增的实体ID分配器
type IDAllocator struct {
	nextID uint64
}

// NewIDAllocator 创建分配器，ID从1开始,0保留为无效ID
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{nextID: 1}
}

// Next 分配下一个ID
func (a *IDAllocator) Next() EntityID {
	id := EntityID(a.nextID)
	a.nextID++
	return id
}
