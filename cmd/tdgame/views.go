package main

import (
	"github.com/gonewx/tdcore/pkg/ecs"
)

// debugView 调试窗口中的实体表现，只记录归属和有效性
type debugView struct {
	id    ecs.EntityID
	valid bool
}

func (v *debugView) Valid() bool { return v.valid }

// viewPool 调试表现分配器
type viewPool struct {
	live map[ecs.EntityID]*debugView
}

func newViewPool() *viewPool {
	return &viewPool{live: make(map[ecs.EntityID]*debugView)}
}

func (p *viewPool) Acquire(e *ecs.Entity) ecs.View {
	v := &debugView{id: e.ID, valid: true}
	p.live[e.ID] = v
	return v
}

func (p *viewPool) Release(view ecs.View) {
	v, ok := view.(*debugView)
	if !ok {
		return
	}
	v.valid = false
	delete(p.live, v.id)
}

// Len 存活的表现数量
func (p *viewPool) Len() int { return len(p.live) }
