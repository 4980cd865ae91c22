package ecs

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zyedidia/generic/mapset"
)

// CharacterSystem 实体调度器
//
// 职责：
//   - 注册实体时按顺序调用各插件的 OnSpawn
//   - 每帧按注册顺序驱动所有实体的插件 Tick
//   - 注销实体时调用 OnDespawn；迭代过程中的注销推迟到本帧迭代结束后执行
//   - 单个插件 panic 时记录日志并隔离，不影响其他插件和实体
type CharacterSystem struct {
	entities   []*Entity
	registered map[EntityID]*Entity

	pending      mapset.Set[EntityID]
	pendingOrder []EntityID
	iterating    bool
}

// NewCharacterSystem 创建调度器
func NewCharacterSystem() *CharacterSystem {
	return &CharacterSystem{
		registered: make(map[EntityID]*Entity),
		pending:    mapset.New[EntityID](),
	}
}

// Register 注册实体并执行插件的 OnSpawn（重复注册无效果）
func (s *CharacterSystem) Register(e *Entity) {
	if e == nil {
		return
	}
	if _, ok := s.registered[e.ID]; ok {
		return
	}
	s.registered[e.ID] = e
	s.entities = append(s.entities, e)

	for _, p := range e.plugins {
		s.safeCall(e, p, "OnSpawn", func() { p.OnSpawn(e) })
	}
}

// Unregister 注销实体
// 迭代过程中调用时只登记到待移除集合，本帧结束后统一执行
func (s *CharacterSystem) Unregister(e *Entity) {
	if e == nil {
		return
	}
	if _, ok := s.registered[e.ID]; !ok {
		return
	}
	if s.iterating {
		s.markPending(e.ID)
		return
	}
	s.despawn(e)
}

// IsRegistered 检查实体是否仍在调度中
func (s *CharacterSystem) IsRegistered(id EntityID) bool {
	_, ok := s.registered[id]
	return ok
}

// Len 返回调度中的实体数
func (s *CharacterSystem) Len() int { return len(s.registered) }

// Update 驱动一帧
// 迭代期间新注册的实体在本帧内也会被驱动；已标记待移除的实体被跳过
func (s *CharacterSystem) Update(dt float64) {
	s.iterating = true
	for i := 0; i < len(s.entities); i++ {
		e := s.entities[i]
		if s.pending.Has(e.ID) {
			continue
		}
		if !e.ViewValid() {
			log.Debug().Uint64("entity", uint64(e.ID)).Msg("[CharacterSystem] view invalidated, scheduling removal")
			s.markPending(e.ID)
			continue
		}
		for _, p := range e.plugins {
			if s.pending.Has(e.ID) {
				break
			}
			s.safeCall(e, p, "Tick", func() { p.Tick(dt) })
		}
	}
	s.iterating = false
	s.flushPending()
}

func (s *CharacterSystem) markPending(id EntityID) {
	if s.pending.Has(id) {
		return
	}
	s.pending.Put(id)
	s.pendingOrder = append(s.pendingOrder, id)
}

// flushPending 执行推迟的注销
// 注销回调中再次注销的实体在同一轮里一并处理
func (s *CharacterSystem) flushPending() {
	for len(s.pendingOrder) > 0 {
		id := s.pendingOrder[0]
		s.pendingOrder = s.pendingOrder[1:]
		s.pending.Remove(id)
		if e, ok := s.registered[id]; ok {
			s.despawn(e)
		}
	}
	s.pendingOrder = nil
}

func (s *CharacterSystem) despawn(e *Entity) {
	delete(s.registered, e.ID)
	for i, other := range s.entities {
		if other.ID == e.ID {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	for _, p := range e.plugins {
		s.safeCall(e, p, "OnDespawn", func() { p.OnDespawn() })
	}
}

func (s *CharacterSystem) safeCall(e *Entity, p Plugin, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Uint64("entity", uint64(e.ID)).
				Str("plugin", fmt.Sprintf("%T", p)).
				Str("stage", stage).
				Interface("panic", r).
				Msg("[CharacterSystem] plugin fault isolated")
		}
	}()
	fn()
}
