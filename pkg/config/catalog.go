package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownArchetype 引用了目录中不存在的原型
var ErrUnknownArchetype = errors.New("unknown archetype")

// Catalog 原型目录
type Catalog struct {
	archetypes map[string]*Archetype
}

type catalogFile struct {
	Archetypes []*Archetype `yaml:"archetypes"`
}

// NewCatalog 由原型列表创建目录（ID 重复或为空时返回错误）
func NewCatalog(archetypes ...*Archetype) (*Catalog, error) {
	c := &Catalog{archetypes: make(map[string]*Archetype, len(archetypes))}
	for i, a := range archetypes {
		if a == nil {
			return nil, fmt.Errorf("archetype %d: nil entry", i)
		}
		if a.ID == "" {
			return nil, fmt.Errorf("archetype %d: id is required", i)
		}
		if _, dup := c.archetypes[a.ID]; dup {
			return nil, fmt.Errorf("archetype %d: duplicate id %q", i, a.ID)
		}
		applyArchetypeDefaults(a)
		c.archetypes[a.ID] = a
	}
	return c, nil
}

// LoadCatalog 从 YAML 文件加载原型目录
func LoadCatalog(filepath string) (*Catalog, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read archetype catalog %s: %w", filepath, err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("invalid archetype catalog in %s: %w", filepath, err)
	}
	return catalog, nil
}

// ParseCatalog 解析 YAML 格式的原型目录
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse archetype YAML: %w", err)
	}
	if len(file.Archetypes) == 0 {
		return nil, fmt.Errorf("at least one archetype is required")
	}
	return NewCatalog(file.Archetypes...)
}

// Get 按 ID 查找原型
func (c *Catalog) Get(id string) (*Archetype, bool) {
	a, ok := c.archetypes[id]
	return a, ok
}

// Lookup 按 ID 查找原型，不存在时返回包装了 ErrUnknownArchetype 的错误
func (c *Catalog) Lookup(id string) (*Archetype, error) {
	a, ok := c.archetypes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, id)
	}
	return a, nil
}

// IDs 返回排序后的原型 ID 列表
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.archetypes))
	for id := range c.archetypes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
