package systems

// Updatable 每帧更新的系统
type Updatable interface {
	Update(dt float64)
}

// SystemRunner 按注册顺序驱动系统（重复注册无效果）
type SystemRunner struct {
	systems []Updatable
}

// NewSystemRunner 创建系统驱动器
func NewSystemRunner(systems ...Updatable) *SystemRunner {
	r := &SystemRunner{}
	for _, s := range systems {
		r.Register(s)
	}
	return r
}

// Register 注册系统
func (r *SystemRunner) Register(s Updatable) {
	if s == nil {
		return
	}
	for _, existing := range r.systems {
		if existing == s {
			return
		}
	}
	r.systems = append(r.systems, s)
}

// Update 依次驱动所有系统
func (r *SystemRunner) Update(dt float64) {
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// Len 已注册的系统数
func (r *SystemRunner) Len() int { return len(r.systems) }
