package game

// State 对局状态
type State int

const (
	// StatePlaying 对局进行中
	StatePlaying State = iota
	// StateWon 胜利：所有计划中的敌人都已生成并被消灭
	StateWon
	// StateLost 失败：基地失守
	StateLost
)

func (s State) String() string {
	switch s {
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	default:
		return "playing"
	}
}

// Ended 对局是否已结束（胜负互斥，结束后不再变化）
func (s State) Ended() bool {
	return s != StatePlaying
}
