package plan

// Expression kinds carried in an attr payload's second slot.
const (
	ExprNone = iota
	ExprConst
	ExprName
	ExprRecordCoerce
	ExprCall
)

// BoolSlot encodes a flag as a payload slot.
func BoolSlot(b bool) int {
	if b {
		return 1
	}
	return 0
}
