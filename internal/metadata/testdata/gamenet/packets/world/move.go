package world

type Vector3 struct {
	X, Y, Z float32
	Length  float32
}

type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

type Node struct {
	Value int64
}

// MoveStatePacket reports a movement change.
type MoveStatePacket struct {
	Position Vector3
	Angle    float32
	Extra    Pair[string, uint16]
	Node     *Node
}
