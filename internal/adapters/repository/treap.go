package repository

// Treap ordered by (chip seconds ASC, seq ASC). In-order traversal yields
// results from fastest to slowest with ingestion order breaking ties.

type key struct {
	chip int
	seq  int
}

func (a key) less(b key) bool {
	if a.chip != b.chip {
		return a.chip < b.chip
	}
	return a.seq < b.seq
}

type node struct {
	key   key
	idx   int // position in the race's result slice
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// priority scrambles seq (splitmix64) so inserts in chip order stay balanced
// while the tree shape stays deterministic.
func priority(seq int) uint64 {
	z := uint64(seq) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func insert(n *node, k key, idx int) *node {
	if n == nil {
		return &node{key: k, idx: idx, prio: priority(k.seq), size: 1}
	}
	if k.less(n.key) {
		n.left = insert(n.left, k, idx)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, idx)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// walk visits nodes in order until visit returns false.
func walk(n *node, visit func(idx int) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n.idx) {
		return false
	}
	return walk(n.right, visit)
}
