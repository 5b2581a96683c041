package engine

import "sort"

// fifo is a queue of process indices.
type fifo struct {
	items []int
}

func newFIFO() *fifo {
	return &fifo{items: make([]int, 0)}
}

func (q *fifo) pushBack(i int) {
	q.items = append(q.items, i)
}

// pushFront puts i ahead of everything already queued.
func (q *fifo) pushFront(i int) {
	q.items = append(q.items, 0)
	copy(q.items[1:], q.items)
	q.items[0] = i
}

func (q *fifo) popFront() (int, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	i := q.items[0]
	q.items = q.items[1:]
	return i, true
}

func (q *fifo) len() int {
	return len(q.items)
}

// readySet is a multilevel ready structure: one FIFO per priority value.
// Lower values are served first.
type readySet struct {
	levels map[int]*fifo
	prios  []int // sorted ascending, only non-empty levels
	size   int
}

func newReadySet() *readySet {
	return &readySet{levels: make(map[int]*fifo)}
}

func (r *readySet) level(prio int) *fifo {
	q, ok := r.levels[prio]
	if !ok {
		q = newFIFO()
		r.levels[prio] = q
	}
	if q.len() == 0 {
		at := sort.SearchInts(r.prios, prio)
		r.prios = append(r.prios, 0)
		copy(r.prios[at+1:], r.prios[at:])
		r.prios[at] = prio
	}
	return q
}

func (r *readySet) pushBack(prio, i int) {
	r.level(prio).pushBack(i)
	r.size++
}

// pushFront gives i seniority over everything queued at its priority.
func (r *readySet) pushFront(prio, i int) {
	r.level(prio).pushFront(i)
	r.size++
}

// popFront removes the head of the lowest non-empty priority level.
func (r *readySet) popFront() (int, bool) {
	if r.size == 0 {
		return 0, false
	}
	prio := r.prios[0]
	q := r.levels[prio]
	i, _ := q.popFront()
	if q.len() == 0 {
		r.prios = r.prios[1:]
	}
	r.size--
	return i, true
}

func (r *readySet) len() int {
	return r.size
}
