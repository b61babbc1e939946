package battle

import (
	"container/heap"
	"time"
)

// task - отложенный вызов в виртуальном времени
type task struct {
	due   time.Time
	seq   uint64 // порядок постановки, чтобы задачи с одним временем шли FIFO
	every time.Duration
	group *Group
	fn    func(now time.Time)
	index int // индекс в куче (нужен для heap.Remove)
}

// taskQueue реализует heap.Interface, минимальная куча по времени
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil // избегаем утечки памяти
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler - очередь задач в виртуальном времени. Сам по себе не запускает
// горутин: задачи выполняются только внутри RunDue, поэтому все колбэки идут
// последовательно под мьютексом владельца
type Scheduler struct {
	queue taskQueue
	seq   uint64
	now   time.Time
}

// NewScheduler создает пустую очередь, now - начальное виртуальное время
func NewScheduler(now time.Time) *Scheduler {
	return &Scheduler{now: now}
}

// Now - текущее виртуальное время (внутри колбэка это время срабатывания задачи)
func (s *Scheduler) Now() time.Time { return s.now }

// Pending - сколько задач еще стоит в очереди
func (s *Scheduler) Pending() int { return len(s.queue) }

// NextDue - время ближайшей задачи
func (s *Scheduler) NextDue() (time.Time, bool) {
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].due, true
}

// NewGroup создает корневую группу задач
func (s *Scheduler) NewGroup() *Group {
	return &Group{s: s, tasks: make(map[*task]struct{})}
}

// RunDue выполняет по порядку все задачи со временем <= until.
// Задачи, поставленные из колбэков, тоже выполняются если успевают
func (s *Scheduler) RunDue(until time.Time) int {
	ran := 0
	for len(s.queue) > 0 && !s.queue[0].due.After(until) {
		t := heap.Pop(&s.queue).(*task)
		delete(t.group.tasks, t)
		if t.due.After(s.now) {
			s.now = t.due
		}

		if t.every > 0 {
			// переставляем до вызова, чтобы Cancel внутри колбэка ее убрал
			t.due = t.due.Add(t.every)
			s.push(t)
		}
		t.fn(s.now)
		ran++
	}
	if until.After(s.now) {
		s.now = until
	}
	return ran
}

func (s *Scheduler) push(t *task) {
	s.seq++
	t.seq = s.seq
	t.group.tasks[t] = struct{}{}
	heap.Push(&s.queue, t)
}

// Group - набор задач одного владельца (матч, раунд, ход).
// Cancel синхронно убирает из очереди все задачи группы и дочерних групп
type Group struct {
	s         *Scheduler
	parent    *Group
	children  []*Group
	tasks     map[*task]struct{}
	cancelled bool
}

// NewGroup создает дочернюю группу, она отменяется вместе с родителем
func (g *Group) NewGroup() *Group {
	child := &Group{s: g.s, parent: g, tasks: make(map[*task]struct{})}
	if g.cancelled {
		child.cancelled = true
		return child
	}
	g.children = append(g.children, child)
	return child
}

// After ставит одноразовую задачу через d от текущего виртуального времени
func (g *Group) After(d time.Duration, fn func(now time.Time)) {
	if g.cancelled {
		return
	}
	g.s.push(&task{due: g.s.now.Add(d), group: g, fn: fn})
}

// Every ставит периодическую задачу, первый запуск через d
func (g *Group) Every(d time.Duration, fn func(now time.Time)) {
	if g.cancelled || d <= 0 {
		return
	}
	g.s.push(&task{due: g.s.now.Add(d), every: d, group: g, fn: fn})
}

// Cancel снимает все задачи группы. Повторный вызов ничего не делает
func (g *Group) Cancel() {
	if g.cancelled {
		return
	}
	g.cancelled = true
	for t := range g.tasks {
		if t.index >= 0 {
			heap.Remove(&g.s.queue, t.index)
		}
		delete(g.tasks, t)
	}
	children := g.children
	g.children = nil
	for _, child := range children {
		child.Cancel()
	}
	if g.parent != nil {
		g.parent.detach(g)
	}
}

func (g *Group) detach(child *Group) {
	for i, c := range g.children {
		if c == child {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return
		}
	}
}

// Cancelled - была ли группа отменена
func (g *Group) Cancelled() bool { return g.cancelled }

// Len - количество задач группы в очереди (без дочерних)
func (g *Group) Len() int { return len(g.tasks) }
