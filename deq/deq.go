// Package deq implements a named bundle of up to 8 FIFOs partitioned
// into up to 4 procs, each proc consumed by its own goroutine in a
// polling dequeue loop. It is the multi-queue scheduler
// underneath the frame-stream and video-encoder pipelines, modeled on
// the producer/consumer grouping used by ingest-style pipelines in the
// example corpus.
package deq

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// MaxQueues is the maximum number of FIFOs a Deq may hold.
	MaxQueues = 8
	// MaxProcs is the maximum number of procs a Deq may hold.
	MaxProcs = 4
)

// Strategy selects how a proc picks among its queues.
type Strategy int

const (
	// Breadth rotates across the proc's queues, servicing each queue
	// once per round (the default).
	Breadth Strategy = iota
	// Depth drains a queue completely before moving to the next.
	Depth
)

// Item is a unit of work carried through a Deq queue.
type Item struct {
	Type int
	Data any

	// Next lists items to enqueue once this item's callbacks have run.
	Next []Item
	// NextFirst chooses EnqueueFirst over Enqueue for Next items.
	NextFirst bool

	queue int
}

// isEmpty reports whether it is the dequeue_loop termination sentinel.
func (it Item) isEmpty() bool { return it.Type == 0 && it.Data == nil && it.Next == nil }

// Callback processes one dequeued item. Returning a non-nil error logs
// but never aborts the proc loop.
type Callback func(queue int, it Item) error

// Deq is a named bundle of FIFOs grouped into procs.
type Deq struct {
	Name string

	mu      sync.Mutex
	queues  []*queue
	procs   []*proc
	started bool
	group   *errgroup.Group
	cancel  func()
}

type queue struct {
	buf  []Item
	mu   sync.Mutex
	cond *sync.Cond
}

func newQueue(cap int) *queue {
	q := &queue{buf: make([]Item, 0, cap)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(it Item, front bool) {
	q.mu.Lock()
	if front {
		q.buf = append([]Item{it}, q.buf...)
	} else {
		q.buf = append(q.buf, it)
	}
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *queue) popFront() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return Item{}, false
	}
	it := q.buf[0]
	q.buf = q.buf[1:]
	return it, true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// proc owns a contiguous subset of the Deq's queues and is consumed by
// a single goroutine.
type proc struct {
	queueIdx   []int
	strategy   Strategy
	queueOff   int

	callbacks  map[[2]int]Callback // [queueIdx, itemType] -> cb
	defaultCB  Callback
	pre, post  Callback
	wait       func()
	maxWait    time.Duration
	batchBegin func()
	batchEnd   func()
}

// New creates an empty Deq with the given name.
func New(name string) *Deq { return &Deq{Name: name} }

// AddQueue appends a new FIFO of the given capacity, returning its
// index. It must be called before Start.
func (d *Deq) AddQueue(capacity int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := len(d.queues)
	if idx >= MaxQueues {
		panic("deq: too many queues")
	}
	d.queues = append(d.queues, newQueue(capacity))
	return idx
}

// AddProc creates a new proc owning the given queue indices (1-4 of
// them) and returns its index. It must be called before Start.
func (d *Deq) AddProc(queueIdx []int, strategy Strategy) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.procs) >= MaxProcs {
		panic("deq: too many procs")
	}
	if len(queueIdx) == 0 || len(queueIdx) > 4 {
		panic("deq: proc must own 1-4 queues")
	}
	p := &proc{
		queueIdx:  append([]int(nil), queueIdx...),
		strategy:  strategy,
		callbacks: make(map[[2]int]Callback),
		maxWait:   100 * time.Millisecond,
	}
	d.procs = append(d.procs, p)
	return len(d.procs) - 1
}

// SetCallback registers a callback for items of the given type
// dequeued from the given queue (relative index into AddProc's list).
func (d *Deq) SetCallback(procIdx, queueIdx, itemType int, cb Callback) {
	d.procs[procIdx].callbacks[[2]int{queueIdx, itemType}] = cb
}

// SetDefaultCallback registers the callback fired when no per-(queue,type)
// callback matches.
func (d *Deq) SetDefaultCallback(procIdx int, cb Callback) { d.procs[procIdx].defaultCB = cb }

// SetPrePost registers callbacks that fire around every dequeued item.
func (d *Deq) SetPrePost(procIdx int, pre, post Callback) {
	d.procs[procIdx].pre, d.procs[procIdx].post = pre, post
}

// SetWaitCallback registers a callback fired on each idle poll, while
// none of the proc's queues holds an item, e.g. to fire timers. Between
// polls the proc sleeps for the smaller of maxWait and 5ms, so the
// callback fires at intervals of at most maxWait.
func (d *Deq) SetWaitCallback(procIdx int, maxWait time.Duration, cb func()) {
	d.procs[procIdx].maxWait = maxWait
	d.procs[procIdx].wait = cb
}

// SetBatchCallbacks registers callbacks bracketing a batch dequeue of
// all items currently available on the proc's queues.
func (d *Deq) SetBatchCallbacks(procIdx int, begin, end func()) {
	d.procs[procIdx].batchBegin, d.procs[procIdx].batchEnd = begin, end
}

// Enqueue pushes it onto the back of queue queueIdx.
func (d *Deq) Enqueue(queueIdx int, it Item) {
	it.queue = queueIdx
	d.queues[queueIdx].push(it, false)
}

// EnqueueFirst pushes it onto the front of queue queueIdx.
func (d *Deq) EnqueueFirst(queueIdx int, it Item) {
	it.queue = queueIdx
	d.queues[queueIdx].push(it, true)
}

// QueueLen returns the number of pending items on the given queue.
func (d *Deq) QueueLen(queueIdx int) int { return d.queues[queueIdx].len() }

// Start launches one goroutine per proc, each running dequeueLoop.
// It returns immediately; call Stop to join.
func (d *Deq) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	g, gctx := errgroup.WithContext(ctx)
	d.group = g
	d.cancel = func() {}
	procs := append([]*proc(nil), d.procs...)
	d.mu.Unlock()

	for i, p := range procs {
		i, p := i, p
		g.Go(func() error { return d.dequeueLoop(gctx, i, p) })
	}
}

// Stop signals all procs to terminate by enqueuing the empty sentinel
// on each of their queues, then waits for their goroutines to return.
func (d *Deq) Stop() error {
	d.mu.Lock()
	procs := append([]*proc(nil), d.procs...)
	g := d.group
	d.mu.Unlock()
	for _, p := range procs {
		for _, qi := range p.queueIdx {
			d.queues[qi].push(Item{}, false)
		}
	}
	if g == nil {
		return nil
	}
	return g.Wait()
}

// dequeueLoop is the per-proc consumer: it polls the proc's queues,
// calling the wait callback and sleeping between polls while all are
// empty, dequeues exactly one item, fires its callbacks, and loops. It
// returns when the empty sentinel item is observed.
func (d *Deq) dequeueLoop(ctx context.Context, procIdx int, p *proc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		it, qi, found := d.pick(p)
		if !found {
			if p.wait != nil {
				p.wait()
			}
			time.Sleep(minDuration(p.maxWait, 5*time.Millisecond))
			continue
		}
		if it.isEmpty() {
			return nil
		}

		if p.pre != nil {
			_ = p.pre(qi, it)
		}
		cb, ok := p.callbacks[[2]int{qi, it.Type}]
		if !ok {
			cb = p.defaultCB
		}
		var err error
		if cb != nil {
			err = cb(qi, it)
		}
		if p.post != nil {
			_ = p.post(qi, it)
		}
		if err != nil {
			continue
		}
		for _, next := range it.Next {
			if it.NextFirst {
				d.EnqueueFirst(qi, next)
			} else {
				d.Enqueue(qi, next)
			}
		}
	}
}

// pick selects the next item according to the proc's strategy.
func (d *Deq) pick(p *proc) (Item, int, bool) {
	n := len(p.queueIdx)
	switch p.strategy {
	case Depth:
		for _, qi := range p.queueIdx {
			if it, ok := d.queues[qi].popFront(); ok {
				return it, qi, true
			}
		}
	default: // Breadth
		for i := 0; i < n; i++ {
			qi := p.queueIdx[(p.queueOff+i)%n]
			if it, ok := d.queues[qi].popFront(); ok {
				p.queueOff = (p.queueOff + i + 1) % n
				return it, qi, true
			}
		}
	}
	return Item{}, 0, false
}

// DequeueBatch drains all items currently available on the proc's
// queues, firing batch-begin/end callbacks around the drain and the
// usual per-item callbacks for each item.
func (d *Deq) DequeueBatch(procIdx int) int {
	p := d.procs[procIdx]
	if p.batchBegin != nil {
		p.batchBegin()
	}
	n := 0
	for {
		it, qi, found := d.pick(p)
		if !found || it.isEmpty() {
			break
		}
		n++
		if p.pre != nil {
			_ = p.pre(qi, it)
		}
		cb, ok := p.callbacks[[2]int{qi, it.Type}]
		if !ok {
			cb = p.defaultCB
		}
		var err error
		if cb != nil {
			err = cb(qi, it)
		}
		if p.post != nil {
			_ = p.post(qi, it)
		}
		if err != nil {
			continue
		}
		for _, next := range it.Next {
			if it.NextFirst {
				d.EnqueueFirst(qi, next)
			} else {
				d.Enqueue(qi, next)
			}
		}
	}
	if p.batchEnd != nil {
		p.batchEnd()
	}
	return n
}

func minDuration(a, b time.Duration) time.Duration {
	if a <= 0 {
		return b
	}
	if a < b {
		return a
	}
	return b
}
