package mcts2048

import (
	"container/list"
	"math/rand"
	"sync"

	"github.com/twozerofoureight/go-mcts2048/pkg/env2048"
)

// Pool is a fixed-size worker pool draining a FIFO task queue guarded
// by a mutex and condition variable — the idiomatic Go replacement for
// a std::condition_variable-backed queue. Each worker gets its own
// *rand.Rand and scratch *env2048.Env so concurrent expansion never
// contends on randomness or rollout state.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *list.List
	stopped bool
	wg      sync.WaitGroup
}

// newPool starts numWorkers goroutines, each calling run(task, rng, env)
// for every Task it dequeues until Stop is called.
func newPool(numWorkers int, seed int64, run func(task *Task, rng *rand.Rand, env *env2048.Env)) *Pool {
	p := &Pool{tasks: list.New()}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < numWorkers; i++ {
		rng := rand.New(rand.NewSource(seed + int64(i) + 1))
		env := env2048.New(rand.New(rand.NewSource(seed + int64(i) + 1)))
		p.wg.Add(1)
		go p.worker(rng, env, run)
	}
	return p
}

func (p *Pool) worker(rng *rand.Rand, env *env2048.Env, run func(task *Task, rng *rand.Rand, env *env2048.Env)) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.tasks.Len() == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}
		front := p.tasks.Front()
		p.tasks.Remove(front)
		p.mu.Unlock()

		run(front.Value.(*Task), rng, env)
	}
}

// Enqueue adds task to the back of the queue and wakes one worker.
func (p *Pool) Enqueue(task *Task) {
	p.mu.Lock()
	p.tasks.PushBack(task)
	p.mu.Unlock()
	p.cond.Signal()
}

// Stop signals every worker to exit once its current task (if any)
// finishes, and waits for them all to return.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}
