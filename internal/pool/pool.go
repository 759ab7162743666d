package pool

import (
	"sync"
)

// Pool is a typed sync.Pool. Values are reset before they are handed out.
type Pool[T any] struct {
	syncPool *sync.Pool
	reset    func(v T)
}

type PoolOption[T any] func(pool *Pool[T])

// WithReset sets the function applied to a value before Get returns it.
func WithReset[T any](reset func(v T)) PoolOption[T] {
	return func(pool *Pool[T]) {
		pool.reset = reset
	}
}

func New[T any](newFunc func() T, options ...PoolOption[T]) *Pool[T] {
	p := &Pool[T]{
		syncPool: &sync.Pool{
			New: func() any {
				return newFunc()
			},
		},
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

func (p *Pool[T]) Get() T {
	v := p.syncPool.Get().(T)
	if p.reset != nil {
		p.reset(v)
	}
	return v
}

func (p *Pool[T]) Put(v T) {
	p.syncPool.Put(v)
}
