// Package workerpool provides a bounded goroutine pool for I/O fan-out.
//
// A Pool runs at most size tasks at once. Task errors, and panics turned
// into errors, are collected and returned by Shutdown:
//
//	pool := workerpool.New(4)
//	for _, f := range files {
//	    if err := pool.SubmitWait(func() error { return disk.Put(f.Name, f.Data) }); err != nil {
//	        break
//	    }
//	}
//	if err := pool.Shutdown(); err != nil {
//	    return err
//	}
package workerpool

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is returned by SubmitWait after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func() error
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}

	mu   sync.Mutex
	errs []error
}

// New creates a Pool with the given number of workers. A size below one
// is treated as one.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		tasks:   make(chan func() error, size),
		closeCh: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// SubmitWait enqueues task, blocking until a slot is available.
func (p *Pool) SubmitWait(task func() error) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case p.tasks <- task:
		return nil
	}
}

// Shutdown stops accepting tasks, waits for the queued ones to finish and
// returns their joined errors. Later calls return the same result.
func (p *Pool) Shutdown() error {
	p.once.Do(func() {
		close(p.closeCh)
		close(p.tasks)
		p.wg.Wait()
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := safeRun(task); err != nil {
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
		}
	}
}

// safeRun executes task, turning a panic into an error so the worker keeps
// draining.
func safeRun(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workerpool: task panicked: %v", r)
		}
	}()
	return task()
}
