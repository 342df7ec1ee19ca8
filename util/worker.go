package util

import (
	"sync"

	"github.com/mohitkumar/flowrt/logger"
	"go.uber.org/zap"
)

type Task any

// Worker is a single goroutine draining a buffered lane of tasks in order.
type Worker struct {
	name     string
	stop     chan struct{}
	wg       *sync.WaitGroup
	handler  func(Task) error
	taskChan chan Task
}

func NewWorker(name string, wg *sync.WaitGroup, handler func(Task) error, capacity int) *Worker {
	return &Worker{
		taskChan: make(chan Task, capacity),
		name:     name,
		wg:       wg,
		stop:     make(chan struct{}),
		handler:  handler,
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case task := <-w.taskChan:
				if err := w.handler(task); err != nil {
					logger.Error("error in executing task in worker", zap.String("worker", w.name), zap.Error(err))
				}
			case <-w.stop:
				logger.Info("stopping worker", zap.String("worker", w.name))
				return
			}
		}
	}()
}

// TrySend queues the task without blocking, it returns false when the lane is
// full or the worker is stopped.
func (w *Worker) TrySend(task Task) bool {
	select {
	case <-w.stop:
		return false
	default:
	}
	select {
	case w.taskChan <- task:
		return true
	default:
		return false
	}
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Stop() {
	close(w.stop)
}
