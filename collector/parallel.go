package collector

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

type ParallelProcessor struct {
	maxWorkers  int
	workerQueue chan *RawMessage
	processors  []*PostProcessor
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewParallelProcessor(ctx context.Context, maxWorkers int, maxQueueSize int, config Config, postChan chan interface{}) *ParallelProcessor {
	ctx, cancel := context.WithCancel(ctx)

	pp := &ParallelProcessor{
		maxWorkers:  maxWorkers,
		workerQueue: make(chan *RawMessage, maxQueueSize),
		processors:  make([]*PostProcessor, maxWorkers),
		ctx:         ctx,
		cancel:      cancel,
	}

	// Each worker gets its own processor so the zstd decoders and scorers
	// are never shared across goroutines
	for i := 0; i < maxWorkers; i++ {
		pp.processors[i] = NewPostProcessor(ctx, config, postChan)
	}

	return pp
}

func (pp *ParallelProcessor) start() {
	for i, processor := range pp.processors {
		go pp.startWorker(i, processor)
	}
}

func (pp *ParallelProcessor) startWorker(id int, processor *PostProcessor) {
	pp.wg.Add(1)
	defer pp.wg.Done()

	for {
		select {
		case <-pp.ctx.Done():
			log.Infof("Worker %d: Shutting down", id)
			return
		case msg := <-pp.workerQueue:
			if err := processor.processMessage(msg); err != nil {
				log.Warnf("Worker %d: Skipping message: %v", id, err)
			}
		}
	}
}
