package usecase

import (
	"context"
	"sync"
	"time"
)

const DefaultDuplicateDebounce = 500 * time.Millisecond

type DuplicateCheckerInterface interface {
	Check(ctx context.Context, in DuplicateCheckInput) DuplicateVerdict
}

// DuplicateWatcher acompanha um formulário sendo digitado: agrupa as mudanças
// com debounce e só publica o veredito da execução mais recente.
// Execuções antigas que terminam depois são descartadas pelo número de sequência.
type DuplicateWatcher struct {
	checker DuplicateCheckerInterface
	delay   time.Duration
	publish func(DuplicateVerdict)

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	closed bool

	// serializa as publicações para que um veredito velho nunca saia depois de um novo
	deliverMu sync.Mutex
}

func NewDuplicateWatcher(ctx context.Context, checker DuplicateCheckerInterface, delay time.Duration, publish func(DuplicateVerdict)) *DuplicateWatcher {
	if delay <= 0 {
		delay = DefaultDuplicateDebounce
	}
	ctx, cancel := context.WithCancel(ctx)
	return &DuplicateWatcher{
		checker: checker,
		delay:   delay,
		publish: publish,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Update registra a entrada mais recente e reinicia o debounce.
func (w *DuplicateWatcher) Update(in DuplicateCheckInput) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.seq++
	seq := w.seq
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	pending := checkingVerdict(in)
	w.deliver(seq, pending)
	if !pending.Checking {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.seq != seq {
		return
	}
	w.timer = time.AfterFunc(w.delay, func() { w.run(seq, in) })
}

// Close para o timer pendente e invalida qualquer execução em andamento.
func (w *DuplicateWatcher) Close() {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.cancel()
}

func (w *DuplicateWatcher) run(seq uint64, in DuplicateCheckInput) {
	if !w.isLatest(seq) {
		return
	}
	verdict := w.checker.Check(w.ctx, in)
	w.deliver(seq, verdict)
}

func (w *DuplicateWatcher) isLatest(seq uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.closed && w.seq == seq
}

func (w *DuplicateWatcher) deliver(seq uint64, v DuplicateVerdict) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()
	if !w.isLatest(seq) {
		return
	}
	w.publish(v)
}
