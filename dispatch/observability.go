package dispatch

import "sync"

// CallObservation captures one dispatched call's outcome.
type CallObservation struct {
	CallID     string
	Function   string
	Page       string
	Status     Status
	ErrorCode  string
	ExitCode   int
	DurationMS int64
	Dockerized bool
}

// Observer receives call-level observability events.
type Observer interface {
	ObserveCall(observation CallObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveCall(CallObservation) {}

var (
	observerMu     sync.RWMutex
	activeObserver Observer = noopObserver{}
)

// SetObserver sets the process-wide call observer. Passing nil restores
// the no-op observer.
func SetObserver(observer Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	if observer == nil {
		activeObserver = noopObserver{}
		return
	}
	activeObserver = observer
}

func emitCallObservation(observation CallObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveCall(observation)
}
