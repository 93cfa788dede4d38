package worker

import (
	"context"

	"github.com/edublock/edublock/foundation/blockchain/peer"
)

// resolveOperations handles longest-chain consensus passes.
func (w *Worker) resolveOperations() {
	w.evHandler("worker: resolveOperations: G started")
	defer w.evHandler("worker: resolveOperations: G completed")

	for {
		select {
		case <-w.resolve:
			if !w.isShutdown() {
				w.runResolveOperation()
			}
		case <-w.shut:
			w.evHandler("worker: resolveOperations: received shut signal")
			return
		}
	}
}

// runResolveOperation queries the known peers for a strictly longer valid
// chain and adopts it if one exists.
func (w *Worker) runResolveOperation() {
	w.evHandler("worker: runResolveOperation: started")
	defer w.evHandler("worker: runResolveOperation: completed")

	replaced, err := w.state.ResolveConflicts(context.Background())
	if err != nil {
		w.evHandler("worker: runResolveOperation: ERROR: %s", err)
		return
	}

	if replaced {
		w.evHandler("worker: runResolveOperation: chain replaced: length[%d]", w.state.ChainLength())
	}
}

// =============================================================================

// healthOperations drops known peers that stopped responding.
func (w *Worker) healthOperations() {
	w.evHandler("worker: healthOperations: G started")
	defer w.evHandler("worker: healthOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runHealthOperation()
			}
		case <-w.shut:
			w.evHandler("worker: healthOperations: received shut signal")
			return
		}
	}
}

// runHealthOperation probes every known peer and removes the dead ones.
func (w *Worker) runHealthOperation() {
	w.evHandler("worker: runHealthOperation: started")
	defer w.evHandler("worker: runHealthOperation: completed")

	for host, healthy := range w.state.NetCheckPeerHealth(context.Background()) {
		if healthy {
			continue
		}

		if pr, ok := peer.New(host); ok {
			w.state.RemoveKnownPeer(pr)
			w.evHandler("worker: runHealthOperation: removed dead peer[%s]", host)
		}
	}
}
