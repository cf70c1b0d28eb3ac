package vars

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/pkg/errors"
)

// KVBridge mirrors a JetStream key-value bucket into a Store
// Entries arrive on the watcher goroutine and are staged; Pump applies them
// from the simulation thread so watchers never fire concurrently with a tick
type KVBridge struct {
	store   *Store
	watcher jetstream.KeyWatcher
	logger  *log.Logger

	mu      sync.Mutex
	pending []stagedEntry

	running   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type stagedEntry struct {
	key     string
	value   string
	deleted bool
}

// NewKVBridge creates a bridge; call Start to begin consuming the watcher
func NewKVBridge(store *Store, watcher jetstream.KeyWatcher, logger *log.Logger) *KVBridge {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &KVBridge{
		store:   store,
		watcher: watcher,
		logger:  logger.WithPrefix("kv"),
		done:    make(chan struct{}),
	}
}

// Start launches the staging goroutine
func (b *KVBridge) Start() {
	if !b.running.CompareAndSwap(false, true) {
		return
	}
	b.wg.Add(1)
	go b.run()
}

func (b *KVBridge) run() {
	defer b.wg.Done()

	updates := b.watcher.Updates()
	for {
		select {
		case <-b.done:
			return
		case entry, ok := <-updates:
			if !ok {
				b.logger.Debug("watcher closed")
				return
			}
			// nil marks the end of the initial snapshot
			if entry == nil {
				b.logger.Debug("initial values received")
				continue
			}
			b.stage(entry)
		}
	}
}

func (b *KVBridge) stage(entry jetstream.KeyValueEntry) {
	staged := stagedEntry{key: entry.Key()}
	switch entry.Operation() {
	case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
		staged.deleted = true
	default:
		staged.value = string(entry.Value())
	}

	b.mu.Lock()
	b.pending = append(b.pending, staged)
	b.mu.Unlock()
}

// Pending returns the number of staged entries
func (b *KVBridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Pump applies staged entries in arrival order and returns how many were applied
func (b *KVBridge) Pump() int {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, e := range batch {
		if e.deleted {
			b.store.Unset(e.key)
			continue
		}
		b.store.Set(e.key, e.value)
	}
	if len(batch) > 0 {
		b.logger.Debug("applied variables", "count", len(batch))
	}
	return len(batch)
}

// Close stops the watcher and waits for the staging goroutine
func (b *KVBridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.watcher.Stop()
		b.wg.Wait()
	})
	return err
}

// WatchBucket connects to a NATS server and watches every key in bucket
// The returned release func stops the watcher and closes the connection
func WatchBucket(ctx context.Context, url, bucket string) (jetstream.KeyWatcher, func(), error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "connect %s", url)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, errors.Wrap(err, "jetstream")
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		nc.Close()
		return nil, nil, errors.Wrapf(err, "open bucket %s", bucket)
	}

	w, err := kv.WatchAll(ctx)
	if err != nil {
		nc.Close()
		return nil, nil, errors.Wrapf(err, "watch bucket %s", bucket)
	}

	release := func() {
		_ = w.Stop()
		nc.Close()
	}
	return w, release, nil
}
