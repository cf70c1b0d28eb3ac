package event

import (
	"math/bits"
	"sync/atomic"
)

const (
	// DefaultQueueSize is the capacity used when none is configured
	DefaultQueueSize = 1024
	// MinQueueSize bounds small configured capacities
	MinQueueSize = 16
)

// EventQueue is a lock-free MPSC ring buffer of shot events
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK
//   - Consume: Single consumer (the session owner)
//   - Published flags prevent reading partial writes
//
// Overflow: oldest events are overwritten and counted in Dropped
type EventQueue struct {
	events    []GameEvent
	published []atomic.Bool // True = slot fully written
	mask      uint64
	head      atomic.Uint64 // Read index
	tail      atomic.Uint64 // Write index
	dropped   atomic.Uint64
}

// NewEventQueue creates a queue holding at least capacity events
// Capacity rounds up to a power of two; zero or negative selects DefaultQueueSize
func NewEventQueue(capacity int) *EventQueue {
	size := queueSize(capacity)
	return &EventQueue{
		events:    make([]GameEvent, size),
		published: make([]atomic.Bool, size),
		mask:      uint64(size - 1),
	}
}

func queueSize(capacity int) int {
	switch {
	case capacity <= 0:
		return DefaultQueueSize
	case capacity < MinQueueSize:
		return MinQueueSize
	}
	return 1 << bits.Len(uint(capacity-1))
}

// Capacity returns the ring size
func (eq *EventQueue) Capacity() int {
	return len(eq.events)
}

// Dropped returns how many unread events were overwritten
func (eq *EventQueue) Dropped() uint64 {
	return eq.dropped.Load()
}

// Push adds event using lock-free CAS with published flags pattern
func (eq *EventQueue) Push(event GameEvent) {
	size := uint64(len(eq.events))
	for {
		currentTail := eq.tail.Load()
		nextTail := currentTail + 1

		if eq.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & eq.mask

			eq.events[idx] = event
			eq.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread events
			currentHead := eq.head.Load()
			if nextTail-currentHead > size {
				if eq.head.CompareAndSwap(currentHead, nextTail-size) {
					eq.dropped.Add(nextTail - size - currentHead)
				}
			}
			return
		}
	}
}

// Consume returns all pending events in FIFO order and advances head
// Single consumer only
func (eq *EventQueue) Consume() []GameEvent {
	size := uint64(len(eq.events))
	for {
		currentHead := eq.head.Load()
		currentTail := eq.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		available := currentTail - currentHead
		if available > size {
			available = size
			currentHead = currentTail - size
		}

		result := make([]GameEvent, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (currentHead + i) & eq.mask
			if !eq.published[idx].Load() {
				break // Writer incomplete
			}
			result = append(result, eq.events[idx])
			eq.published[idx].Store(false)
		}

		if eq.head.CompareAndSwap(currentHead, currentHead+uint64(len(result))) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Len returns approximate pending event count
func (eq *EventQueue) Len() int {
	head := eq.head.Load()
	tail := eq.tail.Load()
	if tail <= head {
		return 0
	}
	size := uint64(len(eq.events))
	if diff := tail - head; diff < size {
		return int(diff)
	}
	return int(size)
}
