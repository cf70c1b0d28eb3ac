package engine

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lixenwraith/tankarena/dyncolor"
	"github.com/lixenwraith/tankarena/event"
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/shot"
	"github.com/lixenwraith/tankarena/vars"
	"github.com/lixenwraith/tankarena/vmath"
)

// Pumper applies externally staged variable changes on the simulation thread
type Pumper interface {
	Pump() int
}

// Options configures a Simulation; zero values select defaults
type Options struct {
	Player uint8 // id stamped on locally fired shots
	Team   int16
	Clock  *Clock
	Vars   *vars.Store
	Outbox shot.Outbox
	Bridge Pumper
	Logger *log.Logger

	EventCapacity int // event ring size; rounded up to a power of two
}

// entry is one shot tracked by the simulation
type entry struct {
	local   *shot.LocalPath
	remote  *shot.RemotePath
	bounces uint16
}

func (e *entry) path() *shot.Path {
	if e.local != nil {
		return e.local.Path
	}
	return e.remote.Path
}

// Simulation owns the dynamic colors and shots of one session
// Step, Fire and the accessors must be called from a single goroutine
// Receive is safe from any goroutine
type Simulation struct {
	player uint8
	team   int16
	nextID uint16

	clock  *Clock
	vars   *vars.Store
	colors *dyncolor.Manager
	events *event.EventQueue
	outbox shot.Outbox
	bridge Pumper
	logger *log.Logger

	shots map[shot.Key]*entry
	order []shot.Key // firing order

	inboxMu sync.Mutex
	inbox   []*network.Message
}

// NewSimulation creates an empty session
func NewSimulation(opts Options) *Simulation {
	if opts.Clock == nil {
		opts.Clock = NewClock(nil)
	}
	if opts.Vars == nil {
		opts.Vars = vars.NewDefaultStore()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Simulation{
		player: opts.Player,
		team:   opts.Team,
		clock:  opts.Clock,
		vars:   opts.Vars,
		colors: dyncolor.NewManager(opts.Vars, opts.Clock),
		events: event.NewEventQueue(opts.EventCapacity),
		outbox: opts.Outbox,
		bridge: opts.Bridge,
		logger: opts.Logger.WithPrefix("sim"),
		shots:  make(map[shot.Key]*entry),
	}
}

func (s *Simulation) Clock() *Clock {
	return s.clock
}

func (s *Simulation) Vars() *vars.Store {
	return s.vars
}

func (s *Simulation) Colors() *dyncolor.Manager {
	return s.colors
}

// Events returns the queue the simulation publishes to
func (s *Simulation) Events() *event.EventQueue {
	return s.events
}

func (s *Simulation) ShotCount() int {
	return len(s.order)
}

// Now returns the session step time
func (s *Simulation) Now() float64 {
	return s.clock.StepTime()
}

func (s *Simulation) emit(t event.EventType, p any) {
	s.events.Push(event.GameEvent{Type: t, Payload: p, Time: s.Now()})
}

// Shots returns the live shot paths in firing order
func (s *Simulation) Shots() []*shot.Path {
	out := make([]*shot.Path, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.shots[k].path())
	}
	return out
}

// Shot returns the path for key, nil if unknown
func (s *Simulation) Shot(key shot.Key) *shot.Path {
	if e, ok := s.shots[key]; ok {
		return e.path()
	}
	return nil
}

// Local returns the locally owned path for key, nil if not local
func (s *Simulation) Local(key shot.Key) *shot.LocalPath {
	if e, ok := s.shots[key]; ok {
		return e.local
	}
	return nil
}

func payloadOf(p *shot.Path) *event.ShotPayload {
	return &event.ShotPayload{Key: p.Key(), Type: p.Type(), Local: p.IsLocal(), Position: p.Position()}
}

func (s *Simulation) track(key shot.Key, e *entry) {
	s.shots[key] = e
	s.order = append(s.order, key)
	s.emit(event.EventShotFired, payloadOf(e.path()))
}

// Fire launches a local shot from origin along dir and announces it
func (s *Simulation) Fire(typ shot.Type, origin, dir vmath.Vec3F) shot.Key {
	// skip ids still in flight after wraparound
	for {
		s.nextID++
		if _, busy := s.shots[shot.Key{Player: s.player, ID: s.nextID}]; !busy {
			break
		}
	}

	now := s.Now()
	info := shot.NewFiringInfo(s.vars, shot.Launch{
		Type:     typ,
		Player:   s.player,
		ID:       s.nextID,
		Team:     s.team,
		Origin:   origin,
		Dir:      dir,
		TimeSent: now,
	})
	p := shot.NewLocalPath(info, now, s.vars, s.outbox)
	p.Begin()

	key := p.Key()
	s.track(key, &entry{local: p})
	s.logger.Debug("shot fired", "player", key.Player, "id", key.ID, "type", typ)
	return key
}

// Receive queues an inbound message for the next Step
func (s *Simulation) Receive(msg *network.Message) {
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, msg)
	s.inboxMu.Unlock()
}

func (s *Simulation) drainInbox() []*network.Message {
	s.inboxMu.Lock()
	defer s.inboxMu.Unlock()
	msgs := s.inbox
	s.inbox = nil
	return msgs
}

// apply handles one inbound message; malformed or unknown input is logged and dropped
func (s *Simulation) apply(msg *network.Message) {
	switch msg.Code {
	case network.MsgShotBegin:
		var info shot.FiringInfo
		if err := info.Unpack(network.NewReader(msg.Payload)); err != nil {
			s.logger.Warn("dropped message", "code", msg.Code, "err", err)
			return
		}
		key := info.Shot.Key()
		if _, dup := s.shots[key]; dup {
			s.logger.Debug("duplicate shot begin", "player", key.Player, "id", key.ID)
			return
		}
		if !info.Type.Known() {
			s.logger.Debug("unknown shot type, flying as normal", "type", info.Type)
		}
		s.track(key, &entry{remote: shot.NewRemotePath(info, s.Now(), s.vars)})

	case network.MsgShotEnd:
		var end shot.ShotEnd
		if err := end.Unpack(network.NewReader(msg.Payload)); err != nil {
			s.logger.Warn("dropped message", "code", msg.Code, "err", err)
			return
		}
		if e, ok := s.shots[shot.Key{Player: end.Player, ID: end.ID}]; ok && e.remote != nil {
			e.remote.SetExpiring()
		}

	case network.MsgGMUpdate, network.MsgShotRicochet:
		update, rest, err := shot.SplitUpdate(msg.Payload)
		if err != nil {
			s.logger.Warn("dropped message", "code", msg.Code, "err", err)
			return
		}
		e, ok := s.shots[update.Key()]
		if !ok || e.remote == nil {
			s.logger.Debug("update for unknown shot", "player", update.Player, "id", update.ID)
			return
		}
		e.remote.ApplyUpdate(update, msg.Code, rest)
		// the owner's count is authoritative; a lower count rebases bounce reporting
		if n, ok := bouncesOf(e.remote.Path); ok && n < e.bounces {
			e.bounces = n
		}
		s.emit(event.EventShotRemoteUpdate, payloadOf(e.remote.Path))

	default:
		s.logger.Warn("dropped message", "code", msg.Code)
	}
}

func bouncesOf(p *shot.Path) (uint16, bool) {
	if r, ok := p.Strategy().(*shot.RicochetStrategy); ok {
		return r.Bounces(), true
	}
	return 0, false
}

// Step advances the session by dt seconds
// Order: variable bridge, inbound messages, colors, shots, expiry
func (s *Simulation) Step(dt float64) {
	if s.bridge != nil {
		if n := s.bridge.Pump(); n > 0 {
			s.logger.Debug("applied variable changes", "count", n)
		}
	}

	for _, msg := range s.drainInbox() {
		s.apply(msg)
	}

	s.clock.Advance(dt)
	s.colors.Update()

	for _, key := range s.order {
		e := s.shots[key]
		if e.local != nil {
			e.local.Update(dt)
		} else {
			e.remote.Update(dt)
		}
		if n, ok := bouncesOf(e.path()); ok && n != e.bounces {
			grew := n > e.bounces
			e.bounces = n
			if grew {
				s.emit(event.EventShotRicochet, &event.RicochetPayload{ShotPayload: *payloadOf(e.path()), Bounces: n})
			}
		}
	}

	kept := s.order[:0]
	for _, key := range s.order {
		p := s.shots[key].path()
		if !p.IsExpired() {
			kept = append(kept, key)
			continue
		}
		delete(s.shots, key)
		s.emit(event.EventShotExpired, payloadOf(p))
	}
	s.order = kept
}

// Close releases color subscriptions and drops all shots
func (s *Simulation) Close() {
	s.colors.Clear()
	s.shots = make(map[shot.Key]*entry)
	s.order = nil
}
