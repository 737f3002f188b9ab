package schedule

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ember-ml/ember/internal/array"
	"github.com/ember-ml/ember/internal/graph"
)

// State tracks a compiled region's lifecycle.
type State int

// Lifecycle states of one cache entry.
const (
	Empty State = iota // nothing traced yet
	Tracing            // first call in progress, recording
	Built              // schedule finalized, ready to replay
	Replaying          // replay instances handed out this iteration
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Tracing:
		return "tracing"
	case Built:
		return "built"
	case Replaying:
		return "replaying"
	default:
		return "unknown"
	}
}

// hook patches one position of a recorded call to a unique-array table
// slot. Pre hooks materialize call arguments from the table before the
// call; post hooks publish results back into the table after it.
type hook struct {
	pos  int // argument/output position within the call
	slot int // unique-array table index
	// copyBack marks outputs whose exact array was retained by the
	// operation's gradient formula: the slot is refreshed by an
	// in-place copy, never a reference swap.
	copyBack bool
}

// call is one recorded operation invocation.
type call struct {
	op     graph.Op
	device array.Device
	pre    []hook
	post   []hook
}

// gradBinding ties a leaf's table slot to its gradient's table slot for
// one backward depth, so replayed backward passes can publish
// gradients without a graph.
type gradBinding struct {
	depth    int
	leafSlot int
	gradSlot int
}

// Schedule is a recorded, replayable list of operation invocations per
// pass depth (0 = forward, 1 = backward, 2 = double backward), sharing
// one unique-array table.
type Schedule struct {
	id     uuid.UUID
	key    string
	passes [][]call

	table []*array.RawArray
	index map[*array.RawArray]int

	inputSlots  []int
	inputSpecs  []array.Spec
	outputSlots []int
	bindings    []gradBinding

	built bool
}

func newSchedule(key string) *Schedule {
	return &Schedule{
		id:     uuid.New(),
		key:    key,
		passes: [][]call{nil},
		index:  map[*array.RawArray]int{},
	}
}

// ID returns the schedule instance's identity, used by the cache and
// logs to track pooled instances.
func (s *Schedule) ID() uuid.UUID { return s.id }

// Key returns the input-signature/mode key the schedule was traced
// under.
func (s *Schedule) Key() string { return s.key }

// Built reports whether the schedule has been finalized.
func (s *Schedule) Built() bool { return s.built }

// NumPasses returns how many pass depths were recorded.
func (s *Schedule) NumPasses() int { return len(s.passes) }

// intern deduplicates an array into the unique-array table by identity
// and returns its slot.
func (s *Schedule) intern(a *array.RawArray) int {
	if slot, ok := s.index[a]; ok {
		return slot
	}
	slot := len(s.table)
	s.table = append(s.table, a)
	s.index[a] = slot
	return slot
}

// markInputs interns the region's input arrays ahead of tracing so
// replay can patch fresh inputs into the same slots.
func (s *Schedule) markInputs(arrays []*array.RawArray) {
	s.inputSlots = make([]int, len(arrays))
	s.inputSpecs = make([]array.Spec, len(arrays))
	for i, a := range arrays {
		s.inputSlots[i] = s.intern(a)
		s.inputSpecs[i] = array.SpecOf(a)
	}
}

// markOutputs records which table slots hold the region's outputs.
func (s *Schedule) markOutputs(arrays []*array.RawArray) {
	s.outputSlots = make([]int, len(arrays))
	for i, a := range arrays {
		s.outputSlots[i] = s.intern(a)
	}
}

// build finalizes the schedule. Called exactly once, by
// Compiler.FinishIteration after the tracing iteration.
func (s *Schedule) build() {
	s.built = true
	// The identity index is only needed while recording.
	s.index = nil
	if klog.V(2).Enabled() {
		klog.Infof("schedule %s built: key=%q passes=%d table=%d calls(fwd)=%d",
			s.id, s.key, len(s.passes), len(s.table), len(s.passes[0]))
	}
}

// clone creates an independent replay instance sharing the recorded
// calls but owning its own table (slot contents start out shared and
// diverge as dynamic allocations refresh them).
func (s *Schedule) clone() *Schedule {
	c := *s
	c.id = uuid.New()
	c.table = append([]*array.RawArray(nil), s.table...)
	return &c
}

// setInputs patches the current iteration's input arrays into their
// recorded slots.
func (s *Schedule) setInputs(arrays []*array.RawArray) error {
	if len(arrays) != len(s.inputSlots) {
		return errors.Errorf("schedule: %d inputs, traced with %d", len(arrays), len(s.inputSlots))
	}
	for i, a := range arrays {
		want := s.inputSpecs[i]
		if a.DType() != want.DType || !a.Shape().Equal(want.Shape) {
			return errors.Errorf("schedule: input[%d] is %s%v, traced as %s%v",
				i, a.DType(), a.Shape(), want.DType, want.Shape)
		}
		s.table[s.inputSlots[i]] = a
	}
	return nil
}

// outputs reads the region's current output arrays from the table.
func (s *Schedule) outputs() []*array.RawArray {
	outs := make([]*array.RawArray, len(s.outputSlots))
	for i, slot := range s.outputSlots {
		outs[i] = s.table[slot]
	}
	return outs
}

// runPass replays one recorded pass: pre hooks materialize each call's
// arguments from the table, the operation's forward runs, and post
// hooks publish results (reference swap for dynamic allocations,
// in-place copy for retained outputs).
func (s *Schedule) runPass(depth int) error {
	if !s.built {
		return ErrNotBuilt
	}
	if depth >= len(s.passes) {
		return errors.Wrapf(ErrNoSuchPass, "depth %d (recorded %d)", depth, len(s.passes))
	}
	if klog.V(2).Enabled() {
		klog.Infof("schedule %s replay pass %d (%d calls)", s.id, depth, len(s.passes[depth]))
	}
	devices := map[array.Device]array.Backend{}
	for ci := range s.passes[depth] {
		c := &s.passes[depth][ci]
		be, ok := devices[c.device]
		if !ok {
			var err error
			be, err = array.BackendFor(c.device)
			if err != nil {
				return errors.Wrapf(err, "schedule: call %d", ci)
			}
			devices[c.device] = be
		}

		args := make([]*array.RawArray, len(c.pre))
		for _, h := range c.pre {
			args[h.pos] = s.table[h.slot]
		}
		outs, err := c.op.Forward(be, args)
		if err != nil {
			return errors.Wrapf(err, "schedule: replaying %s (call %d, pass %d)", c.op.Name(), ci, depth)
		}
		for _, h := range c.post {
			if h.copyBack {
				be.CopyTo(s.table[h.slot], outs[h.pos])
			} else {
				s.table[h.slot] = outs[h.pos]
			}
		}
	}
	for _, be := range devices {
		be.Synchronize()
	}
	return nil
}

// gradArray returns the gradient array bound to the given leaf array at
// the given backward depth, or nil if none was recorded.
func (s *Schedule) gradArray(leaf *array.RawArray, depth int) *array.RawArray {
	for _, b := range s.bindings {
		if b.depth == depth && s.table[b.leafSlot].SameStorage(leaf) {
			return s.table[b.gradSlot]
		}
	}
	return nil
}
