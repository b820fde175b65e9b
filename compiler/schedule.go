package compiler

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// Cooperative suspension scheduler
//
// The host offers no coroutine or parked continuation: routines can only be
// invoked now or scheduled one tick out. A suspension-annotated statement is
// therefore lowered into three generated pieces sharing one flag register
// (the "slot", a holder in the mcfq objective):
//
//   continuation  queue/<routine>_queue<i>  the statements after the
//                                           suspension point; consumes its
//                                           slot (sets it to 1) on entry
//   waiter        queue/wait_<routine>_<i>  polls once per tick, rescheduling
//                                           itself while any tracked slot is
//                                           still open; when all are closed
//                                           it opens its own slot and flushes
//                                           the dispatcher once
//   dispatcher    queue/queue_main          invokes the continuation of every
//                                           slot whose flag matches 0, in
//                                           registration order
//
// An aggregator, queue/any_open, recomputes the single __open flag from the
// full tracked-slot set on every poll. Dispatch order is registration order,
// which is source order across the whole run, so continuations that become
// ready in the same tick fire deterministically.
// ---------------------------------------------------------------------------

const (
	queueObjective = "mcfq"
	openHolder     = "__open"

	dispatcherPath = "queue/queue_main"
	aggregatorPath = "queue/any_open"
)

// queueEntry is one registered suspension point.
type queueEntry struct {
	slot string // author-supplied slot name
	cont string // continuation unit path
}

// suspensionSlot returns the suspension-slot annotation of a statement,
// or "" for statements that cannot carry one.
func suspensionSlot(s Stmt) string {
	switch s := s.(type) {
	case *If:
		return s.Slot
	case *While:
		return s.Slot
	case *Call:
		return s.Slot
	case *VCall:
		return s.Slot
	}
	return ""
}

// bodyHasSuspension reports whether a body contains a suspension point,
// transitively through nested conditionals and loops.
func bodyHasSuspension(body []Stmt) bool {
	for _, s := range body {
		if suspensionSlot(s) != "" {
			return true
		}
		switch s := s.(type) {
		case *If:
			if bodyHasSuspension(s.Body) {
				return true
			}
		case *While:
			if bodyHasSuspension(s.Body) {
				return true
			}
		}
	}
	return false
}

// suspend lowers one suspension point: it registers the slot, generates the
// continuation and waiter units, and arms the waiter from cur. The returned
// unit is where the enclosing body's remaining statements continue.
func (lw *Lowerer) suspend(cur *Unit, slot string) (*Unit, error) {
	idx := len(lw.queue) + 1

	contPath := fmt.Sprintf("queue/%s_queue%d", lw.routine, idx)
	cont := lw.out.Unit(contPath)
	cont.Linef("scoreboard objectives add %s dummy", queueObjective)
	cont.Linef("scoreboard players set %s %s 1", slot, queueObjective) // one-shot consume

	lw.queue = append(lw.queue, queueEntry{slot: slot, cont: contPath})
	lw.slots[slot] = true

	waitPath := fmt.Sprintf("queue/wait_%s_%d", lw.routine, idx)
	w := lw.out.Unit(waitPath)
	w.Linef("scoreboard objectives add %s dummy", queueObjective)
	w.Linef("function %s", lw.fn(dispatcherPath))
	w.Linef("function %s", lw.fn(aggregatorPath))
	w.Linef("execute if score %s %s matches 1 run schedule function %s 1t",
		openHolder, queueObjective, lw.fn(waitPath))
	w.Linef("execute unless score %s %s matches 1 run scoreboard players set %s %s 0",
		openHolder, queueObjective, slot, queueObjective)
	w.Linef("execute unless score %s %s matches 1 run function %s",
		openHolder, queueObjective, lw.fn(dispatcherPath))

	cur.Linef("schedule function %s 1t", lw.fn(waitPath))
	return cont, nil
}

// writeScheduler emits the run-wide dispatcher and aggregator, if any
// suspension point was registered.
func (lw *Lowerer) writeScheduler() {
	if len(lw.queue) == 0 {
		return
	}

	qm := lw.out.Unit(dispatcherPath)
	qm.Linef("scoreboard objectives add %s dummy", queueObjective)
	for _, e := range lw.queue {
		qm.Linef("execute if score %s %s matches 0 run function %s",
			e.slot, queueObjective, lw.fn(e.cont))
	}

	ao := lw.out.Unit(aggregatorPath)
	ao.Linef("scoreboard objectives add %s dummy", queueObjective)
	ao.Linef("scoreboard players set %s %s 0", openHolder, queueObjective)
	names := make([]string, 0, len(lw.slots))
	for s := range lw.slots {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		ao.Linef("execute if score %s %s matches 0 run scoreboard players set %s %s 1",
			s, queueObjective, openHolder, queueObjective)
	}
}
