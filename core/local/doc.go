// Package local provides execution contexts: named single-goroutine workers
// that each own a [service.ConfinedRegistry].
//
// A flow submitted with [Group.Run] or [Group.RunOn] runs on its context's
// goroutine with a ctx bound to that context's registry, so
// [service.FromLocalRegistry] inside the flow resolves per-context
// instances without any locking. Flows on one context run one at a time, in
// submission order. The bound ctx must not leave the flow.
//
// A flow that waits on a service which in turn submits work to the same
// context deadlocks.
package local
