// Package service provides lazily created singleton actors ("services")
// resolved by type.
//
// A service is any actor type whose pointer implements [actor.Actor]. Its
// zero value is the initial state; setup belongs in an [actor.Init]
// handler. Two registry scopes exist:
//
//   - [SharedRegistry]: one instance per process (see [Default] and
//     [FromRegistry]). Concurrent first-time resolutions of the same type
//     start exactly one instance.
//   - [ConfinedRegistry]: one instance per execution context (see
//     [FromLocalRegistry] and package local). Different contexts get
//     different instances.
//
// Entries are never removed, except when an instance fails to start: the
// failing resolution returns the startup error and the next resolution
// creates a fresh instance.
//
//	type Counter struct{ n int }
//
//	func (c *Counter) Handlers() []actor.HandlerRegistration { ... }
//
//	addr, err := service.FromRegistry[Counter](ctx)
//	total, err := actor.Request[Inc, Total](ctx, addr, Inc{})
package service
