// Package actor provides a mailbox-based actor runtime for building
// concurrent, message-driven systems.
//
// Each actor:
//   - Has a unique identity and a cloneable handle ([Addr])
//   - Processes messages sequentially from its mailbox
//   - Can schedule background tasks via [HandlerCtx.Schedule]
//   - Can be paused, resumed, and stepped for debugging/testing
//
// # Defining Actors
//
// An actor type implements [Actor] by returning its handlers. State lives in
// the value itself and is only touched from the actor's loop:
//
//	type Counter struct{ n int }
//
//	func (c *Counter) Handlers() []actor.HandlerRegistration {
//	    return []actor.HandlerRegistration{
//	        actor.HandleRequest[Inc, Total](func(hc actor.HandlerCtx, _ Inc) (*Total, error) {
//	            c.n++
//	            return &Total{N: c.n}, nil
//	        }),
//	    }
//	}
//
// # Creating and Starting
//
// Creation is split in two steps so that a handle can be published before
// the actor runs:
//
//	ctx, rx := actor.NewContext[*Counter](actor.Options{})
//	addr := ctx.Address()
//	err := actor.Start(ctx, rx, &Counter{}, false)
//
// Messages sent to addr before Start are queued and processed once the
// loop begins. [Start] returns after the actor's [Init] functions ran; an
// init error aborts the start and fails all queued requests with
// [ErrStopped]. [Spawn] combines both steps.
//
// # Message Handling
//
// Messages are dispatched by type name to registered handlers:
//
//   - [HandleMsg] registers a one-way message handler
//   - [HandleRequest] registers a request-response handler
//   - [HandleEvery] registers a periodic task that runs at fixed intervals
//   - [DefaultHandler] registers a fallback for unmatched message types
//   - [Init] registers initialization logic run when the actor starts
//
// # Sending Messages
//
//	total, err := actor.Request[Inc, Total](ctx, addr, Inc{})
//	err := actor.Publish[Reset](ctx, addr, Reset{})
//
// # Lifecycle Control
//
//	addr.Pause()   // Stop processing messages
//	addr.Step()    // Process exactly one message
//	addr.Resume()  // Continue normal processing
//	addr.Stop()    // Shut down and wait
//	<-addr.Done()  // Wait for actor shutdown
package actor
