// Package app wires the process-level pieces of an xactor program: a
// [service.SharedRegistry], a [local.Group] of execution contexts and the
// lifetime that bounds every service they start.
//
// # Basic Usage
//
//	a, err := app.Run(app.Config{
//	    Local: app.LocalConfig{Contexts: 8},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// app-wide singleton
//	counter, err := app.Resolve[Counter](ctx, a)
//
//	// per-context singleton, picked by key
//	err = a.Local().Run(ctx, "tenant-1", func(ctx context.Context) error {
//	    cache, err := service.FromLocalRegistry[Cache](ctx)
//	    ...
//	})
//
//	// Graceful shutdown
//	a.Shutdown(ctx)
//
// Stopping the app stops every service it started.
package app
