// Package app composes controllers into a single runnable application.
//
// # Composition
//
// An App starts empty and grows one registration at a time:
//
//	a := app.New().
//	    Register("infra", tfws.NewController(cfg)).
//	    Register("infra", other.NewController(cfg))
//	task, err := a.Run(ctx, cluster)
//
// Each Register returns a new App whose root pairs the new registration
// (left) with the previously composed app (right). Run validates every
// controller concurrently before any of them starts watching. Startup is
// all-or-nothing: when one or more controllers fail their preflight, Run
// returns a *StartupError and no watch is opened. StartupError.Side tells
// which half of the pair failed, StartupError.Failures lists every failing
// controller in registration order.
//
// The task returned by Run runs all controllers concurrently and returns
// when every one of them has stopped.
//
// # Bootstrap
//
// Application wires the process together: it initializes logging, loads the
// YAML configuration, applies command line overrides, registers the enabled
// controllers and serves the HTTP endpoints of package server next to them.
package app
