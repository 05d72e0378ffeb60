// Package event provides a pub-sub bus that lets the shell, the bridge and
// the terminal UI react to launches and file activity without depending on
// each other.
//
// A [Bus] belongs to a single session. Handlers run synchronously on the
// publishing goroutine; a panicking handler is logged and does not stop
// delivery to the others.
//
//	bus := event.NewBus(event.WithLogger(logger))
//	bus.Subscribe(event.TypeTerminalClosed, func(e event.Event) {
//	    closed := e.(event.TerminalClosedEvent)
//	    fmt.Println(closed.LaunchID, closed.ExitCode)
//	})
package event
