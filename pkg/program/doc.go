// Package program wires a model, an update function, a renderer and the
// effect managers into a running application.
//
// The main process receives one message at a time. For each message it
// runs Update, steps the renderer with the new model and dispatches the
// returned commands together with the model's subscriptions:
//
//	doc := host.NewDocument()
//	sched := scheduler.New(scheduler.Config{Driver: loop})
//	p, err := program.Initialize(program.Config{
//	    Init:      func(any) (any, *effects.Bag) { return 0, nil },
//	    Update:    update,
//	    Renderer:  program.ViewRenderer(doc, doc.Body(), view),
//	    Scheduler: sched,
//	})
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
//
// Initialize fails with a distinct error code for a program given flags it
// does not take, a program requiring flags without a decoder, and flags that
// fail to decode.
package program
