// Package effects routes declared side effects to effect managers.
//
// An update returns commands and the subscriptions function returns
// subscriptions, both as Bag trees. Each cycle the Dispatcher flattens the
// bags by home, applies the MapBag taggers through the manager's CmdMap or
// SubMap, and sends every registered manager one message with its share,
// even when the share is empty, so managers can diff subscriptions from the
// previous cycle.
//
// Every manager runs in its own scheduler process:
//
//	reg := effects.DefaultRegistry()
//	out := effects.NewOutgoingPort("alerts")
//	if err := out.Register(reg); err != nil {
//	    return err
//	}
//
// Built-in managers:
//
//   - TaskManager runs Perform and Attempt commands
//   - TimeManager runs Every subscriptions
//   - OutgoingPort and IncomingPort connect the application to host code
package effects
