// Package bus implements the in-process typed event bus that every other
// component uses to publish and observe domain events: typed pub/sub with
// synchronous, asynchronous, and result-collecting dispatch. The concrete
// event types (device state changes, discovered files, completed copies,
// and so on) are defined by the packages that own that domain, not by this
// package, to avoid a dependency cycle back onto them; this package only
// defines the mechanism.
package bus
