// Package events defines the balancing related events emitted on the event bus.
//
// Available event types:
//   - DayEvent: a day entered or left the engine
//   - PassEvent: an engine pass started, made progress or gave up
//   - ChangeEvent: a single cell mutation
package events
