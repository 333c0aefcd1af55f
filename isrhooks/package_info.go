// Package isrhooks allows code to run before and after every fetch performed by an ISR handle.
//
// Hooks are registered through isr.Config.Hooks. The isrotel package contains hooks that report
// fetches to OpenTelemetry.
package isrhooks
