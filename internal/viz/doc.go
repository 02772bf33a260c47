// Package viz provides terminal visualization for solver activity.
//
// The live view is a Bubble Tea model fed by the jog tracker: joint angles
// against their limits, the moving target pose, and a residual history
// sparkline. The plot helpers render asciigraph charts of stored solve
// traces for the CLI.
package viz
