// Package fleet wires the registry, supervisor and transport into a running
// set of bots.
//
// At startup the Fleet replays every identity stored in the registry and
// starts the master bot, which is configured rather than stored. While
// running, a spawn command on the master registers the new slave durably
// before starting it, so a crash between the two steps is recovered by the
// next startup replay.
package fleet
