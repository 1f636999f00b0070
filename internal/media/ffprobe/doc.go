// Package ffprobe wraps the ffprobe binary.
//
// Prober answers the two questions the encoder loop asks of an input: how
// many video frames it holds and how long it runs. Inspect decodes the full
// JSON stream/format report for the probe command.
package ffprobe
