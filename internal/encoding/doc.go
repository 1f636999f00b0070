// Package encoding converges an input file onto a target size.
//
// InitialBitrates turns the size budget and duration into video and audio
// bitrates. State is the retry loop as a value-typed state machine: two
// passes per attempt, a size measurement, then either acceptance or another
// attempt at 95% of the previous video bitrate. Runner wires the state
// machine to ffprobe, ffmpeg, the progress display and run history.
package encoding
