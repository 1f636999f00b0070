// Package ffmpeg drives the ffmpeg binary for two-pass, bitrate-targeted
// encodes.
//
// ResolveCodecs maps the configured codec and GPU vendor to encoder names and
// a container extension. Args builds the command line for one pass, and CLI
// runs it while streaming the progress channel line by line.
package ffmpeg
