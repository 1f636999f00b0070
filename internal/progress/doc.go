// Package progress turns ffmpeg's key=value progress stream into a live
// four-line status block.
//
// Parser buffers frame and fps values until both have been seen, Derive
// converts a sample into percent and time left, and Renderer draws the block
// either in place (terminal) or appended (pipes, files). Interpreter selects
// between parsing the stream and echoing it untouched.
package progress
