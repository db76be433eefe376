// Package parse turns free-form language model output into JSON text that the
// standard library can decode. Models wrap JSON in prose, markdown fences or
// HTML, and streams get cut off mid-value, so the package offers a set of pure
// building blocks:
//
//   - [Scan] returns the first balanced object or array at the start of a buffer.
//   - [Extract] runs an ordered cascade of strategies (direct parse, balanced
//     scans, code fences, repair) and returns the first JSON object or array.
//   - [Repair] patches trailing commas, control characters, unterminated
//     strings and missing closers. Its output must always be parsed again.
//   - [ParseStringAs] decodes text into a Go type, repairing with jsonrepair
//     when plain decoding fails.
//
// None of the functions perform I/O or keep state, so they may be called
// concurrently.
package parse
