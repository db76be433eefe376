// Package utils provides shared low-level helpers: [DoPostSync] for JSON
// round-trips that report failures as classified *ai.APIError values, string
// truncation for previews, a small elapsed-time [Timer] and [Ptr].
package utils
