// Package vision wraps a chat-completion API that accepts inline images and
// returns a structured inventory of the modules visible in a rig photo.
//
// The client retries transient transport failures (429, 5xx, timeouts) with
// exponential backoff and honors Retry-After. Model output is decoded
// leniently: code fences and surrounding prose are stripped before JSON
// parsing. Everything returned here is raw model opinion; normalization,
// clamping, and provenance are the detector's job.
package vision
