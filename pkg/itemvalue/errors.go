package itemvalue

import "errors"

// ErrInvalidQuery is returned when an item name normalizes to an empty slug.
var ErrInvalidQuery = errors.New("could not normalize item name")

// ErrSourceUnavailable marks a single source failure. Resolvers use it to
// move on to the next source; it is never surfaced on its own.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrAllSourcesExhausted is recorded when no source produced content.
var ErrAllSourcesExhausted = errors.New("all sources exhausted")
