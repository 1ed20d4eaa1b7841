// Package feed provides the stages of the bike-station feed pipeline built
// on genstage: a URL-replicating producer, HTTP retrieval, JSON decoding,
// field extraction, a predicate filter, and a console printer consumer.
//
// Faults are fatal by design. A transport error, a non-success HTTP status
// or a malformed payload terminates the owning stage and with it the whole
// pipeline; there is no retry. A missing extraction key is not a fault: it
// yields the explicit [Missing] marker.
package feed
