// Package prime implements the prime-check wire protocol: request decoding,
// response encoding, request framing, and the primality predicate.
//
// A request is a JSON object {"method":"isPrime","number":N} with N an
// unsigned integer. A response is {"method":"isPrime","prime":B}.
//
// Framing: by default each read chunk is taken as exactly one JSON document
// (FramingChunk). This mirrors the original service and breaks when a
// document is split across reads or several are coalesced into one read.
// FramingLine replaces it with newline-delimited frames.
package prime
