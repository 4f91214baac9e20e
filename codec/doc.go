// Package codec implements the TLS presentation-language encoding used
// by all Merkle Tree Certificate wire structures: big-endian fixed-width
// integers, length-prefixed vectors whose marker width is derived from
// the declared maximum payload length, opaque byte vectors, fixed-length
// arrays, and closed enumerations.
//
// Concrete wire types compose these primitives directly; there is no
// runtime reflection. Every wire value implements the Value interface,
// and types provide package-level Parse functions; some also provide a
// Skip function over a Stream. Serialization is deterministic and never fails; parsing fails
// with a *ParsingError, invariant checks with a *ValidationError.
package codec
