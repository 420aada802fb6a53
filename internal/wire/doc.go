// Package wire frames the byte stream into discrete, ordered, type-tagged
// messages.
//
// A frame is a 4-byte big-endian length, a 1-byte type tag, then the payload.
// The reader never assumes frame boundaries align with transport packet
// boundaries: it buffers partial reads and reads exactly length bytes per
// frame. A length above MaxFrameSize is a protocol violation and forces
// connection closure, bounding memory use against a hostile peer.
package wire
