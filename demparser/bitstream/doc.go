/*

Package bitstream implements reading of the bit-packed payloads found inside
Source-engine demo files.

A BitReader consumes a byte slice bit by bit, least significant bit first,
refilling a 32-bit shift register from the slice in little-endian order. A
Bits value is an owned byte buffer tagged with a sub-byte trailing width,
used to hand nested payloads from one parsing layer to the next.

*/
package bitstream
