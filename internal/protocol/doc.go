// Package protocol owns the MiniTel-Lite v3.0 wire contract.
//
// Ownership boundary:
// - command codes and wire names
// - frame encode/decode and integrity verification (frame subpackage)
// - nonce sequencing state (sequence subpackage)
package protocol
