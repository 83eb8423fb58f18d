package sps30

import "github.com/sigurn/crc8"

var (
	checksumTable = crc8.MakeTable(crc8.Params{
		Poly:   0x31,
		Init:   0xFF,
		RefIn:  false,
		RefOut: false,
		XorOut: 0x00,
		Check:  0x00,
		Name:   "CRC-8/Sensiron",
	})
)

// WordChecksum computes the checksum the sensor attaches to every 2-byte
// word it exchanges, both to verify received words and to frame
// transmitted command payloads.
func WordChecksum(b0, b1 byte) byte {
	return crc8.Checksum([]byte{b0, b1}, checksumTable)
}
