package avro

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/binary"
	"hash/crc64"
)

// rabinEmpty is both the polynomial and the initial value of the Avro
// "Rabin" fingerprint, per the Avro specification's reference
// fingerprinting algorithm. Using it as the polynomial with hash/crc64's
// ordinary reflected-table construction yields the Avro table, since Avro's
// own table-building loop is the same right-shift construction hash/crc64
// uses for its reflected tables.
const rabinEmpty uint64 = 0xc15d213aa4d7a795

var rabinTable = crc64.MakeTable(rabinEmpty)

// RabinFingerprint returns the 8-byte little-endian CRC-64-AVRO fingerprint
// of s's Parsing Canonical Form.
func RabinFingerprint(s *Schema) [8]byte {
	var out [8]byte
	// crc64.Update complements the running value on entry and on return;
	// the Avro algorithm does neither, so both complements are undone here.
	sum := ^crc64.Update(^rabinEmpty, rabinTable, []byte(CanonicalForm(s)))
	binary.LittleEndian.PutUint64(out[:], sum)
	return out
}

// SHA256Fingerprint returns the SHA-256 digest of s's Parsing Canonical Form.
func SHA256Fingerprint(s *Schema) [32]byte {
	return sha256.Sum256([]byte(CanonicalForm(s)))
}

// MD5Fingerprint returns the MD5 digest of s's Parsing Canonical Form.
func MD5Fingerprint(s *Schema) [16]byte {
	return md5.Sum([]byte(CanonicalForm(s)))
}

// Fingerprint is a convenience for the most common fingerprint algorithm,
// the 64-bit Rabin fingerprint.
func (s *Schema) Fingerprint() [8]byte {
	return RabinFingerprint(s)
}
