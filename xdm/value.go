package xdm

import "github.com/klauspost/compress/s2"

// compressThreshold is the raw byte length at or above which SetValue transparently
// compresses with s2 (a streaming-friendly snappy variant); below it the
// framing overhead isn't worth paying.
const compressThreshold = 64

// SetValue stores raw as the node's value, compressing it with s2 when it is
// large enough to be worth it. Value nodes carry a byte-encoded value with
// optional compression; this is where that optionality lives.
func (r *Record) SetValue(raw []byte) {
	if len(raw) < compressThreshold {
		r.Value = append([]byte(nil), raw...)
		r.Compressed = false
		return
	}
	r.Value = s2.Encode(nil, raw)
	r.Compressed = true
}

// DecodedValue returns the decompressed byte value regardless of how it is
// stored.
func (r *Record) DecodedValue() []byte {
	if !r.Compressed {
		return r.Value
	}
	out, err := s2.Decode(nil, r.Value)
	if err != nil {
		// Compressed flag and stored bytes are only ever set together by
		// SetValue; corruption here means the page layer handed back a
		// torn record.
		panic("xdm: corrupt compressed value: " + err.Error())
	}
	return out
}

// DecodeValue decodes a Valued capability view the same way DecodedValue
// does, for call sites that only hold the capability interface.
func DecodeValue(v Valued) []byte {
	if !v.IsCompressed() {
		return v.RawValue()
	}
	out, err := s2.Decode(nil, v.RawValue())
	if err != nil {
		panic("xdm: corrupt compressed value: " + err.Error())
	}
	return out
}
