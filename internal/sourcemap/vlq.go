package sourcemap

var base64 = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/")

// A base 64 digit holds 6 bits. In the VLQ encoding used by source maps the
// first digit carries the sign in its lowest bit, the next four bits are value
// and the 6th bit says whether more digits follow.
//
//	Continuation
//	|    Sign
//	|    |
//	V    V
//	101011
func encodeVLQ(encoded []byte, value int) []byte {
	var vlq int
	if value < 0 {
		vlq = ((-value) << 1) | 1
	} else {
		vlq = value << 1
	}

	// Handle the common case
	if (vlq >> 5) == 0 {
		return append(encoded, base64[vlq&31])
	}

	for {
		digit := vlq & 31
		vlq >>= 5

		// If there are still more digits in this value, we must make sure the
		// continuation bit is marked
		if vlq != 0 {
			digit |= 32
		}

		encoded = append(encoded, base64[digit])

		if vlq == 0 {
			break
		}
	}

	return encoded
}

const (
	vlqContinuationBit = 0x20
	vlqDataMask        = 0x1F

	// Values above the 6-bit digit range mark the separators
	segmentEnd   = 0x40
	lineEnd      = 0x41
	invalidDigit = 0xFF
)

var digitValues = func() (table [256]byte) {
	for i := range table {
		table[i] = invalidDigit
	}
	for i, c := range base64 {
		table[c] = byte(i)
	}
	table[','] = segmentEnd
	table[';'] = lineEnd
	return
}()

// DecodeVLQ decodes one value starting at "start" and returns it together
// with the index just past its last digit. Decoding stops early at the first
// character that isn't a base 64 digit.
func DecodeVLQ(encoded string, start int) (int, int) {
	shift := 0
	vlq := 0

	for start < len(encoded) {
		digit := digitValues[encoded[start]]
		if digit >= segmentEnd {
			break
		}

		// Decode a single byte
		vlq |= int(digit&vlqDataMask) << shift
		start++
		shift += 5

		// Stop if there's no continuation bit
		if (digit & vlqContinuationBit) == 0 {
			break
		}
	}

	// Recover the signed value
	value := vlq >> 1
	if (vlq & 1) != 0 {
		value = -value
	}
	return value, start
}
