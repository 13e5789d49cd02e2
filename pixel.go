package qoi

type pixel struct {
	r, g, b, a uint8
}

var startPixel = pixel{a: 255}

// hash picks the cache slot for p. The products wrap mod 256, which leaves
// the result mod 64 unchanged.
func (p pixel) hash() uint8 {
	return (p.r*3 + p.g*5 + p.b*7 + p.a*11) % 64
}

// colorCache holds the last color seen for each hash slot. A fresh zeroed
// cache starts every encode and decode.
type colorCache [64]pixel

// readPixel loads the pixel at byte offset i; alpha is 255 for 3-channel buffers.
func readPixel(pix []byte, i, channels int) pixel {
	p := pixel{r: pix[i], g: pix[i+1], b: pix[i+2], a: 255}
	if channels == 4 {
		p.a = pix[i+3]
	}
	return p
}

func writePixel(pix []byte, i, channels int, p pixel) {
	pix[i] = p.r
	pix[i+1] = p.g
	pix[i+2] = p.b
	if channels == 4 {
		pix[i+3] = p.a
	}
}

// delta-coding of an 8-bit value on a 0..255 ring into int8 [-128..127]
func encodeDelta8(prev, curr uint8) int8 {
	diff := int16(curr) - int16(prev)
	if diff < -128 {
		diff += 256
	} else if diff > 127 {
		diff -= 256
	}
	return int8(diff)
}

func decodeDelta8(prev uint8, d int) uint8 {
	return uint8((int(prev) + d) & 0xff)
}
