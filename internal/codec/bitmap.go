package codec

const (
	// BitmapSize is the size of one binary bitmap.
	BitmapSize = 8

	// MaxField is the highest data element a primary plus secondary bitmap
	// can address.
	MaxField = 128
)

// bitmap is a primary and optional secondary binary bitmap.
type bitmap []byte

// readBitmap slices the bitmap off the front of data and returns it with the
// number of bytes it occupies.
func readBitmap(data []byte) (bitmap, int, error) {
	if len(data) < BitmapSize {
		return nil, 0, ErrInsufficientData
	}
	size := BitmapSize
	if data[0]&0x80 != 0 {
		size += BitmapSize
		if len(data) < size {
			return nil, 0, ErrInsufficientData
		}
	}
	return bitmap(data[:size]), size, nil
}

// isSet reports whether data element field (1-based) is present.
func (bm bitmap) isSet(field int) bool {
	i := field - 1
	if i < 0 || i/8 >= len(bm) {
		return false
	}
	return bm[i/8]&(0x80>>(uint(i)%8)) != 0
}

// maxField is the highest data element the bitmap can address.
func (bm bitmap) maxField() int {
	return len(bm) * 8
}
