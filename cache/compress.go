package cache

import (
	"fmt"

	"github.com/golang/snappy"
)

// Compress сжимает значение перед записью в хранилище
func Compress(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// Decompress распаковывает значение, прочитанное из хранилища
func Decompress(data []byte) ([]byte, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return decompressed, nil
}
