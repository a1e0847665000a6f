package littleendian

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUint32(t *testing.T) {
	cases := map[string]struct {
		b    []byte
		want uint32
	}{
		"zero":                   {[]byte{0, 0, 0, 0}, 0},
		"low byte only":          {[]byte{0x01, 0, 0, 0}, 0x01},
		"second byte only":       {[]byte{0, 0x01, 0, 0}, 0x0100},
		"header_size-like value": {[]byte{0x90, 0x01, 0, 0}, 0x0190},
		"max value":              {[]byte{0xff, 0xff, 0xff, 0xff}, 0xffffffff},
		"trailing bytes ignored": {[]byte{0x2c, 0x01, 0, 0, 0xff, 0xff}, 0x012c},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Uint32(tc.b))
		})
	}
}

func TestUint32Panics(t *testing.T) {
	assert.Panics(t, func() {
		Uint32([]byte{1, 2, 3})
	})
}
