package destination

import (
	"net"
	"os"
)

// writeSequential writes bufs in order through net.Buffers, which uses a
// single vectored write when the destination supports it
func writeSequential(f *os.File, bufs [][]byte) (int, error) {
	b := make(net.Buffers, len(bufs))
	copy(b, bufs)
	n, err := b.WriteTo(f)
	return int(n), err
}
