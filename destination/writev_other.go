//go:build !linux

package destination

import "os"

func writeBuffers(f *os.File, bufs [][]byte) (int, error) {
	return writeSequential(f, bufs)
}
