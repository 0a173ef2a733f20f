//go:build linux

package destination

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// IOV_MAX on linux
const maxIovecs = 1024

// writeBuffers writes bufs to f in order using writev, retrying on EINTR and
// continuing after partial writes. It returns the number of bytes written.
func writeBuffers(f *os.File, bufs [][]byte) (int, error) {
	rc, err := f.SyscallConn()
	if err != nil {
		return writeSequential(f, bufs)
	}

	iovs := make([][]byte, len(bufs))
	copy(iovs, bufs)

	var total int
	var werr error
	err = rc.Write(func(fd uintptr) bool {
		for len(iovs) > 0 {
			batch := iovs
			if len(batch) > maxIovecs {
				batch = batch[:maxIovecs]
			}
			n, e := unix.Writev(int(fd), batch)
			switch {
			case e == unix.EINTR:
				continue
			case e == unix.EAGAIN:
				return false
			case e != nil:
				werr = e
				return true
			}
			if n == 0 && remaining(batch) > 0 {
				werr = io.ErrShortWrite
				return true
			}
			total += n
			iovs = advance(iovs, n)
		}
		return true
	})
	if werr != nil {
		return total, werr
	}
	return total, err
}

func remaining(bufs [][]byte) int {
	n := 0
	for _, b := range bufs {
		n += len(b)
	}
	return n
}

// advance drops n written bytes from the front of iovs
func advance(iovs [][]byte, n int) [][]byte {
	for len(iovs) > 0 && n >= len(iovs[0]) {
		n -= len(iovs[0])
		iovs[0] = nil
		iovs = iovs[1:]
	}
	if len(iovs) > 0 && n > 0 {
		iovs[0] = iovs[0][n:]
	}
	return iovs
}
