package cli

import (
	"io"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// progressReader wraps a trails file so bytes read tick a progress bar on
// stderr. Stdin has no known size and passes through unwrapped. The caller
// keeps ownership of the file; closing the reader only stops the bar.
func progressReader(f *os.File) io.ReadCloser {
	fi, err := f.Stat()
	if f == os.Stdin || err != nil || fi.Size() <= 0 {
		return io.NopCloser(f)
	}
	bar := pb.New64(fi.Size()).SetUnits(pb.U_BYTES)
	bar.Output = os.Stderr
	bar.Start()
	return &barReader{r: bar.NewProxyReader(f), bar: bar}
}

type barReader struct {
	r   io.Reader
	bar *pb.ProgressBar
}

func (b *barReader) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *barReader) Close() error {
	b.bar.Finish()
	return nil
}
