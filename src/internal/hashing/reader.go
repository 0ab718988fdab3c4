package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
)

// ChecksumReaderProxy computes the MD5 of everything read through it.
type ChecksumReaderProxy struct {
	reader io.Reader
	sum    hash.Hash
	n      int64
}

// NewMD5ReaderProxy wraps reader.
func NewMD5ReaderProxy(reader io.Reader) *ChecksumReaderProxy {
	return &ChecksumReaderProxy{
		reader: reader,
		sum:    md5.New(),
	}
}

func (p *ChecksumReaderProxy) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		// hash.Hash.Write never returns an error.
		p.sum.Write(buf[:n])
		p.n += int64(n)
	}
	return n, err
}

// Checksum returns the hex MD5 of the bytes read so far.
func (p *ChecksumReaderProxy) Checksum() string {
	return hex.EncodeToString(p.sum.Sum(nil))
}

// BytesRead returns how many bytes went through the proxy.
func (p *ChecksumReaderProxy) BytesRead() int64 {
	return p.n
}
