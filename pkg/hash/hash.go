package hash

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// Digest считает контрольную сумму скачанного файла для истории загрузок
type Digest struct {
	algorithm Algorithm
}

func New(algorithm Algorithm) *Digest {
	return &Digest{algorithm: algorithm}
}

func (d *Digest) Algorithm() Algorithm {
	return d.algorithm
}

func (d *Digest) Calculate(data []byte) (string, error) {
	hasher, err := d.hasher()
	if err != nil {
		return "", err
	}

	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (d *Digest) CalculateReader(reader io.Reader) (string, int64, error) {
	hasher, err := d.hasher()
	if err != nil {
		return "", 0, err
	}

	n, err := io.Copy(hasher, reader)
	if err != nil {
		return "", n, fmt.Errorf("failed to read data: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), n, nil
}

func (d *Digest) Verify(data []byte, expected string) (bool, error) {
	calculated, err := d.Calculate(data)
	if err != nil {
		return false, err
	}

	return calculated == expected, nil
}

func (d *Digest) hasher() (hash.Hash, error) {
	switch d.algorithm {
	case MD5:
		return md5.New(), nil
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", d.algorithm)
	}
}

// Writer считает сумму потока, который пишется через него (например, через io.TeeReader)
type Writer struct {
	h hash.Hash
	n int64
}

func (d *Digest) NewWriter() (*Writer, error) {
	hasher, err := d.hasher()
	if err != nil {
		return nil, err
	}
	return &Writer{h: hasher}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.h.Write(p)
	w.n += int64(n)
	return n, err
}

func (w *Writer) Sum() string {
	return hex.EncodeToString(w.h.Sum(nil))
}

func (w *Writer) Size() int64 {
	return w.n
}
