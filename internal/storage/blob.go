// Package storage holds the payloads of file-upload answers. A response
// entry references its payload by blob key.
package storage

import "io"

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
