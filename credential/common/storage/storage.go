package storage

import "strings"

// Store describes the key-value api the key manager persists to, independent of the backend.
// Read returns nil without error for a missing key.
type Store interface {
	Close() error
	Write(namespace, key string, value []byte) error
	Read(namespace, key string) ([]byte, error)
	ReadAll(namespace string) (map[string][]byte, error)
	Delete(namespace, key string) error
}

// MakeNamespace takes a set of possible namespace values and combines them as a convention
func MakeNamespace(ns ...string) string {
	return strings.Join(ns, "-")
}
