// Package storage provides the object storage client used to archive
// flattened catalog snapshots.
//
// Snapshots are JSON documents written under the snapshots/ prefix of the
// configured bucket. The Client interface wraps the Minio SDK so that
// consumers can be tested against the mock in storage/mocks.
package storage
