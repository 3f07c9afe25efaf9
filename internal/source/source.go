// Package source provides the snapshot sources the sync controller reads from.
package source

import (
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
)

// Open builds the source selected by cfg. The returned close function releases
// any connection pool and is safe to call for every backend.
func Open(cfg *contract.Config) (contract.SnapshotSource, func(), error) {
	switch cfg.SourceBackend {
	case schema.FileSource:
		return NewFileSource(cfg.Source), func() {}, nil
	case schema.SQLiteSource, schema.MySQLSource, schema.PostgreSQLSource:
		src, err := NewSQLSource(cfg.SourceBackend, cfg.Source, cfg.SourceTable)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	default:
		return NewHTTPSource(cfg.Source, cfg.FetchTimeout), func() {}, nil
	}
}
