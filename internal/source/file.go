package source

import (
	"context"
	"os"

	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/internal/contract"
)

// FileSource reads the snapshot document from a local JSON file. It is useful for
// demos and for replaying a captured feed.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading path on every fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Describe returns the file path.
func (s *FileSource) Describe() string { return "file://" + s.path }

// Fetch reads and decodes the file. The modification time is used as updatedAt
// when the document does not carry one.
func (s *FileSource) Fetch(ctx context.Context) (contract.Payload, error) {
	if err := ctx.Err(); err != nil {
		return contract.Payload{}, err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return contract.Payload{}, &feed.NetworkError{URL: s.Describe(), Err: err}
	}
	body, err := os.ReadFile(s.path)
	if err != nil {
		return contract.Payload{}, &feed.NetworkError{URL: s.Describe(), Err: err}
	}
	payload, err := DecodePayload(body)
	if err != nil {
		return contract.Payload{}, err
	}
	if payload.UpdatedAt.IsZero() {
		payload.UpdatedAt = info.ModTime().UTC()
	}
	return payload, nil
}
