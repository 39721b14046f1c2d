package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/ShelfGoat/internal/config"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of products.
	Store(products []*types.Product) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the backends named in cfg.Type. Several comma-separated types
// produce a MultiStorage. columns fixes the CSV column order.
func New(cfg config.StorageConfig, columns []string, logger *slog.Logger) (Storage, error) {
	kinds := config.StorageTypes(cfg.Type)
	backends := make([]Storage, 0, len(kinds))

	for _, kind := range kinds {
		var (
			s   Storage
			err error
		)
		if kind == "mongodb" {
			s, err = NewMongoStorage(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, logger)
		} else {
			s, err = NewFileStorage(kind, cfg.OutputPath, cfg.Compression, columns, logger)
		}
		if err != nil {
			for _, b := range backends {
				b.Close()
			}
			return nil, &types.StorageError{Backend: kind, Err: err}
		}
		backends = append(backends, s)
	}

	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewMultiStorage(backends, logger), nil
}

// output is a file, optionally wrapped in a brotli encoder.
type output struct {
	io.Writer
	file *os.File
	br   *brotli.Writer
}

// createOutput creates path (plus ".br" when compressed) and its parent
// directory. It returns the writer and the final path.
func createOutput(path, compression string) (*output, string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", fmt.Errorf("create output dir: %w", err)
	}
	if compression == "brotli" {
		path += ".br"
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create output file: %w", err)
	}

	out := &output{Writer: f, file: f}
	if compression == "brotli" {
		out.br = brotli.NewWriterLevel(f, brotli.DefaultCompression)
		out.Writer = out.br
	}
	return out, path, nil
}

// Close flushes the encoder, then closes the file.
func (o *output) Close() error {
	if o.br != nil {
		if err := o.br.Close(); err != nil {
			o.file.Close()
			return fmt.Errorf("close brotli writer: %w", err)
		}
	}
	return o.file.Close()
}
