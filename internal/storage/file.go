package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/ShelfGoat/internal/types"
)

// --- JSON Storage ---

// JSONStorage writes products as a JSON array to a file.
type JSONStorage struct {
	path        string
	compression string
	products    []*types.Product
	mu          sync.Mutex
	logger      *slog.Logger
}

// NewJSONStorage creates a new JSON file storage. The file is written on Close.
func NewJSONStorage(outputPath, compression string, logger *slog.Logger) (*JSONStorage, error) {
	return &JSONStorage{
		path:        outputPath,
		compression: compression,
		products:    make([]*types.Product, 0),
		logger:      logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(products []*types.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, products...)
	s.logger.Debug("products buffered", "count", len(products), "total", len(s.products))
	return nil
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, path, err := createOutput(s.path, s.compression)
	if err != nil {
		return err
	}

	docs := make([]map[string]any, len(s.products))
	for i, p := range s.products {
		docs[i] = p.ToDocument()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		out.Close()
		return fmt.Errorf("encode JSON: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	s.logger.Info("JSON written", "path", path, "products", len(s.products))
	return nil
}

// --- JSONL Storage ---

// JSONLStorage writes products as newline-delimited JSON (one object per line).
type JSONLStorage struct {
	path   string
	out    *output
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage (streaming writes).
func NewJSONLStorage(outputPath, compression string, logger *slog.Logger) (*JSONLStorage, error) {
	out, path, err := createOutput(outputPath, compression)
	if err != nil {
		return nil, err
	}

	return &JSONLStorage{
		path:   path,
		out:    out,
		enc:    json.NewEncoder(out),
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(products []*types.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if err := s.enc.Encode(p.ToDocument()); err != nil {
			return fmt.Errorf("encode JSONL: %w", err)
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "products", s.count)
	if s.out != nil {
		return s.out.Close()
	}
	return nil
}

// --- CSV Storage ---

// CSVStorage writes products as CSV rows under a fixed header.
type CSVStorage struct {
	path    string
	out     *output
	writer  *csv.Writer
	headers []string
	mu      sync.Mutex
	count   int
	logger  *slog.Logger
}

// NewCSVStorage creates a new CSV file storage and writes the header row.
func NewCSVStorage(outputPath, compression string, columns []string, logger *slog.Logger) (*CSVStorage, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("csv storage needs at least one column")
	}

	out, path, err := createOutput(outputPath, compression)
	if err != nil {
		return nil, err
	}

	s := &CSVStorage{
		path:    path,
		out:     out,
		writer:  csv.NewWriter(out),
		headers: columns,
		logger:  logger.With("component", "csv_storage"),
	}
	if err := s.writer.Write(s.headers); err != nil {
		out.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	return s, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(products []*types.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		flat := p.ToFlatMap()
		row := make([]string, len(s.headers))
		for i, h := range s.headers {
			row[i] = flat[h]
		}
		if err := s.writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("CSV written", "path", s.path, "products", s.count)
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.out.Close()
		return fmt.Errorf("flush CSV: %w", err)
	}
	return s.out.Close()
}

// NewFileStorage creates the appropriate file-based storage by type.
func NewFileStorage(storageType, outputDir, compression string, columns []string, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		return NewJSONStorage(filepath.Join(outputDir, "products.json"), compression, logger)
	case "jsonl":
		return NewJSONLStorage(filepath.Join(outputDir, "products.jsonl"), compression, logger)
	case "csv":
		return NewCSVStorage(filepath.Join(outputDir, "products.csv"), compression, columns, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
