package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/biblio-core/internal/domain/services"
	"github.com/ersonp/biblio-core/internal/infrastructure/parsers"
)

// ImportHandler handles importing entities from files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format   string // "json", "csv", or "auto"
	DryRun   bool   // Validate without saving
	EditorID int64
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Created  []string
	Errors   []services.ImportError
}

// Handle imports entities from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	records, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if len(records) == 0 {
		return &ImportResult{}, nil
	}

	serviceResult, err := h.service.Import(ctx, records, services.ImportOptions{
		DryRun:   opts.DryRun,
		EditorID: opts.EditorID,
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Imported: serviceResult.Imported,
		Created:  serviceResult.Created,
		Errors:   serviceResult.Errors,
	}, nil
}
