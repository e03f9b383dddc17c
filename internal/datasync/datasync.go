// Package datasync seeds the content database from a content file.
package datasync

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/at-ishikawa/tidbit/internal/content"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	CategoriesUpserted int
	TidbitsNew         int
	TidbitsSkipped     int
	TidbitsUpdated     int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// Importer reads a content document and writes it to the database.
type Importer struct {
	repo   content.Repository
	writer io.Writer
}

// NewImporter creates a new Importer.
func NewImporter(repo content.Repository, writer io.Writer) *Importer {
	return &Importer{
		repo:   repo,
		writer: writer,
	}
}

// ImportContent imports every category and tidbit of data, keeping the file
// order as the sort order. Content with validation errors is rejected.
func (imp *Importer) ImportContent(ctx context.Context, data map[string][]string, opts ImportOptions) (*ImportResult, error) {
	report := content.Validate(data)
	if !report.Valid() {
		return nil, fmt.Errorf("content has %d validation errors: %s", len(report.Errors), strings.Join(report.Errors, "; "))
	}

	categoryIDs := make([]string, 0, len(data))
	for id := range data {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Strings(categoryIDs)

	var result ImportResult
	for _, categoryID := range categoryIDs {
		if !opts.DryRun {
			if err := imp.repo.UpsertCategory(ctx, content.NewCategory(categoryID)); err != nil {
				return nil, fmt.Errorf("UpsertCategory(%s) > %w", categoryID, err)
			}
		}
		fmt.Fprintf(imp.writer, "[CATEGORY]  %s (%d tidbits)\n", categoryID, len(data[categoryID]))
		result.CategoriesUpserted++

		seen := make(map[string]bool, len(data[categoryID]))
		for i, text := range data[categoryID] {
			tidbit := content.NewTidbit(text, categoryID)
			if seen[tidbit.ID] {
				fmt.Fprintf(imp.writer, "  [SKIP]  %q (duplicate)\n", text)
				result.TidbitsSkipped++
				continue
			}
			seen[tidbit.ID] = true

			if err := imp.importTidbit(ctx, tidbit, i, opts, &result); err != nil {
				return nil, fmt.Errorf("importTidbit() > %w", err)
			}
		}
	}
	return &result, nil
}

func (imp *Importer) importTidbit(ctx context.Context, tidbit content.Tidbit, sortOrder int, opts ImportOptions, result *ImportResult) error {
	existing, err := imp.repo.FindTidbit(ctx, tidbit.ID)
	if err != nil {
		return fmt.Errorf("FindTidbit(%s) > %w", tidbit.ID, err)
	}

	if existing == nil {
		record := &content.TidbitRecord{
			ID:         tidbit.ID,
			CategoryID: tidbit.Category,
			Text:       tidbit.Text,
			SortOrder:  sortOrder,
			IsActive:   true,
		}
		if !opts.DryRun {
			if err := imp.repo.CreateTidbit(ctx, record); err != nil {
				return fmt.Errorf("CreateTidbit() > %w", err)
			}
		}
		fmt.Fprintf(imp.writer, "  [NEW]  %q (%s)\n", tidbit.Text, tidbit.ID)
		result.TidbitsNew++
		return nil
	}

	unchanged := existing.SortOrder == sortOrder && existing.IsActive
	if !opts.UpdateExisting || unchanged {
		fmt.Fprintf(imp.writer, "  [SKIP]  %q (%s)\n", tidbit.Text, tidbit.ID)
		result.TidbitsSkipped++
		return nil
	}

	existing.SortOrder = sortOrder
	existing.IsActive = true
	if !opts.DryRun {
		if err := imp.repo.UpdateTidbit(ctx, existing); err != nil {
			return fmt.Errorf("UpdateTidbit() > %w", err)
		}
	}
	fmt.Fprintf(imp.writer, "  [UPDATE]  %q (%s)\n", tidbit.Text, tidbit.ID)
	result.TidbitsUpdated++
	return nil
}
