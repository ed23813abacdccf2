package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ItalyPaleAle/rss-scraper/models"
	"github.com/ItalyPaleAle/rss-scraper/utils"
)

// Header of the CSV snapshot
var Header = []string{"feed", "title", "link", "published", "summary", "fetched_at"}

// Source returns the rows to export, already sorted
// It's implemented by *db.Store
type Source interface {
	ExportRows(ctx context.Context) ([]models.ExportRow, error)
}

// WriteCSV writes the header and one line per row
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	cw := csv.NewWriter(w)
	err := cw.Write(Header)
	if err != nil {
		return err
	}
	for _, r := range rows {
		err = cw.Write([]string{r.Feed, r.Title, r.Link, r.Published.String(), r.Summary, r.FetchedAt.String()})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToFile exports all items to the CSV file at path, replacing it
// It returns the number of rows written
func ToFile(ctx context.Context, src Source, path string) (int, error) {
	rows, err := src.ExportRows(ctx)
	if err != nil {
		return 0, err
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("invalid CSV path: %w", err)
	}
	dir := filepath.Dir(path)
	err = utils.EnsureFolder(dir)
	if err != nil {
		return 0, fmt.Errorf("could not create the folder for the CSV file: %w", err)
	}

	// Write to a temporary file first so a failed export doesn't truncate the previous snapshot
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	defer os.Remove(f.Name())

	err = WriteCSV(f, rows)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("error writing the CSV file: %w", err)
	}
	err = f.Close()
	if err != nil {
		return 0, err
	}
	err = os.Rename(f.Name(), path)
	if err != nil {
		return 0, err
	}

	return len(rows), nil
}
