// Package corpus turns the labeled CSV dataset into reference documents.
package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"caserag/internal/domain"
)

// Column names expected in the header row.
const (
	ColumnUser  = "User"
	ColumnPost  = "Post"
	ColumnLabel = "Label"
)

// PreviewLength is the number of characters kept in a document preview.
const PreviewLength = 200

// Load reads the CSV file at path and returns its cleaned documents.
// An unreadable file or a header without the required columns yields an
// error wrapping domain.ErrCorpusUnavailable. Malformed rows are skipped.
func Load(ctx context.Context, path string, logger *slog.Logger) ([]domain.ReferenceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorpusUnavailable, err)
	}
	defer f.Close()
	return Parse(ctx, f, logger)
}

// Parse reads CSV records from r. IDs are assigned densely over the rows
// that survive, in source order.
func Parse(ctx context.Context, r io.Reader, logger *slog.Logger) ([]domain.ReferenceDocument, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrCorpusUnavailable, err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var docs []domain.ReferenceDocument
	row := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				logger.Warn("skipping malformed corpus row", "row", row, "error", err)
				continue
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrCorpusUnavailable, err)
		}
		doc, err := buildDocument(record, cols, len(docs))
		if err != nil {
			logger.Warn("skipping corpus row", "row", row, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	logger.Info("corpus parsed", "rows", row, "documents", len(docs))
	return docs, nil
}

type columns struct {
	user, post, label int
}

func (c columns) max() int {
	m := c.user
	if c.post > m {
		m = c.post
	}
	if c.label > m {
		m = c.label
	}
	return m
}

func locateColumns(header []string) (columns, error) {
	cols := columns{user: -1, post: -1, label: -1}
	for i, name := range header {
		// Excel exports may carry a BOM on the first header cell.
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case ColumnUser:
			cols.user = i
		case ColumnPost:
			cols.post = i
		case ColumnLabel:
			cols.label = i
		}
	}
	var missing []string
	if cols.user < 0 {
		missing = append(missing, ColumnUser)
	}
	if cols.post < 0 {
		missing = append(missing, ColumnPost)
	}
	if cols.label < 0 {
		missing = append(missing, ColumnLabel)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: missing columns %s", domain.ErrCorpusUnavailable, strings.Join(missing, ", "))
	}
	return cols, nil
}

func buildDocument(record []string, cols columns, id int) (domain.ReferenceDocument, error) {
	if len(record) <= cols.max() {
		return domain.ReferenceDocument{}, fmt.Errorf("expected at least %d fields, got %d", cols.max()+1, len(record))
	}
	text := CleanPost(record[cols.post])
	return domain.ReferenceDocument{
		ID:      id,
		Author:  record[cols.user],
		Text:    text,
		Label:   domain.Label(record[cols.label]),
		Preview: Preview(text),
	}, nil
}

// CleanPost undoes the stringified list wrapper some posts were exported
// with ("['a', 'b']" becomes "a b") and unescapes \' sequences.
func CleanPost(s string) string {
	if strings.HasPrefix(s, "['") && strings.HasSuffix(s, "']") {
		if len(s) < 4 {
			s = ""
		} else {
			s = strings.Join(strings.Split(s[2:len(s)-2], "', '"), " ")
		}
	}
	return strings.ReplaceAll(s, `\'`, "'")
}

// Preview returns the first PreviewLength characters of text, with an
// ellipsis appended when text was truncated.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "..."
}
