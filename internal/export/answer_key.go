// Package export записывает ключ ответов викторин в XLSX и CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/mindquest/internal/service"
)

const sheetName = "Answer key"

var headers = []string{"Quiz ID", "Quiz", "Question ID", "Question", "Answer ID", "Answer", "Correct"}

// Format - формат выгрузки
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromPath определяет формат по расширению файла
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q (use .xlsx or .csv)", filepath.Ext(path))
}

// Write записывает строки в w в указанном формате
func Write(w io.Writer, format Format, rows []service.AnswerKeyRow) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// WriteCSV записывает ключ ответов в CSV с BOM для корректного открытия в Excel
func WriteCSV(w io.Writer, rows []service.AnswerKeyRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.QuizID), 10),
			sanitizeForExcel(r.QuizTitle),
			strconv.FormatUint(uint64(r.QuestionID), 10),
			sanitizeForExcel(r.Question),
			strconv.FormatUint(uint64(r.AnswerID), 10),
			sanitizeForExcel(r.Answer),
			yesNo(r.IsCorrect),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX записывает ключ ответов в книгу Excel с использованием StreamWriter
func WriteXLSX(w io.Writer, rows []service.AnswerKeyRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.QuizID,
			sanitizeForExcel(r.QuizTitle),
			r.QuestionID,
			sanitizeForExcel(r.Question),
			r.AnswerID,
			sanitizeForExcel(r.Answer),
			yesNo(r.IsCorrect),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(w)
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
