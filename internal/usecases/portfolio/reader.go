package portfolio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vfg2006/fba-portfolio-api/internal/domain"
	"github.com/vfg2006/fba-portfolio-api/pkg/apiErrors"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Delimitadores aceitos no upload, em ordem de preferência no empate
var uploadDelimiters = []rune{',', ';', '\t'}

// ReadRows converte um arquivo .csv ou .xlsx (primeira planilha) em linhas brutas.
// A primeira linha é o cabeçalho e vira a chave de cada RawRow.
func ReadRows(r io.Reader, filename string) ([]domain.RawRow, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, NewAnalysisError(ErrUnsupportedFile, apiErrors.ErrUnsupportedFile, fmt.Sprintf("Arquivo %q não suportado, envie .csv ou .xlsx", filename))
	}
	if err != nil {
		return nil, NewAnalysisError(ErrUnreadableFile, apiErrors.ErrInvalidFormat, err.Error())
	}

	if len(records) == 0 {
		return nil, NewAnalysisError(ErrEmptyBatch, apiErrors.ErrMissingRequiredData, "O arquivo não possui cabeçalho")
	}

	return toRawRows(records[0], records[1:]), nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// sniffDelimiter escolhe o delimitador mais frequente na linha de cabeçalho
func sniffDelimiter(data []byte) rune {
	header, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')

	best, bestCount := uploadDelimiters[0], 0
	for _, d := range uploadDelimiters {
		if count := strings.Count(header, string(d)); count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	return f.GetRows(sheets[0])
}

func toRawRows(header []string, records [][]string) []domain.RawRow {
	rows := make([]domain.RawRow, 0, len(records))
	for _, record := range records {
		row := make(domain.RawRow, len(header))
		for i, key := range header {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if _, exists := row[key]; exists {
				continue
			}
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row[key] = value
		}
		rows = append(rows, row)
	}
	return rows
}
