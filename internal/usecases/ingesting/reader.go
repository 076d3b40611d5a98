package ingesting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// rawRow é um registro do CSV já mapeado por nome de coluna, com o número da
// linha original do arquivo para diagnóstico
type rawRow struct {
	line   int
	record map[string]string
}

// readRows lê o CSV inteiro: cabeçalho na primeira linha, validação das
// colunas obrigatórias antes de qualquer linha ser processada. Erro aqui é
// erro de arquivo (aborta a ingestão antes de qualquer escrita); defeito de
// linha é tratado depois, pelo normalizador.
func readRows(reader io.Reader, requiredColumns []string) ([]rawRow, error) {
	csvReader := csv.NewReader(reader)
	// Plataformas variam a largura das linhas; o normalizador só lê as
	// colunas que conhece
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("arquivo vazio")
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler o cabeçalho: %w", err)
	}

	columnIndex := make(map[string]int, len(header))
	for i, name := range header {
		columnIndex[strings.TrimSpace(stripBOM(name))] = i
	}

	for _, column := range requiredColumns {
		if _, ok := columnIndex[column]; !ok {
			return nil, fmt.Errorf("coluna obrigatória ausente: %q", column)
		}
	}

	rows := make([]rawRow, 0)
	line := 1
	for {
		fields, err := csvReader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao ler a linha %d: %w", line, err)
		}

		record := make(map[string]string, len(columnIndex))
		for name, index := range columnIndex {
			if index < len(fields) {
				record[name] = fields[index]
			}
		}

		rows = append(rows, rawRow{line: line, record: record})
	}

	return rows, nil
}

// stripBOM remove o BOM UTF-8 que exports do Excel colocam na primeira célula
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
