package fileio

import (
	"bytes"
	"errors"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

// пробуем кодировки по очереди: старые выгрузки часто не в UTF-8
var xlsCharsets = []string{"utf-8", "windows-1252", "windows-1251"}

// xlsWidth — «реальная» ширина листа: Row.LastCol() у старых файлов врёт,
// поэтому пробегаем разумное число колонок и ищем последнюю непустую.
func xlsWidth(sheet *xls.WorkSheet) int {
	const scanMax = 256
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := scanMax - 1; j >= width; j-- {
			if strings.TrimSpace(r.Col(j)) != "" {
				width = j + 1
				break
			}
		}
	}
	if width == 0 {
		width = 1
	}
	return width
}

func readXLS(r io.Reader, headerRow int) ([][]string, error) {
	if headerRow <= 0 {
		return nil, errors.New("headerRow must be 1-based and >= 1")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wb *xls.WorkBook
	lastErr := errors.New("xls: failed to open workbook")
	for _, ch := range xlsCharsets {
		if wb, err = xls.OpenReader(bytes.NewReader(b), ch); err == nil && wb != nil {
			break
		}
		if err != nil {
			lastErr = err
		}
	}
	if wb == nil {
		return nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	width := xlsWidth(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, width)
		if row != nil {
			for j := 0; j < width; j++ {
				cols[j] = strings.TrimSpace(strings.ReplaceAll(row.Col(j), "\u00A0", " "))
			}
		}
		rows = append(rows, cols)
	}
	return rows, nil
}
