package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"catalyst-trader/internal/model"
)

// FillsHeader 成交导出的表头
var FillsHeader = []string{"ts", "symbol", "side", "px", "qty", "reason"}

// WriteFillsCSV 按成交顺序写出 CSV
func WriteFillsCSV(w io.Writer, fills []model.Fill) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FillsHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, f := range fills {
		row := []string{
			f.Ts.UTC().Format(time.RFC3339),
			f.Symbol,
			string(f.Side),
			strconv.FormatFloat(f.Px, 'f', -1, 64),
			strconv.FormatFloat(f.Qty, 'f', -1, 64),
			f.Reason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteFillsFile 覆盖写入文件
func WriteFillsFile(path string, fills []model.Fill) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteFillsCSV(f, fills); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
