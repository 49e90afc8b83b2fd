package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
)

// demoCatalog productos por defecto cuando no se pasa un CSV.
var demoCatalog = []dto.CreateProductRequest{
	{Barcode: "7801610001196", Name: "Bebida cola 1.5L", CostPrice: decimal.NewFromInt(950), SalePrice: decimal.NewFromInt(1590), Stock: 48},
	{Barcode: "7802800533220", Name: "Galletas de chocolate", CostPrice: decimal.NewFromInt(420), SalePrice: decimal.NewFromInt(790), Stock: 60},
	{Barcode: "7804650000012", Name: "Pan de molde integral", CostPrice: decimal.NewFromInt(1350), SalePrice: decimal.NewFromInt(2190), Stock: 15},
	{Barcode: "7801505000236", Name: "Leche entera 1L", CostPrice: decimal.NewFromInt(780), SalePrice: decimal.NewFromInt(1150), Stock: 36},
	{Barcode: "7802920000513", Name: "Café instantáneo 170g", CostPrice: decimal.NewFromInt(3900), SalePrice: decimal.NewFromInt(5990), Stock: 4},
	{Barcode: "7801320009113", Name: "Detergente líquido 3L", CostPrice: decimal.NewFromInt(4800), SalePrice: decimal.NewFromInt(7490), Stock: 8},
	{Barcode: "7806500000019", Name: "Arroz grado 1 kg", CostPrice: decimal.NewFromInt(990), SalePrice: decimal.NewFromInt(1490), Stock: 0},
}

// readCatalog lee productos desde CSV separado por ';' con columnas
// barcode;nombre;costo;precio;stock. Acepta UTF-8 o ISO-8859-1 (exportación típica de planillas).
// La primera fila se descarta si su columna de costo no es numérica (encabezado).
func readCatalog(r io.Reader) ([]dto.CreateProductRequest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 5

	var out []dto.CreateProductRequest
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		cost, errCost := parseMoney(rec[2])
		if line == 1 && errCost != nil {
			continue
		}
		if errCost != nil {
			return nil, fmt.Errorf("línea %d: costo %q inválido", line, rec[2])
		}
		price, err := parseMoney(rec[3])
		if err != nil {
			return nil, fmt.Errorf("línea %d: precio %q inválido", line, rec[3])
		}
		stock, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("línea %d: stock %q inválido", line, rec[4])
		}
		out = append(out, dto.CreateProductRequest{
			Barcode:   strings.TrimSpace(rec[0]),
			Name:      strings.TrimSpace(rec[1]),
			CostPrice: cost,
			SalePrice: price,
			Stock:     stock,
		})
	}
	return out, nil
}

// parseMoney acepta "1.590", "1590" o "1590,50" (coma decimal).
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if strings.Count(s, ".") >= 1 && len(s)-strings.LastIndex(s, ".") == 4 {
		s = strings.ReplaceAll(s, ".", "")
	}
	return decimal.NewFromString(s)
}
