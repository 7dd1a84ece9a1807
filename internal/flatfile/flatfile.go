package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wonny/moatscreen/internal/contracts"
)

// File extensions
const (
	ExtCSV = ".csv"
	ExtTXT = ".txt"
)

// seriesSep joins history series inside one CSV cell
const seriesSep = ";"

var (
	ErrBadHeader = errors.New("flatfile: unexpected CSV header")
	ErrNonFinite = errors.New("flatfile: value must be a finite number")
)

// column maps one CSV column to a SecurityPayload field
type column struct {
	name string
	get  func(p *contracts.SecurityPayload) string
	set  func(p *contracts.SecurityPayload, v string) error
}

func stringColumn(name string, field func(p *contracts.SecurityPayload) *string) column {
	return column{
		name: name,
		get:  func(p *contracts.SecurityPayload) string { return *field(p) },
		set: func(p *contracts.SecurityPayload, v string) error {
			*field(p) = v
			return nil
		},
	}
}

func floatColumn(name string, field func(p *contracts.SecurityPayload) *float64) column {
	return column{
		name: name,
		get:  func(p *contracts.SecurityPayload) string { return formatFloat(*field(p)) },
		set: func(p *contracts.SecurityPayload, v string) error {
			f, err := parseFloat(v)
			if err != nil {
				return err
			}
			*field(p) = f
			return nil
		},
	}
}

func seriesColumn(name string, field func(p *contracts.SecurityPayload) *[]float64) column {
	return column{
		name: name,
		get: func(p *contracts.SecurityPayload) string {
			parts := make([]string, len(*field(p)))
			for i, v := range *field(p) {
				parts[i] = formatFloat(v)
			}
			return strings.Join(parts, seriesSep)
		},
		set: func(p *contracts.SecurityPayload, v string) error {
			series, err := parseSeries(v)
			if err != nil {
				return err
			}
			*field(p) = series
			return nil
		},
	}
}

// ⭐ SSOT: CSV 컬럼 순서는 여기서만
var columns = []column{
	stringColumn("ticker", func(p *contracts.SecurityPayload) *string { return &p.Ticker }),
	stringColumn("name", func(p *contracts.SecurityPayload) *string { return &p.Name }),
	stringColumn("sector", func(p *contracts.SecurityPayload) *string { return &p.Sector }),
	floatColumn("price", func(p *contracts.SecurityPayload) *float64 { return &p.Price }),
	floatColumn("beta", func(p *contracts.SecurityPayload) *float64 { return &p.Beta }),
	{
		name: "moats",
		get: func(p *contracts.SecurityPayload) string {
			parts := make([]string, len(p.Moats))
			for i, m := range p.Moats {
				parts[i] = string(m)
			}
			return strings.Join(parts, seriesSep)
		},
		set: func(p *contracts.SecurityPayload, v string) error {
			p.Moats = nil
			for _, part := range splitSeries(v) {
				m, ok := contracts.ParseMoat(part)
				if !ok {
					return fmt.Errorf("unknown moat %q", part)
				}
				p.Moats = append(p.Moats, m)
			}
			return nil
		},
	},
	floatColumn("eps", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.EPS }),
	floatColumn("earnings_growth_5y", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.EarningsGrowth5Y }),
	floatColumn("debt_to_ebitda", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.DebtToEBITDA }),
	floatColumn("roe", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.ROE }),
	floatColumn("roic", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.ROIC }),
	floatColumn("net_margin", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.NetMargin }),
	floatColumn("operating_cash_flow", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.OperatingCashFlow }),
	floatColumn("capex", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.Capex }),
	floatColumn("stock_based_compensation", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.StockBasedCompensation }),
	floatColumn("free_cash_flow", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.FreeCashFlow }),
	floatColumn("book_value_per_share", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.BookValuePerShare }),
	floatColumn("intangible_assets", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.IntangibleAssets }),
	floatColumn("goodwill", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.Goodwill }),
	floatColumn("total_assets", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.TotalAssets }),
	floatColumn("dividend_per_share", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.DividendPerShare }),
	floatColumn("dividend_yield", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.DividendYield }),
	floatColumn("payout_ratio", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.PayoutRatio }),
	floatColumn("shares_outstanding", func(p *contracts.SecurityPayload) *float64 { return &p.Financials.SharesOutstanding }),
	seriesColumn("net_margin_history", func(p *contracts.SecurityPayload) *[]float64 { return &p.Financials.NetMarginHistory }),
	seriesColumn("shares_history", func(p *contracts.SecurityPayload) *[]float64 { return &p.Financials.SharesHistory }),
	seriesColumn("earnings_history", func(p *contracts.SecurityPayload) *[]float64 { return &p.Financials.EarningsHistory }),
}

// Header returns the CSV column names in order
func Header() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.name
	}
	return h
}

// WriteCSV writes payloads with a header row
func WriteCSV(w io.Writer, payloads []contracts.SecurityPayload) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(columns))
	for i := range payloads {
		for j, c := range columns {
			record[j] = c.get(&payloads[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", payloads[i].Ticker, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses payloads. Columns are matched by header name, so order
// may differ and unknown columns are ignored; ticker is mandatory.
func ReadCSV(r io.Reader) ([]contracts.SecurityPayload, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []contracts.SecurityPayload{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := byName["ticker"]; !ok {
		return nil, fmt.Errorf("%w: missing ticker column", ErrBadHeader)
	}

	payloads := make([]contracts.SecurityPayload, 0)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var p contracts.SecurityPayload
		for _, c := range columns {
			idx, ok := byName[c.name]
			if !ok || idx >= len(record) {
				continue
			}
			if err := c.set(&p, strings.TrimSpace(record[idx])); err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, c.name, err)
			}
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// SaveCSV writes payloads to path, adding the .csv extension when missing
func SaveCSV(path string, payloads []contracts.SecurityPayload) (string, error) {
	path = ensureExt(path, ExtCSV)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, payloads); err != nil {
		return "", err
	}
	return path, f.Close()
}

// LoadCSV reads payloads from path
func LoadCSV(path string) ([]contracts.SecurityPayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// SaveReport writes a text report to path, adding the .txt extension when missing
func SaveReport(path, report string) (string, error) {
	path = ensureExt(path, ExtTXT)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func ensureExt(path, ext string) string {
	if strings.EqualFold(filepath.Ext(path), ext) {
		return path
	}
	return path + ext
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	// ParseFloat 은 NaN/Inf 도 받아들임
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonFinite, s)
	}
	return f, nil
}

func splitSeries(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, seriesSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseSeries(s string) ([]float64, error) {
	parts := splitSeries(s)
	if len(parts) == 0 {
		return nil, nil
	}
	series := make([]float64, len(parts))
	for i, p := range parts {
		f, err := parseFloat(p)
		if err != nil {
			return nil, err
		}
		series[i] = f
	}
	return series, nil
}
