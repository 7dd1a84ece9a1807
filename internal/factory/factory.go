package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/security"
	"github.com/wonny/moatscreen/internal/strategyconfig"
	"github.com/wonny/moatscreen/internal/valuation"
	"github.com/wonny/moatscreen/pkg/logger"
)

// DefaultShares replaces a missing or non-positive share count
const DefaultShares = 1e9

// sectorKeywords maps free-text sector names by case-insensitive substring, first match wins
var sectorKeywords = []struct {
	sector   contracts.Sector
	keywords []string
}{
	{contracts.SectorTechnology, []string{"tech", "software", "hardware", "semiconductor"}},
	{contracts.SectorBank, []string{"finan", "bank", "insurance"}},
	{contracts.SectorUtility, []string{"util", "electric", "water"}},
	{contracts.SectorConsumerStaples, []string{"consum", "beverage", "food"}},
	{contracts.SectorHealth, []string{"health", "pharma", "medical"}},
	{contracts.SectorIndustrial, []string{"indust", "manufact"}},
	{contracts.SectorRealEstate, []string{"real estate", "reit"}},
}

// MapSector resolves a free-text sector name to a sector variant
// ⭐ SSOT: 외부 섹터 문자열 → 섹터 변형 매핑
func MapSector(raw string) contracts.Sector {
	if s, ok := contracts.ParseSector(raw); ok {
		return s
	}

	lower := strings.ToLower(raw)
	for _, entry := range sectorKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.sector
			}
		}
	}
	return contracts.SectorGeneral
}

// Factory builds Securities from raw payloads, choosing the sector variant and default strategy
type Factory struct {
	protocol *strategyconfig.Config
	logger   *logger.Logger
}

// New creates a factory. A nil protocol uses strategyconfig.Default().
func New(protocol *strategyconfig.Config, log *logger.Logger) *Factory {
	if protocol == nil {
		protocol = strategyconfig.Default()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Factory{
		protocol: protocol,
		logger:   log.WithComponent("factory"),
	}
}

// Build creates a Security from a payload
func (f *Factory) Build(p contracts.SecurityPayload) (*security.Security, error) {
	sector := MapSector(p.Sector)

	metrics := p.Financials
	if metrics.SharesOutstanding <= 0 {
		f.logger.WithTicker(p.NormalizedTicker()).Debug("Shares outstanding missing, using default")
		metrics.SharesOutstanding = DefaultShares
	}

	sec, err := security.New(p.Ticker, p.Name, sector, p.Price, p.Beta,
		contracts.NewFinancialProfile(metrics),
		security.WithStrategy(valuation.ForSector(sector)),
		security.WithProtocol(f.protocol),
		security.WithMoats(p.Moats...),
	)
	if err != nil {
		return nil, fmt.Errorf("build security: %w", err)
	}

	f.logger.WithTicker(sec.Ticker()).WithFields(map[string]interface{}{
		"raw_sector": p.Sector,
		"sector":     string(sector),
		"strategy":   sec.StrategyName(),
		"moats":      sec.MoatCount(),
	}).Debug("Security built")

	return sec, nil
}

// BuildAll builds every payload, skipping failures.
// The returned error joins every failure; built securities are returned regardless.
func (f *Factory) BuildAll(payloads []contracts.SecurityPayload) ([]*security.Security, error) {
	built := make([]*security.Security, 0, len(payloads))
	var errs []error

	for i, p := range payloads {
		sec, err := f.Build(p)
		if err != nil {
			f.logger.WithError(err).WithFields(map[string]interface{}{
				"index":  i,
				"ticker": p.Ticker,
			}).Warn("Skipping invalid payload")
			errs = append(errs, fmt.Errorf("payload %d (%q): %w", i, p.Ticker, err))
			continue
		}
		built = append(built, sec)
	}

	f.logger.WithFields(map[string]interface{}{
		"requested": len(payloads),
		"built":     len(built),
	}).Info("Securities built")

	return built, errors.Join(errs...)
}
