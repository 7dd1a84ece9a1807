package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/moatscreen/internal/strategyconfig"
)

// protocolCmd represents the protocol command
var protocolCmd = &cobra.Command{
	Use:   "protocol",
	Short: "스크리닝 프로토콜 관리",
	Long: `스크리닝 프로토콜(임계값 YAML)을 조회하거나 검증합니다.

Subcommands:
  show      - 현재 프로토콜 출력 (YAML)
  validate  - 프로토콜 파일 검증

Example:
  go run ./cmd/screener protocol show
  go run ./cmd/screener protocol validate config/protocol/fundamental_v1.yaml`,
}

var (
	protocolShowCmd = &cobra.Command{
		Use:   "show",
		Short: "현재 프로토콜 출력",
		RunE:  showProtocol,
	}

	protocolValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "프로토콜 파일 검증",
		Args:  cobra.ExactArgs(1),
		RunE:  validateProtocol,
	}
)

func init() {
	rootCmd.AddCommand(protocolCmd)
	protocolCmd.AddCommand(protocolShowCmd)
	protocolCmd.AddCommand(protocolValidateCmd)
}

func showProtocol(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	protocol, err := strategyconfig.LoadOrDefault(cfg.Screening.ProtocolFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(protocol)
	if err != nil {
		return fmt.Errorf("encode protocol: %w", err)
	}
	snap, err := strategyconfig.NewSnapshot(protocol, data)
	if err != nil {
		return err
	}

	source := cfg.Screening.ProtocolFile
	if source == "" {
		source = "built-in"
	}
	PrintHeader("Screening Protocol",
		"ID", snap.ProtocolID,
		"Version", snap.Version,
		"Source", source,
		"Hash", snap.ConfigHash,
	)
	fmt.Fprintln(out, snap.ConfigYAML)
	return nil
}

func validateProtocol(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	protocol, err := strategyconfig.Parse(data)
	if err != nil {
		var ve strategyconfig.ValidationError
		if errors.As(err, &ve) {
			PrintError(fmt.Sprintf("%s: %s", ve.Field, ve.Message))
		} else {
			PrintError(err.Error())
		}
		return fmt.Errorf("invalid protocol %s", path)
	}

	hash, err := strategyconfig.Hash(protocol)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s is valid (%s %s, hash %s)", path, protocol.Meta.ProtocolID, protocol.Meta.Version, hash[:12]))
	for _, w := range strategyconfig.Warn(protocol) {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	return nil
}
