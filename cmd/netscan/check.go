package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/netscan/internal/model"
	"github.com/user/netscan/internal/validate"
)

func parsePortsFlag(raw string) ([]int, error) {
	ports, err := validate.Ports(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --ports: %w", err)
	}
	return ports, nil
}

var checkPorts string

var checkCmd = &cobra.Command{
	Use:   "check <tool> <target>",
	Short: "Run a single diagnostic from the terminal",
	Long: `Run one diagnostic tool against a target and print the JSON
envelope. The local caller is treated as pro tier, so every tool is
available and no rate limit applies.

Examples:
  netscan check ping example.com
  netscan check dns example.com
  netscan check port-scan example.com --ports 22,80,443
  netscan check geoip 8.8.8.8`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkPorts, "ports", "", "comma-separated ports (port-scan only)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	toolID, ok := model.ParseToolID(args[0])
	if !ok {
		return fmt.Errorf("unknown tool %q (available: %v)", args[0], model.AllTools())
	}

	gw, cleanup, err := buildGateway(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	req := model.DiagnosticRequest{
		Tool:     toolID,
		Target:   args[1],
		Identity: "cli",
		Tier:     model.TierPro,
	}

	if toolID == model.ToolPortScan && checkPorts != "" {
		// Reuse the same parsing the API applies.
		req.Ports, err = parsePortsFlag(checkPorts)
		if err != nil {
			return err
		}
	}

	result, _ := gw.Run(context.Background(), req)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}

	if !result.Success {
		os.Exit(1)
	}
	return nil
}
