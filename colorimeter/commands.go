package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itohio/gocolorimeter/pkg/config"
	"github.com/itohio/gocolorimeter/pkg/device"
)

var (
	configPath  string
	portName    string
	storeKind   string
	storePath   string
	metricsAddr string
	force       bool

	rootCmd = &cobra.Command{
		Use:   "colorimeter",
		Short: "Simulated three LED colorimeter with a serial command shell",
		Long: `colorimeter runs the colorimeter command shell against a simulated
sensor head, on the terminal or on a serial port.`,
		SilenceUsage: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the command shell",
		RunE:  runShell,
	}

	portsCmd = &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		RunE:  listPorts,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Write the default configuration",
		RunE:  writeConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Configuration file path")

	runCmd.Flags().StringVarP(&portName, "port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
	runCmd.Flags().StringVar(&storeKind, "store", "", "Color store backend override (memory, file, badger)")
	runCmd.Flags().StringVar(&storePath, "store-path", "", "Color store path override")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address override (e.g., :9100)")

	configCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	rootCmd.AddCommand(runCmd, portsCmd, configCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if portName != "" {
		cfg.Serial.Port = portName
	}
	if storeKind != "" {
		cfg.Store.Backend = storeKind
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if metricsAddr != "" {
		cfg.Metrics.Listen = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		in  io.Reader = os.Stdin
		out io.Writer = os.Stdout
	)
	if cfg.Serial.Port != "" {
		port, err := device.OpenPort(cfg.Serial.Port, cfg.Serial.BaudRate)
		if err != nil {
			return err
		}
		defer func() {
			if err := port.Close(); err != nil {
				log.Printf("Error closing serial port: %v", err)
			}
		}()
		in, out = port, port
		log.Printf("Serving on %s at %d baud", cfg.Serial.Port, cfg.Serial.BaudRate)
	}

	return run(ctx, cfg, in, out)
}

func listPorts(cmd *cobra.Command, args []string) error {
	ports, err := device.Ports()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(ports) == 0 {
		fmt.Fprintln(w, "No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
	}
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
		}
	}

	if err := config.Default().Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}
