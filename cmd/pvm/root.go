package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ma5ter/pvm/internal/clock"
	"github.com/ma5ter/pvm/internal/config"
	"github.com/ma5ter/pvm/internal/hostfuncs"
	"github.com/ma5ter/pvm/internal/metrics"
	"github.com/ma5ter/pvm/internal/trace"
	"github.com/ma5ter/pvm/internal/vm"
)

var (
	configPath  string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "pvm",
	Short: "Run packed bytecode images against the stack machine",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a VM config file (viper-format, defaults apply when omitted)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on (disabled when empty)")
	rootCmd.AddCommand(runCmd, traceCmd, stepCmd)
}

// buildVM loads configPath, wires the standard built-in table against
// stdout and a monotonic clock, and constructs a VM over imagePath's bytes.
// When withTracer is set, a zap-backed debug tracer is attached. When
// metricsAddr is non-empty, a Prometheus collector is registered and served
// in a background goroutine.
func buildVM(imagePath string, logger *zap.Logger, withTracer bool) (*vm.VM, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("pvm: reading image %q: %w", imagePath, err)
	}

	image, err := vm.NewImage(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("pvm: loading image %q: %w", imagePath, err)
	}

	mono := clock.NewMonotonic()
	builtins := hostfuncs.Table(os.Stdout, mono)

	var opts []vm.Option
	opts = append(opts, vm.WithClock(mono))
	if withTracer {
		opts = append(opts, vm.WithTracer(trace.NewZapTracer(logger)))
	}
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		recorder := metrics.NewRecorder(reg)
		opts = append(opts, vm.WithObserver(recorder))
		serveMetrics(logger, reg)
	}

	return vm.New(image, builtins, cfg, opts...), nil
}

func serveMetrics(logger *zap.Logger, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}
