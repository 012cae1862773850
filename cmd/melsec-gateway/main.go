// Command melsec-gateway starts the HTTP gateway in front of the mcp
// client library. Flags layer over the PLC_* environment variables the
// way original_source/plc_operations.py::PLCConnectionConfig reads
// them, following the teacher pack's pflag-over-env convention
// (doismellburning-samoyed/cmd/direwolf/main.go).
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/hi-ropon/go-melsec/gateway"
	"github.com/hi-ropon/go-melsec/internal/logging"
	"github.com/hi-ropon/go-melsec/mcp"
)

func main() {
	os.Exit(run())
}

func run() int {
	envCfg := mcp.ConfigFromEnv()

	var (
		addr      = pflag.StringP("listen", "l", ":8000", "HTTP listen address")
		plcHost   = pflag.StringP("plc-host", "H", envCfg.Host, "PLC host or IP address")
		plcPort   = pflag.IntP("plc-port", "p", envCfg.Port, "PLC port")
		timeout   = pflag.Float64P("timeout", "t", envCfg.Timeout.Seconds(), "PLC round-trip timeout, in seconds")
		seriesStr = pflag.StringP("series", "s", envCfg.Series.String(), `PLC series: "Q", "L", "QnA", "iQ-L", or "iQ-R"`)
		ascii     = pflag.BoolP("ascii", "a", envCfg.ASCII, "use ASCII comm type instead of binary")
		transport = pflag.StringP("transport", "T", string(envCfg.Transport), `"tcp" or "udp"`)
		logLevel  = pflag.StringP("log-level", "v", "info", `log level: "debug", "info", "warn", or "error"`)
		help      = pflag.BoolP("help", "h", false, "display help text")
	)
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 0
	}

	logging.SetLevel(*logLevel)

	series, err := mcp.ParseSeries(*seriesStr)
	if err != nil {
		logging.Error("invalid PLC series", "value", *seriesStr, "error", err)
		return 1
	}

	cfg := envCfg
	cfg.Host = *plcHost
	cfg.Port = *plcPort
	cfg.Series = series
	cfg.ASCII = *ascii
	cfg.Transport = mcp.Transport(*transport)
	cfg.Timeout = time.Duration(*timeout * float64(time.Second))

	handler := gateway.NewHandler(func() mcp.ConnectionConfig { return cfg })

	server := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("starting gateway", "listen", *addr, "plc", cfg.Addr(), "series", cfg.Series.String())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Error("gateway stopped", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
