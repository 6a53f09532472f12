package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/gin-gonic/gin"
	"github.com/golang/glog"

	"github.com/sanity-io/statement/internal/sample"
	"github.com/sanity-io/statement/internal/server"
)

const StatementdVersion = "0.1.0"

func main() {
	usage := `Update statement server.

The listen address and port default to the SERVER_ADDRESS and PORT
environment variables, then to 127.0.0.1:3000.

Usage:
    statementd [--address=<address>] [--port=<port>] [--v=<level>] [--debug]
    statementd -h | --help
    statementd --version

Options:
    -h --help              Show this screen.
    --version              Show version.
    --address=<address>    Listen address.
    --port=<port>          Listen port.
    --v=<level>            Log verbosity.
    --debug                Run gin in debug mode.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], StatementdVersion)
	if err != nil {
		panic(err)
	}

	// glog reads its configuration from the standard flag set
	flag.Set("logtostderr", "true")
	if level, err := opts.String("--v"); err == nil && level != "" {
		flag.Set("v", level)
	}
	flag.CommandLine.Parse([]string{})
	defer glog.Flush()

	if debug, _ := opts.Bool("--debug"); !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	o := server.Options{
		Address:  setting(opts, "--address", "SERVER_ADDRESS", server.DefaultAddress),
		Port:     setting(opts, "--port", "PORT", server.DefaultPort),
		Document: sample.Document(),
	}

	errs := make(chan error, 1)
	s, err := server.Start(o, func(err error) {
		errs <- err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		glog.Errorf("[server]listen error = %s\n", err)
		glog.Flush()
		os.Exit(1)
	case sig := <-signals:
		glog.Infof("[server]%s, shutting down\n", sig)
	}

	if err := s.Stop(); err != nil {
		glog.Errorf("[server]%s\n", err)
	}
}

// setting resolves a flag, then an environment variable, then a default.
func setting(opts docopt.Opts, option string, env string, defaultValue string) string {
	if value, err := opts.String(option); err == nil && value != "" {
		return value
	}
	if value := os.Getenv(env); value != "" {
		return value
	}
	return defaultValue
}
