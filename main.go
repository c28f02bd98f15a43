package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/siegeai/uimeta/apispec"
	"github.com/siegeai/uimeta/meta"
	"github.com/siegeai/uimeta/metrics"
)

func main() {
	_ = godotenv.Load()
	root := getEnv("UIMETA_ROOT", ".")
	output := getEnv("UIMETA_OUTPUT", filepath.Join(root, "nodes", "openapi-data.json"))
	level := getEnv("UIMETA_LOG", "info")

	err := setupLogging(level)
	if err != nil {
		slog.Error("could not init logging", "err", err)
		os.Exit(1)
	}

	if err := run(root, output, os.Stdout); err != nil {
		slog.Error("could not generate metadata", "err", err)
		os.Exit(1)
	}
}

func run(root, output string, out io.Writer) error {
	doc, err := apispec.ReadDocument(root)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	md, err := meta.Generate(doc, meta.WithMetrics(m), meta.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	if err := meta.WriteFile(output, md); err != nil {
		return fmt.Errorf("could not write %s: %w", output, err)
	}

	if err := metrics.LogSummary(slog.Default(), reg); err != nil {
		slog.Warn("could not gather metrics", "err", err)
	}

	_, err = color.New(color.FgGreen).Fprintf(out, "Generated %d operations into %s\n", md.OperationCount, output)
	return err
}

func setupLogging(level string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
	return err
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
