package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joelkehle/weightfill/internal/report"
)

func main() {
	inputPath := flag.String("input", "", "Path to run-report markdown (required)")
	outputPath := flag.String("output", "", "Path to write the PDF (defaults to input with .pdf)")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}
	out := *outputPath
	if out == "" {
		out = strings.TrimSuffix(*inputPath, ".md") + ".pdf"
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pdf, err := report.NewChromiumPDFRenderer().Render(ctx, string(in))
	if err != nil {
		log.Fatalf("render pdf: %v", err)
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		log.Fatalf("write pdf: %v", err)
	}
	log.Printf("wrote %s (%d bytes)", out, len(pdf))
}
