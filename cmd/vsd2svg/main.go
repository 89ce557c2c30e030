// Command vsd2svg converts Visio 2003 (.vsd) drawings to SVG or PDF.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Xiska/libvisio"
)

func main() {
	var input, output, configPath, format string
	var watch bool

	flag.StringVar(&input, "i", "", "Input .vsd file or directory")
	flag.StringVar(&input, "input", "", "Input .vsd file or directory")
	flag.StringVar(&output, "o", "", "Output file (.svg/.pdf) or directory")
	flag.StringVar(&output, "output", "", "Output file (.svg/.pdf) or directory")
	flag.StringVar(&format, "format", "", "Output format: svg or pdf (overrides config)")
	flag.StringVar(&configPath, "config", "config.toml", "Path to config file (TOML)")
	flag.BoolVar(&watch, "watch", false, "Run as daemon, watching directories from config [watch] section")
	flag.Parse()

	cfg, err := libvisio.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if format != "" {
		cfg.Render.Format = format
	}

	if watch {
		if len(cfg.Watch.Directories) == 0 {
			fmt.Fprintln(os.Stderr, "Error: [watch] requires at least one directory in config")
			os.Exit(1)
		}
		if err := runWatchMode(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if input == "" || output == "" {
		fmt.Fprintln(os.Stderr, "Usage: vsd2svg -i <input> -o <output> [--format svg|pdf] [--config config.toml]")
		fmt.Fprintln(os.Stderr, "       vsd2svg --watch [--config config.toml]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: input path '%s' does not exist.\n", input)
		os.Exit(1)
	}

	if info.IsDir() {
		err = processDirectory(input, output, cfg)
	} else {
		err = processSingleFile(input, output, cfg)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func processSingleFile(inputFile, outputFile string, cfg *libvisio.Config) error {
	if !strings.HasSuffix(strings.ToLower(inputFile), ".vsd") {
		return fmt.Errorf("input file '%s' must have a .vsd extension", inputFile)
	}
	if info, err := os.Stat(outputFile); err == nil && info.IsDir() {
		return fmt.Errorf("input is a file, but output '%s' is a directory; specify an output file path", outputFile)
	}

	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if isUpToDate(inputFile, outputFile) {
		fmt.Printf("'%s' is already up-to-date. Skipping.\n", outputFile)
		return nil
	}

	fmt.Println("Converting single file...")
	start := time.Now()

	if err := convertFile(inputFile, outputFile, cfg); err != nil {
		return err
	}

	fmt.Printf("Successfully converted '%s' to '%s' in %.2fs\n", inputFile, outputFile, time.Since(start).Seconds())
	return nil
}

type convJob struct {
	input  string
	output string
}

func processDirectory(inputDir, outputDir string, cfg *libvisio.Config) error {
	if info, err := os.Stat(outputDir); err == nil && !info.IsDir() {
		return fmt.Errorf("input is a directory, but output '%s' is a file; specify an output directory", outputDir)
	}

	fmt.Printf("Scanning for .vsd files in '%s'...\n", inputDir)

	ext := outputExt(cfg)
	var jobs []convJob
	var numSkipped int

	err := filepath.WalkDir(inputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".vsd") {
			return nil
		}
		rel, _ := filepath.Rel(inputDir, path)
		out := filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+ext)
		if isUpToDate(path, out) {
			numSkipped++
		} else {
			jobs = append(jobs, convJob{input: path, output: out})
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(jobs) == 0 && numSkipped == 0 {
		fmt.Println("No .vsd files found. Exiting.")
		return nil
	}
	if len(jobs) == 0 {
		fmt.Printf("All %d files are already up-to-date. Nothing to do.\n", numSkipped)
		return nil
	}

	fmt.Printf("Found %d modified files to convert (%d up-to-date, skipped).\n", len(jobs), numSkipped)
	start := time.Now()

	var (
		completed atomic.Int64
		wg        sync.WaitGroup
	)
	total := int64(len(jobs))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	errCh := make(chan string, len(jobs))

	for _, j := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(j convJob) {
			defer func() { <-sem; wg.Done() }()
			if dir := filepath.Dir(j.output); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errCh <- fmt.Sprintf("failed to create directory '%s': %v", dir, err)
					return
				}
			}
			if err := convertFile(j.input, j.output, cfg); err != nil {
				errCh <- fmt.Sprintf("failed to convert '%s': %v", j.input, err)
			}
			n := completed.Add(1)
			fmt.Printf("\r[%d/%d] Converted %s", n, total, filepath.Base(j.input))
		}(j)
	}
	wg.Wait()
	close(errCh)

	fmt.Println()
	for msg := range errCh {
		fmt.Fprintln(os.Stderr, msg)
	}

	fmt.Printf("Converted %d files in %.2fs\n", len(jobs), time.Since(start).Seconds())
	return nil
}

func outputExt(cfg *libvisio.Config) string {
	if cfg.Render.Format == "pdf" {
		return ".pdf"
	}
	return ".svg"
}

// convertFile opens inputFile, runs it through a libvisio.Parser, and
// writes the rendered result to outputFile according to cfg.Render.Format.
func convertFile(inputFile, outputFile string, cfg *libvisio.Config) error {
	f, err := os.Open(inputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	in := libvisio.NewReaderInput(f, fi.Size())

	parser := libvisio.New()
	parser.Scale = cfg.Render.Scale

	switch cfg.Render.Format {
	case "pdf":
		painter := libvisio.NewPDFPainter()
		if !parser.Parse(in, painter) {
			return fmt.Errorf("parsing '%s': malformed VSD11 container", inputFile)
		}
		out, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		if err := painter.Write(out); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		return libvisio.ValidatePDF(outputFile)
	default:
		painter := libvisio.NewSVGPainter()
		painter.Vectorize = cfg.Render.Vectorize
		if !parser.Parse(in, painter) {
			return fmt.Errorf("parsing '%s': malformed VSD11 container", inputFile)
		}
		pages := painter.Pages()
		if len(pages) == 0 {
			return fmt.Errorf("'%s' has no pages", inputFile)
		}
		return os.WriteFile(outputFile, []byte(pages[0]), 0644)
	}
}

func isUpToDate(input, output string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}
	inInfo, err := os.Stat(input)
	if err != nil {
		return false
	}
	return !outInfo.ModTime().Before(inInfo.ModTime())
}
