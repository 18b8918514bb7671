// Command texdump extracts the textures embedded in puppet files and
// writes them out as WebP. Multiple input files are processed by a
// worker pool.
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

	"github.com/HugoSmits86/nativewebp"
	"github.com/charmbracelet/log"

	"inp-rig-runtime/internal/inp"
	"inp-rig-runtime/internal/texture"
)

func main() {
	outDir := flag.String("out", ".", "Output directory")
	maxSize := flag.Int("size", 0, "Downscale textures to fit this size (0 = keep original)")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of worker goroutines")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: texdump [-out dir] [-size n] file.inp...")
		os.Exit(2)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatal("create output dir", "err", err)
	}

	// Worker pool over input files; texture decode inside each file is
	// already concurrent.
	fileChan := make(chan string, *workers*2)
	var failed atomic.Int64
	var written atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range fileChan {
				n, err := dumpFile(path, *outDir, *maxSize)
				if err != nil {
					log.Error("dump failed", "file", path, "err", err)
					failed.Add(1)
					continue
				}
				written.Add(int64(n))
			}
		}()
	}
	for _, f := range files {
		fileChan <- f
	}
	close(fileChan)
	wg.Wait()

	fmt.Printf("Wrote %d texture(s) from %d file(s).\n", written.Load(), len(files))
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func dumpFile(path, outDir string, maxSize int) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	c, err := inp.Parse(data)
	if err != nil {
		return 0, err
	}
	images, err := texture.DecodeAll(c.Textures)
	if err != nil {
		return 0, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, img := range images {
		if maxSize > 0 {
			img = texture.Downsample(img, maxSize)
		}
		outPath := filepath.Join(outDir, fmt.Sprintf("%s_%d.webp", stem, i))
		f, err := os.Create(outPath)
		if err != nil {
			return i, err
		}
		if err := nativewebp.Encode(f, img, nil); err != nil {
			f.Close()
			return i, fmt.Errorf("webp encode %s: %w", outPath, err)
		}
		if err := f.Close(); err != nil {
			return i, err
		}
	}
	return len(images), nil
}
