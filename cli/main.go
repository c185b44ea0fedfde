package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pradyroy/imagefox/core"
	"github.com/pradyroy/imagefox/core/meta"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

const usage = `Usage: imagefox <command> [args]

Commands:
  view <file> [json]                 show all metadata
  strip <file>... [-o out]           remove all metadata (in place unless -o)
  edit <file> <Field=Value> [-o out] set one named metadata field
  compress <file> <quality> [-o out] lossy re-encode, quality 1-100
  convert <file> <out.ext>           convert format, metadata carried over
`

func main() {
	if len(os.Args) < 3 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "view":
		err = cmdView(os.Args[2:])
	case "strip":
		err = cmdStrip(os.Args[2:])
	case "edit":
		err = cmdEdit(os.Args[2:])
	case "compress":
		err = cmdCompress(os.Args[2:])
	case "convert":
		err = cmdConvert(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func cmdView(args []string) error {
	jsonMode := len(args) > 1 && args[1] == "json"
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	fields, err := meta.ViewMetadata(data)
	if err != nil {
		return err
	}
	p := core.NewPrinter(jsonMode)
	p.PrintMetadata(&core.Metadata{
		FilePath: args[0],
		Format:   strings.ToUpper(string(core.Detect(data))),
		Fields:   fields,
	})
	return nil
}

// cmdStrip processes each file independently; multiple files run in parallel
// since no state crosses pipelines.
func cmdStrip(args []string) error {
	files, out := splitOut(args)
	if out != "" && len(files) != 1 {
		return fmt.Errorf("-o requires exactly one input file")
	}

	var wg sync.WaitGroup
	errs := make([]error, len(files))
	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			errs[i] = stripOne(file, out)
		}(i, file)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func stripOne(file, out string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	stripped, err := meta.RemoveMetadata(data)
	if err != nil {
		return err
	}
	if out == "" {
		out = file
	}
	if err := os.WriteFile(out, stripped, 0644); err != nil {
		return err
	}
	log.Info().Str("file", file).Str("out", out).Msg("metadata stripped")
	return nil
}

func cmdEdit(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("edit needs <file> <Field=Value>")
	}
	field, value, ok := strings.Cut(args[1], "=")
	if !ok || field == "" {
		return fmt.Errorf("expected Field=Value, got %q", args[1])
	}
	_, out := splitOut(args[2:])

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	edited, err := meta.EditMetadata(data, field, value)
	if err != nil {
		return err
	}
	if out == "" {
		out = args[0]
	}
	if err := os.WriteFile(out, edited, 0644); err != nil {
		return err
	}
	log.Info().Str("field", field).Str("out", out).Msg("metadata edited")
	return nil
}

func cmdCompress(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("compress needs <file> <quality>")
	}
	quality, err := strconv.Atoi(args[1])
	if err != nil || quality < 1 || quality > 100 {
		return fmt.Errorf("quality must be 1-100, got %q", args[1])
	}
	_, out := splitOut(args[2:])

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	compressed, err := meta.Compress(data, quality, 0, 0)
	if err != nil {
		return err
	}
	if out == "" {
		out = args[0]
	}
	if err := os.WriteFile(out, compressed, 0644); err != nil {
		return err
	}
	log.Info().Int("quality", quality).
		Int("before", len(data)).Int("after", len(compressed)).
		Str("out", out).Msg("compressed")
	return nil
}

func cmdConvert(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("convert needs <file> <out.ext>")
	}
	out := args[1]
	target := core.FormatForExt(strings.ToLower(filepath.Ext(out)))
	if target == core.FmtUnknown {
		return fmt.Errorf("cannot infer target format from %q", out)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	converted, err := meta.Convert(data, target)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, converted, 0644); err != nil {
		return err
	}
	log.Info().Str("target", string(target)).Str("out", out).Msg("converted")
	return nil
}

// splitOut separates an optional trailing "-o <path>" from the file list.
func splitOut(args []string) (files []string, out string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "-o" && i+1 < len(args) {
			out = args[i+1]
			i++
			continue
		}
		files = append(files, args[i])
	}
	return files, out
}
