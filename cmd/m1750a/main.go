package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avdva/mil1750a"
	"github.com/avdva/mil1750a/wordio"
)

var (
	widthFlag = flag.String("width", "32", "Word width: 16, 32, or 48")
	decode    = flag.Bool("decode", false, "Treat inputs as hex words and decode them")
	asJSON    = flag.Bool("json", false, "Print results as JSON objects, one per line")
	exact     = flag.Bool("exact", false, "Print exact decimal values of words")
	inPath    = flag.String("in", "", "Decode a binary stream of words from file")
	outPath   = flag.String("out", "", "Write encoded words to a binary file instead of printing them")
	debug     = flag.Bool("debug", false, "Enable debug logging")
)

type config struct {
	width  mil1750a.Width
	decode bool
	json   bool
	exact  bool
	in     string
	out    string
}

type result struct {
	Input    string  `json:"input"`
	Word     string  `json:"word"`
	Value    float64 `json:"value"`
	Mantissa int64   `json:"mantissa"`
	Exponent int     `json:"exponent"`
	Exact    string  `json:"exact,omitempty"`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	flag.Parse()
	defer glog.Flush()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	width, err := mil1750a.ParseWidth(*widthFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Bad word width")
	}
	cfg := config{
		width:  width,
		decode: *decode,
		json:   *asJSON,
		exact:  *exact,
		in:     *inPath,
		out:    *outPath,
	}
	log.Debug().Str("width", width.String()).Bool("decode", cfg.decode).Msg("Starting")

	failed, err := run(cfg, flag.Args(), os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Conversion stopped")
	}
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("Some inputs were not converted")
		glog.Flush()
		os.Exit(1)
	}
}

// run converts args, or lines of stdin if there are no args, and returns the number of bad inputs.
func run(cfg config, args []string, stdin io.Reader, stdout io.Writer) (failed int, err error) {
	if cfg.in != "" {
		return 0, decodeFile(cfg, stdout)
	}
	if cfg.out != "" {
		f, err := os.Create(cfg.out)
		if err != nil {
			return 0, err
		}
		return writeWords(cfg, args, stdin, f)
	}
	err = forEachInput(args, stdin, func(s string) error {
		word, ok := convertLogged(cfg, s)
		if !ok {
			failed++
			return nil
		}
		return printResult(stdout, cfg, s, word)
	})
	return failed, err
}

// writeWords writes converted inputs to out as a binary stream and closes it.
func writeWords(cfg config, args []string, stdin io.Reader, out io.WriteCloser) (failed int, err error) {
	ww := wordio.NewWriter(out, cfg.width)
	err = forEachInput(args, stdin, func(s string) error {
		word, ok := convertLogged(cfg, s)
		if !ok {
			failed++
			return nil
		}
		return ww.WriteWord(word.Uint64())
	})
	if err == nil {
		err = ww.Flush()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return failed, err
	}
	log.Info().Int64("words", ww.Count()).Str("path", cfg.out).Msg("Wrote words")
	return failed, nil
}

func convertLogged(cfg config, s string) (mil1750a.Word, bool) {
	word, err := convert(cfg, s)
	if err != nil {
		log.Error().Err(err).Str("input", s).Msg("Conversion failed")
		return nil, false
	}
	log.Debug().Str("input", s).Str("word", word.String()).Msg("Converted")
	return word, true
}

func forEachInput(args []string, stdin io.Reader, fn func(string) error) error {
	if len(args) > 0 {
		for _, arg := range args {
			if err := fn(arg); err != nil {
				return err
			}
		}
		return nil
	}
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func convert(cfg config, s string) (mil1750a.Word, error) {
	if cfg.decode {
		return mil1750a.Parse(cfg.width, s)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, err
	}
	return mil1750a.Encode(cfg.width, f)
}

func decodeFile(cfg config, stdout io.Writer) error {
	f, err := os.Open(cfg.in)
	if err != nil {
		return err
	}
	defer f.Close()

	r := wordio.NewReader(f, cfg.width)
	decodeCfg := cfg
	decodeCfg.decode = true
	for {
		word, err := r.ReadWord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := printResult(stdout, decodeCfg, word.String(), word); err != nil {
			return err
		}
	}
	log.Info().Int64("bytes", r.Offset()).Str("path", cfg.in).Msg("Decoded words")
	return nil
}

func printResult(w io.Writer, cfg config, input string, word mil1750a.Word) error {
	bits := 32
	if word.Width() == mil1750a.Width48 {
		bits = 64
	}
	if cfg.json {
		m, e := word.Split()
		res := result{
			Input:    input,
			Word:     word.String(),
			Value:    word.Float64(),
			Mantissa: m,
			Exponent: e,
		}
		if cfg.exact {
			res.Exact = word.Decimal().String()
		}
		return json.NewEncoder(w).Encode(res)
	}
	out := word.String()
	if cfg.decode {
		out = strconv.FormatFloat(word.Float64(), 'g', -1, bits)
	}
	if cfg.exact {
		out += "\t" + word.Decimal().String()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
