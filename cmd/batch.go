package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/logging"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
)

const stdinName = "-"

type parseFunc func(data []byte) (jsonvalue.Value, error)

type result struct {
	output []byte
	err    error
}

// runBatch parses every input with at most cfg.Concurrency parsers running at
// once and prints the results in input order.
func runBatch(cmd *cobra.Command, cfg *Config, inputs []string, parse parseFunc) error {
	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}

	results := make([]result, len(inputs))
	g := new(errgroup.Group)
	g.SetLimit(cfg.Concurrency)
	for i, name := range inputs {
		data, err := readInput(cmd, name, cfg.MaxBytes)
		if err != nil {
			results[i].err = err
			continue
		}
		i := i
		g.Go(func() error {
			results[i] = parseOne(data, cfg.Pretty, parse)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, r := range results {
		if r.err != nil {
			failed++
			logging.Log().WithError(r.err).WithField("input", inputs[i]).Debug("Input rejected")
			cmd.PrintErrf("%s: %s\n", inputs[i], r.err)
			continue
		}
		cmd.Println(string(r.output))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

func parseOne(data []byte, pretty bool, parse parseFunc) result {
	v, err := parse(data)
	if err != nil {
		return result{err: err}
	}
	if !pretty {
		return result{output: v.Bytes()}
	}
	out, err := jsonvalue.Indent(v)
	return result{output: out, err: err}
}

// readInput reads a file, or stdin for "-", refusing inputs larger than maxBytes.
func readInput(cmd *cobra.Command, name string, maxBytes int64) ([]byte, error) {
	var r io.Reader
	if name == stdinName {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if n > maxBytes {
		return nil, parseerr.New(parseerr.ErrInvalidArgument, "input exceeds %d bytes", maxBytes)
	}
	return buf.Bytes(), nil
}
