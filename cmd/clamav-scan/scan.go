package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	clamav "github.com/DevHatRo/clamav-sdk-go"
	"github.com/DevHatRo/clamav-sdk-go/cmd/clamav-scan/internal/logger"
)

// errFindings is returned when any file is infected or failed to scan.
var errFindings = errors.New("infected or failed files found")

func scanCommand(e *env) *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Scan files and print one JSON line per file",
		Long: "Scan files and print one JSON line per file.\n\n" +
			"A single path is uploaded in one request, or chunked with --stream. " +
			"Several paths are scanned together in one multi-file session.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeFn, err := e.open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			return runScan(ctx, s, args, stream, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "use a chunked streaming upload for a single file")

	return cmd
}

// report is one line of scan output.
type report struct {
	File    string  `json:"file"`
	Verdict string  `json:"verdict"`
	Status  string  `json:"status,omitempty"`
	Message string  `json:"message,omitempty"`
	Time    float64 `json:"time,omitempty"`
	Error   string  `json:"error,omitempty"`
	Code    string  `json:"code,omitempty"`
}

func newReport(path string, res *clamav.ScanResult, err error) report {
	r := report{File: path}
	if err != nil {
		r.Verdict = clamav.VerdictError.String()
		r.Error = err.Error()
		var ce *clamav.Error
		if errors.As(err, &ce) {
			r.Code = ce.Code
		}
		return r
	}

	r.Verdict = res.Verdict().String()
	r.Status = res.Status
	r.Message = res.Message
	r.Time = res.ScanTime
	return r
}

type reportWriter struct {
	enc      *json.Encoder
	findings int
	err      error
}

func (w *reportWriter) write(r report) {
	if r.Verdict != clamav.VerdictClean.String() {
		w.findings++
	}
	if err := w.enc.Encode(r); err != nil && w.err == nil {
		w.err = err
	}
}

func runScan(ctx context.Context, s clamav.Scanner, paths []string, stream bool, out io.Writer) error {
	w := &reportWriter{enc: json.NewEncoder(out)}

	if len(paths) == 1 {
		res, err := scanOne(ctx, s, paths[0], stream)
		w.write(newReport(paths[0], res, err))
	} else {
		scanMany(ctx, s, paths, w)
	}

	if w.err != nil {
		return w.err
	}
	if w.findings > 0 {
		logger.Info(ctx, "scan finished with findings", zap.Int("files", len(paths)), zap.Int("findings", w.findings))
		return errFindings
	}
	return nil
}

func scanOne(ctx context.Context, s clamav.Scanner, path string, stream bool) (*clamav.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, clamav.NewValidationError("could not read file", err)
	}
	if stream {
		return s.ScanStream(ctx, data, filepath.Base(path))
	}
	return s.ScanFile(ctx, data, filepath.Base(path))
}

func scanMany(ctx context.Context, s clamav.Scanner, paths []string, w *reportWriter) {
	files := make([]clamav.FileInput, 0, len(paths))
	opened := make([]string, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			w.write(newReport(path, nil, clamav.NewValidationError("could not open file", err)))
			continue
		}
		defer f.Close() //nolint:errcheck // read-only

		input := clamav.FileInput{Filename: filepath.Base(path), Reader: f}
		if info, err := f.Stat(); err == nil {
			input.Size = info.Size()
		}
		files = append(files, input)
		opened = append(opened, path)
	}
	if len(files) == 0 {
		return
	}

	results, err := s.ScanMultiple(ctx, files)
	if err != nil {
		for _, path := range opened {
			w.write(newReport(path, nil, err))
		}
		return
	}
	for r := range results {
		logger.Debug(ctx, "file scanned", zap.String("key", r.Key.String()), zap.String("file", opened[r.Index]))
		w.write(newReport(opened[r.Index], r.Result, r.Err))
	}
}
