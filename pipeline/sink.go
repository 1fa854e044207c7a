package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/quarklab/datadist/compress"
	"github.com/quarklab/datadist/internal/queue"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/stffile"
)

// SinkConfig configures the optional on-disk persistence stage.
type SinkConfig struct {
	// Enabled turns disk persistence on.
	Enabled bool

	// Dir is the root directory; it must exist and be writable. A fresh
	// numeric session directory is created under it per run.
	Dir string

	// FileName is the file name pattern; tokens %n, %D and %T expand to the
	// file index, date and time.
	FileName string

	// StfsPerFile rotates the file after this many SubTimeFrames.
	StfsPerFile uint64

	// MaxFileSize rotates the file once it exceeds this size in bytes.
	MaxFileSize uint64

	// Compression wraps files with a stream codec. KindNone keeps the
	// format bit-exact.
	Compression compress.Kind
}

// DefaultSinkConfig returns the documented sink defaults.
func DefaultSinkConfig() SinkConfig {
	return SinkConfig{
		FileName:    "%n",
		StfsPerFile: 1,
		MaxFileSize: 4 << 30,
	}
}

// normalize clamps the rotation thresholds to their minimums.
func (c *SinkConfig) normalize() {
	if c.FileName == "" {
		c.FileName = "%n"
	}
	if c.StfsPerFile < 1 {
		c.StfsPerFile = 1
	}
	if c.MaxFileSize < 1 {
		c.MaxFileSize = 1
	}
}

// FileSink persists SubTimeFrames between the builder queue and the output
// queue. Disabled, it is not started at all and the builder bypasses it.
//
// A write failure disables persistence for the rest of the run; the sink
// keeps passing SubTimeFrames through so the pipeline continues.
type FileSink struct {
	cfg SinkConfig
	in  *queue.Fifo[*stf.SubTimeFrame]
	out *queue.Fifo[*stf.SubTimeFrame]

	sessionDir string
	writer     *stffile.Writer
	fileIdx    uint64
	fileStfs   uint64

	writing bool

	wg  sync.WaitGroup
	log *slog.Logger
}

// NewFileSink validates the configuration and, when enabled, creates the
// session directory and the first file.
func NewFileSink(cfg SinkConfig, in, out *queue.Fifo[*stf.SubTimeFrame]) (*FileSink, error) {
	cfg.normalize()

	s := &FileSink{
		cfg: cfg,
		in:  in,
		out: out,
		log: slog.Default().With("component", "stf-sink"),
	}

	if !cfg.Enabled {
		return s, nil
	}

	if cfg.Dir == "" {
		return nil, fmt.Errorf("file sink enabled without a directory")
	}

	dir, err := stffile.NextSessionDir(cfg.Dir)
	if err != nil {
		return nil, err
	}
	s.sessionDir = dir

	if err := s.openNextFile(); err != nil {
		return nil, err
	}
	s.writing = true

	s.log.Info("file sink enabled",
		"dir", s.sessionDir,
		"pattern", cfg.FileName,
		"stfs_per_file", cfg.StfsPerFile,
		"max_file_size", cfg.MaxFileSize,
		"compression", cfg.Compression.String(),
	)

	return s, nil
}

// Enabled reports whether the sink stage participates in the pipeline.
func (s *FileSink) Enabled() bool {
	return s.cfg.Enabled
}

// SessionDir returns the directory files are written to, empty when disabled.
func (s *FileSink) SessionDir() string {
	return s.sessionDir
}

func (s *FileSink) openNextFile() error {
	name := stffile.FileName(s.cfg.FileName, s.fileIdx, time.Now())
	name += s.cfg.Compression.Suffix()
	s.fileIdx++
	s.fileStfs = 0

	w, err := stffile.NewWriter(filepath.Join(s.sessionDir, name), s.cfg.Compression)
	if err != nil {
		return err
	}
	s.writer = w

	return nil
}

// Start launches the sink stage. Must only be called on an enabled sink.
func (s *FileSink) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop waits for the sink stage to drain and exit. The input queue must
// already be stopped.
func (s *FileSink) Stop() {
	s.wg.Wait()

	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			s.log.Error("closing STF file", "err", err)
		}
		s.writer = nil
	}

	s.log.Info("file sink terminated")
}

func (s *FileSink) run() {
	defer s.wg.Done()

	for {
		next, ok := s.in.Pop()
		if !ok {
			return
		}

		if s.writing {
			s.maybeRotate()
			s.write(next)
		}

		s.out.Push(next)
	}
}

// maybeRotate starts a new file when the current one holds StfsPerFile
// SubTimeFrames or its size exceeds MaxFileSize.
func (s *FileSink) maybeRotate() {
	if s.fileStfs < s.cfg.StfsPerFile && s.writer.Size() <= s.cfg.MaxFileSize {
		return
	}

	if err := s.writer.Close(); err != nil {
		s.log.Error("closing STF file", "err", err)
	}
	if err := s.openNextFile(); err != nil {
		s.log.Error("file sink: cannot open next file, disabling writing", "err", err)
		s.writer = nil
		s.writing = false
	}
}

func (s *FileSink) write(next *stf.SubTimeFrame) {
	if !s.writing {
		return
	}

	if _, err := s.writer.Write(next); err != nil {
		s.log.Error("file sink: error while writing, disabling writing", "err", err)
		s.writing = false

		return
	}

	s.fileStfs++
}
