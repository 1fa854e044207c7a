// Command datadist runs the data distribution pipeline in one process and
// provides tooling around SubTimeFrame files.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/urfave/cli/v2"

	"github.com/quarklab/datadist/internal/config"
	"github.com/quarklab/datadist/pipeline"
	"github.com/quarklab/datadist/stffile"
	"github.com/quarklab/datadist/transport"
)

func main() {
	app := &cli.App{
		Name:  "datadist",
		Usage: "SubTimeFrame building, persistence and distribution",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "configuration file (YAML)"},
		},
		Commands: []*cli.Command{
			chainCommand(),
			dumpCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file when given, then applies flag
// overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()

	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("input-channel-name") {
		cfg.InputChannelName = c.String("input-channel-name")
	}
	if c.IsSet("output-channel-name") {
		cfg.OutputChannelName = c.String("output-channel-name")
	}
	if c.IsSet("cru-count") {
		cfg.CruCount = c.Int("cru-count")
	}
	if c.IsSet("epn-node-count") {
		cfg.EpnNodeCount = c.Int("epn-node-count")
	}
	if c.IsSet("flp-node-count") {
		cfg.FlpNodeCount = c.Int("flp-node-count")
	}
	if c.IsSet("gui") {
		cfg.Gui = c.Bool("gui")
	}
	if c.IsSet("serialization") {
		cfg.Serialization = c.String("serialization")
	}
	if c.IsSet("stf-sink-enable") {
		cfg.Sink.Enable = c.Bool("stf-sink-enable")
	}
	if c.IsSet("stf-sink-dir") {
		cfg.Sink.Dir = c.String("stf-sink-dir")
	}
	if c.IsSet("stf-sink-file-name") {
		cfg.Sink.FileName = c.String("stf-sink-file-name")
	}
	if c.IsSet("stf-sink-max-stfs-per-file") {
		cfg.Sink.MaxStfsPerFile = c.Uint64("stf-sink-max-stfs-per-file")
	}
	if c.IsSet("stf-sink-max-file-size") {
		cfg.Sink.MaxFileSize = c.Uint64("stf-sink-max-file-size")
	}
	if c.IsSet("stf-sink-compression") {
		cfg.Sink.Compression = c.String("stf-sink-compression")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "input-channel-name", Usage: "input channel name"},
		&cli.StringFlag{Name: "output-channel-name", Usage: "output channel name"},
		&cli.IntFlag{Name: "cru-count", Usage: "number of readout link channels [1, 32]"},
		&cli.IntFlag{Name: "epn-node-count", Usage: "number of destination nodes"},
		&cli.IntFlag{Name: "flp-node-count", Usage: "number of builder nodes"},
		&cli.BoolFlag{Name: "gui", Usage: "enable the monitoring GUI"},
		&cli.StringFlag{Name: "serialization", Usage: "wire layout: interleaved or split"},
		&cli.BoolFlag{Name: "stf-sink-enable", Usage: "enable writing of (Sub)TimeFrames to disk"},
		&cli.StringFlag{Name: "stf-sink-dir", Usage: "destination directory for (Sub)TimeFrames"},
		&cli.StringFlag{Name: "stf-sink-file-name", Usage: "file name pattern: %n - file index, %D - date, %T - time"},
		&cli.Uint64Flag{Name: "stf-sink-max-stfs-per-file", Usage: "number of (Sub)TimeFrames per file"},
		&cli.Uint64Flag{Name: "stf-sink-max-file-size", Usage: "target size for (Sub)TimeFrame files"},
		&cli.StringFlag{Name: "stf-sink-compression", Usage: "file compression: none, zstd, lz4 or s2"},
	}
}

func chainCommand() *cli.Command {
	return &cli.Command{
		Name:  "chain",
		Usage: "run readout source, STF builder, sender and TimeFrame builder in-process",
		Flags: append(deviceFlags(),
			&cli.Uint64Flag{Name: "stf-count", Value: 100, Usage: "time frames to generate per link"},
			&cli.IntFlag{Name: "frames-per-stf", Value: 8, Usage: "heartbeat frames per link per time frame"},
			&cli.IntFlag{Name: "frame-size", Value: 8192, Usage: "heartbeat frame payload size"},
		),
		Action: runChain,
	}
}

func runChain(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// channel ids: 0 readout links (per link), 100 builder->sender,
	// 200+i sender->EPN i
	const (
		builderOutChanID = 100
		epnChanBase      = 200
	)

	links := make([]transport.Channel, cfg.CruCount)
	for i := range links {
		links[i] = transport.NewPipe(8)
	}

	stfChan := transport.NewPipe(8)

	epnChans := make([]transport.Channel, cfg.EpnNodeCount)
	for i := range epnChans {
		epnChans[i] = transport.NewPipe(8)
	}

	registry := transport.NewRegistry()
	registry.Add(builderOutChanID, stfChan)
	for i, ch := range epnChans {
		registry.Add(epnChanBase+i, ch)
	}

	builder, err := pipeline.NewStfBuilder(pipeline.BuilderConfig{
		CruCount:        cfg.CruCount,
		Layout:          cfg.Layout(),
		OutputChannelID: builderOutChanID,
		Sink: pipeline.SinkConfig{
			Enabled:     cfg.Sink.Enable,
			Dir:         cfg.Sink.Dir,
			FileName:    cfg.Sink.FileName,
			StfsPerFile: cfg.Sink.MaxStfsPerFile,
			MaxFileSize: cfg.Sink.MaxFileSize,
			Compression: cfg.SinkCompression(),
		},
	}, links, stfChan)
	if err != nil {
		return err
	}

	sender, err := pipeline.NewStfSender(pipeline.SenderConfig{
		EpnCount:       cfg.EpnNodeCount,
		SendSlots:      cfg.SendSlots,
		Layout:         cfg.Layout(),
		InputChannelID: builderOutChanID,
	}, stfChan, epnChans)
	if err != nil {
		return err
	}

	// one TimeFrame builder per destination; with a single in-process STF
	// builder every TimeFrame completes from one contribution
	tfBuilders := make([]*pipeline.TfBuilder, cfg.EpnNodeCount)
	for i := range tfBuilders {
		tfBuilders[i], err = pipeline.NewTfBuilder(pipeline.TfBuilderConfig{
			FlpCount:       1,
			Layout:         cfg.Layout(),
			InputChannelID: epnChanBase + i,
		}, epnChans[i:i+1])
		if err != nil {
			return err
		}
	}

	source := pipeline.NewReadoutSource(pipeline.ReadoutSourceConfig{
		StfCount:     c.Uint64("stf-count"),
		FramesPerStf: c.Int("frames-per-stf"),
		FrameSize:    c.Int("frame-size"),
	}, links)

	for _, tb := range tfBuilders {
		tb.Start()
	}
	sender.Start()
	builder.Start()
	source.Start()

	// consume completed TimeFrames until the builders shut down
	var consumerWg sync.WaitGroup
	var tfCount, tfBytes atomic.Uint64
	for _, tb := range tfBuilders {
		consumerWg.Add(1)
		go func(tb *pipeline.TfBuilder) {
			defer consumerWg.Done()
			for {
				tf, ok := tb.Queue().Pop()
				if !ok {
					return
				}
				tfCount.Add(1)
				tfBytes.Add(tf.DataSize())
				tf.Invalidate()
			}
		}(tb)
	}

	source.Wait()

	// the source closed the link channels; drain the pipeline in order
	builder.Stop()
	sender.Stop()
	for _, tb := range tfBuilders {
		tb.Stop()
	}
	consumerWg.Wait()

	slog.Info("chain finished", "timeframes", tfCount.Load(), "bytes", tfBytes.Load())

	return nil
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "list the SubTimeFrames of a file",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file argument")
			}

			r, err := stffile.OpenReader(c.Args().First())
			if err != nil {
				return err
			}
			defer r.Close()

			for {
				s, err := r.Read(0)
				if err != nil {
					if errors.Is(err, io.EOF) {
						return nil
					}

					return err
				}

				fmt.Printf("STF %d: %d equipments, %d bytes\n",
					s.ID(), s.EquipmentCount(), s.DataSize())
				for _, eq := range s.EquipmentIdentifiers() {
					e := s.Equipment(eq)
					fmt.Printf("  %s: %d frames, %d bytes\n", eq, e.FrameCount(), e.DataSize())
				}
				s.Invalidate()
			}
		},
	}
}
