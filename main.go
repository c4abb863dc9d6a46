package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v3"

	"github.com/meadori/dualscreen/config"
	"github.com/meadori/dualscreen/console"
	"github.com/meadori/dualscreen/display"
	"github.com/meadori/dualscreen/hittest"
	"github.com/meadori/dualscreen/logging"
	"github.com/meadori/dualscreen/server"
	"github.com/meadori/dualscreen/session"
)

var version = "dev"

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "config file (default ~/.dualscreen/config.toml)"},
		&cli.StringFlag{Name: "assets", Usage: "directory containing dualscreen-overlays/"},
		&cli.BoolFlag{Name: "no-dual-screen", Usage: "show the raw console frame only"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
	}
}

func main() {
	app := &cli.Command{
		Name:    "dualscreen",
		Usage:   "dual screen touch workspace for the keypad console",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "open the workspace window",
				ArgsUsage: "[title]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "grpc", Usage: "serve the remote workspace API on this address"},
					&cli.StringFlag{Name: "record", Usage: "write a pointer script to this file"},
					&cli.StringFlag{Name: "profile", Usage: "cpu or mem"},
				}, commonFlags()...),
				Action: runWorkspace,
			},
			{
				Name:      "compose",
				Usage:     "render the workspace headlessly to a PNG",
				ArgsUsage: "[title]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "out", Value: "workspace.png", Usage: "output file"},
					&cli.IntFlag{Name: "x", Value: -1, Usage: "pointer x in workspace pixels"},
					&cli.IntFlag{Name: "y", Value: -1, Usage: "pointer y in workspace pixels"},
					&cli.BoolFlag{Name: "contact", Usage: "pointer is in contact"},
					&cli.BoolFlag{Name: "mirrored", Usage: "swap the panes"},
					&cli.IntFlag{Name: "frames", Value: 1, Usage: "ticks to run before saving"},
				}, commonFlags()...),
				Action: composeWorkspace,
			},
			{
				Name:   "config",
				Usage:  "print the effective configuration",
				Flags:  commonFlags(),
				Action: printConfig,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "dualscreen: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config, applies the command-line overrides and installs
// the logger.
func setup(cmd *cli.Command) (config.Config, func() error, error) {
	path := cmd.String("config")
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Config{}, nil, err
		}
	}
	cfg, err := config.NewLoader(path).Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	if dir := strings.TrimSpace(cmd.String("assets")); dir != "" {
		cfg.AssetDir = dir
	}
	if cmd.Bool("no-dual-screen") {
		off := false
		cfg.DualScreen = &off
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = &level
	}

	closeLog, err := logging.Init(cfg.Log, version)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logging: %w", err)
	}
	slog.Debug("config loaded", "path", path, "asset_dir", cfg.AssetDir, "dual_screen", cfg.DualScreenEnabled())
	return cfg, closeLog, nil
}

func sessionOptions(cfg config.Config) session.Options {
	return session.Options{
		AssetDir:      cfg.AssetDir,
		DualScreen:    cfg.DualScreenEnabled(),
		HoldFrames:    cfg.HoldFrames,
		Buttons:       cfg.Buttons,
		ScreenshotDir: cfg.ScreenshotDir,
	}
}

func runWorkspace(ctx context.Context, cmd *cli.Command) error {
	cfg, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	switch cmd.String("profile") {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", cmd.String("profile"))
	}

	s := session.New(console.NewTestPattern(), sessionOptions(cfg))
	defer s.Close()

	title := cmd.Args().First()
	if title != "" {
		if err := s.LoadTitle(title); err != nil {
			return err
		}
	}

	addr := cmd.String("grpc")
	if addr == "" && cfg.Server.Enabled {
		addr = cfg.Server.Addr
	}
	if addr != "" {
		srv := server.NewGRPCServer(s)
		if err := srv.Start(addr); err != nil {
			return err
		}
		defer srv.Stop()
	}

	var recFile *os.File
	if path := cmd.String("record"); path != "" {
		if recFile, err = os.Create(path); err != nil {
			return fmt.Errorf("create recording: %w", err)
		}
		defer recFile.Close()
	}

	d := display.New(s, recFile)
	defer d.Close()
	if title == "" {
		d.OpenTitleDialog()
	}

	b := d.Bounds()
	ebiten.SetWindowSize(b.Dx(), b.Dy())
	ebiten.SetWindowTitle("dualscreen")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(d)
}

func composeWorkspace(ctx context.Context, cmd *cli.Command) error {
	cfg, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	s := session.New(console.NewTestPattern(), sessionOptions(cfg))
	defer s.Close()
	if title := cmd.Args().First(); title != "" {
		if err := s.LoadTitle(title); err != nil {
			return err
		}
	}
	s.SetMirrored(cmd.Bool("mirrored"))

	g := s.Geometry()
	var in session.Input
	if x, y := int(cmd.Int("x")), int(cmd.Int("y")); x >= 0 && y >= 0 {
		in.Pointer = hittest.Sample{
			X:       hittest.Denormalize(x, g.BaseWidth),
			Y:       hittest.Denormalize(y, g.BaseHeight),
			Contact: cmd.Bool("contact"),
		}
	}

	frames := int(cmd.Int("frames"))
	if frames < 1 {
		frames = 1
	}
	var out session.Output
	for i := 0; i < frames; i++ {
		out = s.Tick(in)
	}

	path := cmd.String("out")
	if err := imaging.Save(out.Image, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	st := s.State()
	slog.Info("workspace saved", "path", path, "width", out.Width, "height", out.Height,
		"word", fmt.Sprintf("0x%02X", st.Word), "active", st.Active)
	return nil
}

func printConfig(ctx context.Context, cmd *cli.Command) error {
	cfg, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
