// meshtool is a CLI utility for inspecting and converting meshforge assets.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/internal/assets"
	"github.com/Faultbox/meshforge/internal/config"
	"github.com/Faultbox/meshforge/internal/engine/gpu"
	"github.com/Faultbox/meshforge/internal/logger"
	"github.com/Faultbox/meshforge/pkg/texture"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := initLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		err = cmdInfo(cfg, rest)
	case "convert":
		err = cmdConvert(cfg, rest)
	case "tree":
		err = cmdTree(cfg, rest)
	case "font":
		err = cmdFont(cfg, rest)
	case "gpucheck":
		err = cmdGPUCheck(cfg, rest)
	case "watch":
		err = cmdWatch(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - model, material and font asset utility

Usage:
  meshtool [flags] <command> [arguments]

Commands:
  info <file>                  Parse a model, mesh, material library, font or image
  convert <in> <out.mdl>       Convert an OBJ (or MDL/MSH) model to MDL + MSH
  tree <file>                  Print the part hierarchy with world origins
  font <file> [atlas.png]      Read a font, optionally dumping its atlas
  gpucheck <file>              Upload the file's textures through OpenGL
  watch <file>                 Reload and print a model or font whenever it changes

Flags:
  -config <path>     Config file (.yaml or .toml)
  -root <dir>        Asset root for relative paths
  -endian big|little Byte order of MSH and sprite font files
  -strict            Fail on unrecognized keywords
  -srgb              Force sRGB textures
  -gpu               Upload textures through OpenGL
  -watch             Evict cached assets when files change
  -debug             Debug logging

Examples:
  meshtool info models/car.obj
  meshtool convert models/car.obj build/car.mdl
  meshtool -endian little font fonts/ui.spritefont atlas.png`)
}

func initLogging(cfg *config.Config) error {
	opts := logger.Options{Level: cfg.Logging.Level, Console: true}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	return logger.Init(opts)
}

// session is an asset manager plus the device its textures live on.
type session struct {
	*assets.Manager
	gpu     *gpu.Context
	creator texture.Creator
}

// newSession creates an asset manager. Textures go through OpenGL when
// gpu.enabled is set and stay on the CPU otherwise; assets.watch starts the
// file watcher.
func newSession(cfg *config.Config) (*session, error) {
	s := &session{creator: texture.NewImageCreator()}
	if cfg.GPU.Enabled {
		ctx, err := gpu.NewContext(gpu.Config{
			GLMajor: cfg.GPU.GLMajor,
			GLMinor: cfg.GPU.GLMinor,
			Debug:   cfg.GPU.DebugGL,
			Width:   cfg.GPU.Width,
			Height:  cfg.GPU.Height,
		}, logger.Named("gpu"))
		if err != nil {
			return nil, err
		}
		s.gpu = ctx
		s.creator = ctx.Creator()
	}

	m, err := assets.NewManager(cfg, s.creator, logger.Named("assets"))
	if err != nil {
		s.closeGPU()
		return nil, err
	}
	s.Manager = m

	if cfg.Assets.Watch {
		if err := m.Watch(context.Background()); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the caches before the GL context goes away.
func (s *session) Close() {
	s.Manager.Close()
	s.closeGPU()
}

func (s *session) closeGPU() {
	if s.gpu != nil {
		s.gpu.Close()
		s.gpu = nil
	}
}
