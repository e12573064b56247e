package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile   = flag.String("log-file", "", "Write logs to a rotated file")
	flagRoot      = flag.String("root", "", "Asset root directory")
	flagStrict    = flag.Bool("strict", false, "Treat unrecognized keywords as errors")
	flagEndian    = flag.String("endian", "", "Byte order of MSH and font files (big|little)")
	flagEncoding  = flag.String("encoding", "", "Text encoding of OBJ/MTL/MDL sources")
	flagSRGB      = flag.Bool("srgb", false, "Force sRGB font atlases and material maps")
	flagRightHand = flag.Bool("keep-handedness", false, "Do not convert OBJ data to left-handed")
	flagGPU       = flag.Bool("gpu", false, "Upload textures through OpenGL")
	flagWatch     = flag.Bool("watch", false, "Evict cached assets when files change")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagRoot != "" {
		cfg.Assets.Root = *flagRoot
	}
	if *flagStrict {
		cfg.Import.Strict = true
	}
	if *flagEndian != "" {
		cfg.Import.ByteOrder = *flagEndian
		cfg.Fonts.ByteOrder = *flagEndian
	}
	if *flagEncoding != "" {
		cfg.Import.Encoding = *flagEncoding
	}
	if *flagSRGB {
		cfg.Fonts.ForceSRGB = true
		cfg.Textures.ForceSRGB = true
	}
	if *flagRightHand {
		cfg.Import.Descriptor.InvertHandedness = false
		cfg.Import.Descriptor.ClockwiseOrder = false
	}
	if *flagGPU {
		cfg.GPU.Enabled = true
	}
	if *flagWatch {
		cfg.Assets.Watch = true
	}
}
