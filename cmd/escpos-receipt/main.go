package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/AlexStarov/escpos-receipt/asset"
	imgInternal "github.com/AlexStarov/escpos-receipt/image"
	"github.com/AlexStarov/escpos-receipt/layout"
	logInternal "github.com/AlexStarov/escpos-receipt/log"
	"github.com/AlexStarov/escpos-receipt/order"
	"github.com/AlexStarov/escpos-receipt/printer"
	"github.com/AlexStarov/escpos-receipt/receipt"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

type config struct {
	width, framing, strategy string
	stripRows                int
	kick                     bool
	logo, qr                 string
	currency                 string
	shopAddress, shopPhone   string

	assetDir, assetDB, assetURL string
	assetTimeout                time.Duration
	importAssets                []string

	transport   string
	scheme      string
	addr, queue string
	usbVID      string
	usbPID      string
	serialPort  string
	baudRate    int
	spoolerName string

	orderPath, outPath, previewPath string
	listen                          string

	fontPath, boldFontPath string

	logDir, logLevel string
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("escpos-receipt")
	var cfg config
	fs.StringVar(&cfg.width, 0, "width", "58", "Paper width: 58 or 80 (mm)")
	fs.StringVar(&cfg.framing, 0, "framing", "strip", "Raster framing: 'strip' or 'block'")
	fs.StringVar(&cfg.strategy, 0, "strategy", "dither", "Monochrome strategy: 'threshold' or 'dither'")
	fs.IntVar(&cfg.stripRows, 0, "strip-rows", 1, "Rows per raster command in strip mode")
	fs.BoolVar(&cfg.kick, 0, "kick-drawer", "Open the cash drawer after printing")
	fs.StringVar(&cfg.logo, 0, "logo", "", "Logo asset reference (optional)")
	fs.StringVar(&cfg.qr, 0, "qr", "", "QR code asset reference (optional)")
	fs.StringVar(&cfg.currency, 0, "currency", "$", "Currency glyph printed before amounts")
	fs.StringVar(&cfg.shopAddress, 0, "shop-address", "", "Shop address used when an order has none")
	fs.StringVar(&cfg.shopPhone, 0, "shop-phone", "", "Shop phone used when an order has none")
	fs.StringVar(&cfg.assetDir, 0, "asset-dir", "./assets", "Directory holding logo and QR files")
	fs.StringVar(&cfg.assetDB, 0, "asset-db", "", "Bolt database holding assets (overrides --asset-dir)")
	fs.StringVar(&cfg.assetURL, 0, "asset-url", "", "Base URL assets are fetched from (overrides --asset-dir)")
	fs.DurationVar(&cfg.assetTimeout, 0, "asset-timeout", asset.DefaultTimeout, "Maximum wait for one asset")
	fs.StringListVar(&cfg.importAssets, 0, "import-asset", "Store a file as an asset, name=path (repeatable)")
	fs.StringVar(&cfg.transport, 0, "transport", "uri", "Delivery: 'uri', 'tcp', 'lpd', 'usb', 'serial' or 'spooler'")
	fs.StringVar(&cfg.scheme, 0, "scheme", printer.DefaultScheme, "URI scheme of the printing bridge app")
	fs.StringVar(&cfg.addr, 0, "printer-addr", "", "host:port of a network printer (tcp, lpd)")
	fs.StringVar(&cfg.queue, 0, "lpd-queue", "lp", "LPD queue name")
	fs.StringVar(&cfg.usbVID, 0, "usb-vid", "", "USB vendor id, hex")
	fs.StringVar(&cfg.usbPID, 0, "usb-pid", "", "USB product id, hex")
	fs.StringVar(&cfg.serialPort, 0, "serial-port", "", "Serial port name (COM3, /dev/ttyUSB0)")
	fs.IntVar(&cfg.baudRate, 0, "baud", printer.DefaultBaudRate, "Serial baud rate")
	fs.StringVar(&cfg.spoolerName, 0, "spooler-printer", "", "Installed Windows printer name")
	fs.StringVar(&cfg.orderPath, 0, "order", "", "Order JSON file to print once ('-' for stdin)")
	fs.StringVar(&cfg.outPath, 0, "out", "", "Write the command stream here instead of delivering ('-' for stdout)")
	fs.StringVar(&cfg.previewPath, 0, "preview", "", "Write a PNG preview of the printed raster here")
	fs.StringVar(&cfg.listen, 0, "listen", "", "Serve the HTTP API on this address, e.g. :8080")
	fs.StringVar(&cfg.fontPath, 0, "font", "", "TrueType/OpenType font file for receipt text (optional)")
	fs.StringVar(&cfg.boldFontPath, 0, "font-bold", "", "Font file for headings, defaults to --font")
	fs.StringVar(&cfg.logDir, 0, "log-dir", "", "Directory for rotating log files (optional)")
	fs.StringVar(&cfg.logLevel, 0, "log-level", "info", "Log level: debug, info, warn, error")
	_ = fs.BoolLong("version", "Show version information")

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("ESCPOS_RECEIPT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := newLogger(cfg, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("escpos-receipt failed", "error", err)
		var rerr *receipt.Error
		if errors.As(err, &rerr) && rerr.Remedy() != "" {
			logger.Info("Remedy", "hint", rerr.Remedy())
		}
		closer.Close()
		os.Exit(1)
	}
}

// newLogger logs to stdout, or to stderr when stdout carries the command
// stream.
func newLogger(cfg config, stdout, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	out := stdout
	if cfg.outPath == "-" {
		out = stderr
	}
	return logInternal.New(logInternal.Options{Dir: cfg.logDir, Level: level, Stdout: out})
}

// engineOptions loads the configured fonts.
func engineOptions(cfg config) ([]layout.Option, error) {
	if cfg.fontPath == "" {
		if cfg.boldFontPath != "" {
			return nil, errors.New("--font-bold needs --font")
		}
		return nil, nil
	}
	regular, err := os.ReadFile(cfg.fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	var bold []byte
	if cfg.boldFontPath != "" {
		if bold, err = os.ReadFile(cfg.boldFontPath); err != nil {
			return nil, fmt.Errorf("reading bold font: %w", err)
		}
	}
	return []layout.Option{layout.WithFont(regular, bold)}, nil
}

func run(ctx context.Context, cfg config, logger *slog.Logger, stdout io.Writer) error {
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	source, release, err := openAssets(cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	fonts, err := engineOptions(cfg)
	if err != nil {
		return err
	}
	engine, err := layout.NewEngine(fonts...)
	if err != nil {
		return fmt.Errorf("initializing layout engine: %w", err)
	}
	loader := asset.NewLoader(source, cfg.assetTimeout, logger)

	deliverer, err := newDeliverer(cfg, logger)
	if err != nil {
		return err
	}
	pipeline := receipt.NewPipeline(engine, loader, deliverer, logger)

	switch {
	case cfg.orderPath != "":
		return printOnce(ctx, cfg, pipeline, opts, logger, stdout)
	case cfg.listen != "":
		server := receipt.NewServer(pipeline, opts, logger)
		return server.Start(ctx, cfg.listen)
	case len(cfg.importAssets) > 0:
		return nil
	default:
		return errors.New("nothing to do: pass --order, --listen or --import-asset")
	}
}

func pipelineOptions(cfg config) (receipt.Options, error) {
	width, err := layout.ParseWidth(cfg.width)
	if err != nil {
		return receipt.Options{}, err
	}
	framing, err := printer.ParseFraming(cfg.framing)
	if err != nil {
		return receipt.Options{}, err
	}
	strategy, err := imgInternal.ParseStrategy(cfg.strategy)
	if err != nil {
		return receipt.Options{}, err
	}
	return receipt.Options{
		Width:     width,
		Framing:   framing,
		Strategy:  strategy,
		LogoRef:   cfg.logo,
		QRRef:     cfg.qr,
		Details:   order.StaticDetails{Address: cfg.shopAddress, Phone: cfg.shopPhone},
		Currency:  cfg.currency,
		StripRows: cfg.stripRows,
		Kick:      cfg.kick,
	}, nil
}

// openAssets picks the asset source and runs any imports into it. The
// asset directory is only opened, and created, when a run can read or
// import from it.
func openAssets(cfg config, logger *slog.Logger) (asset.Source, func(), error) {
	release := func() {}

	var (
		source asset.Source
		store  asset.Store
	)
	switch {
	case cfg.assetDB != "":
		db, err := asset.NewBoltStorage(cfg.assetDB)
		if err != nil {
			return nil, nil, fmt.Errorf("opening asset database: %w", err)
		}
		release = func() { db.Close() }
		source, store = db, db
	case cfg.assetURL != "":
		source = &asset.HTTPSource{BaseURL: cfg.assetURL}
	case cfg.logo != "" || cfg.qr != "" || cfg.listen != "" || len(cfg.importAssets) > 0:
		local, err := asset.NewLocalStorage(cfg.assetDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening asset directory: %w", err)
		}
		source, store = local, local
	}

	if len(cfg.importAssets) > 0 && store == nil {
		release()
		return nil, nil, errors.New("--import-asset needs --asset-db or --asset-dir")
	}
	for _, spec := range cfg.importAssets {
		name, path, ok := strings.Cut(spec, "=")
		if !ok || name == "" || path == "" {
			release()
			return nil, nil, fmt.Errorf("--import-asset %q: want name=path", spec)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("reading asset %s: %w", path, err)
		}
		if _, _, err := asset.Decode(data); err != nil {
			release()
			return nil, nil, fmt.Errorf("asset %s is not a supported image: %w", path, err)
		}
		if err := store.Save(name, data); err != nil {
			release()
			return nil, nil, fmt.Errorf("saving asset %s: %w", name, err)
		}
		logger.Info("Imported asset", "name", name, "bytes", len(data))
	}
	return source, release, nil
}

func newDeliverer(cfg config, logger *slog.Logger) (printer.Deliverer, error) {
	switch cfg.transport {
	case "uri":
		return printer.NewURIHandoff(cfg.scheme, logger), nil
	case "tcp", "lpd":
		if cfg.addr == "" {
			return nil, fmt.Errorf("--printer-addr is required for the %s transport", cfg.transport)
		}
		dial := printer.DialTCP(cfg.addr)
		if cfg.transport == "lpd" {
			dial = printer.DialLPD(cfg.addr, cfg.queue)
		}
		return printer.NewDirectDeliverer(cfg.transport, dial, logger), nil
	case "usb":
		vid, err := parseUSBID(cfg.usbVID)
		if err != nil {
			return nil, fmt.Errorf("--usb-vid: %w", err)
		}
		pid, err := parseUSBID(cfg.usbPID)
		if err != nil {
			return nil, fmt.Errorf("--usb-pid: %w", err)
		}
		return printer.NewDirectDeliverer("usb", printer.DialUSB(vid, pid), logger), nil
	case "serial":
		if cfg.serialPort == "" {
			return nil, errors.New("--serial-port is required for the serial transport")
		}
		return printer.NewDirectDeliverer("serial", printer.DialSerial(cfg.serialPort, cfg.baudRate), logger), nil
	case "spooler":
		if cfg.spoolerName == "" {
			return nil, errors.New("--spooler-printer is required for the spooler transport")
		}
		return printer.NewDirectDeliverer("spooler", printer.DialSpooler(cfg.spoolerName), logger), nil
	default:
		return nil, fmt.Errorf("invalid transport %q", cfg.transport)
	}
}

func parseUSBID(s string) (uint16, error) {
	if s == "" {
		return 0, errors.New("required for the usb transport")
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(id), nil
}

func printOnce(ctx context.Context, cfg config, pipeline *receipt.Pipeline, opts receipt.Options, logger *slog.Logger, stdout io.Writer) error {
	data, err := readInput(cfg.orderPath)
	if err != nil {
		return fmt.Errorf("reading order: %w", err)
	}
	doc, err := order.Parse(data)
	if err != nil {
		return err
	}

	if cfg.outPath == "" && cfg.previewPath == "" {
		ack, err := pipeline.Print(ctx, doc, opts)
		if err != nil {
			return err
		}
		logger.Info("Receipt sent", "job", ack.Job, "transport", ack.Transport, "bytes", ack.Bytes)
		return nil
	}

	stream, err := pipeline.Build(ctx, doc, opts)
	if err != nil {
		return err
	}
	if cfg.outPath != "" {
		if err := writeOutput(cfg.outPath, stream, stdout); err != nil {
			return fmt.Errorf("writing stream: %w", err)
		}
		logger.Info("Stream written", "path", cfg.outPath, "bytes", len(stream))
	}
	if cfg.previewPath != "" {
		if err := writePreview(cfg.previewPath, stream); err != nil {
			return fmt.Errorf("writing preview: %w", err)
		}
		logger.Info("Preview written", "path", cfg.previewPath)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writePreview(path string, stream printer.Stream) error {
	frame, err := printer.Decode(stream)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, imgInternal.Unpack(frame).Gray()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
