package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/AlexStarov/escpos-receipt/layout"
	logInternal "github.com/AlexStarov/escpos-receipt/log"
	"github.com/AlexStarov/escpos-receipt/printer"
)

const orderJSON = `{
	"shopName": "Corner Coffee",
	"orderId": "A-1001",
	"lines": [{"primaryName": "Espresso", "unitPrice": 1000, "quantity": 3}]
}`

// testConfig mirrors the flag defaults with paths under dir.
func testConfig(dir string) config {
	return config{
		width:        "58",
		framing:      "strip",
		strategy:     "threshold",
		stripRows:    1,
		currency:     "$",
		assetDir:     filepath.Join(dir, "assets"),
		assetTimeout: time.Second,
		transport:    "uri",
		scheme:       printer.DefaultScheme,
		queue:        "lp",
		baudRate:     printer.DefaultBaudRate,
		logLevel:     "info",
	}
}

var _ = Describe("escpos-receipt", func() {
	var (
		dir string
		cfg config
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cfg = testConfig(dir)
	})

	Describe("printing to stdout", func() {
		var stdout, stderr bytes.Buffer

		BeforeEach(func() {
			stdout.Reset()
			stderr.Reset()

			cfg.orderPath = filepath.Join(dir, "order.json")
			Expect(os.WriteFile(cfg.orderPath, []byte(orderJSON), 0o644)).To(Succeed())
			cfg.outPath = "-"
			cfg.logo = "missing.png"
		})

		It("keeps stdout to the command stream and logs to stderr", func() {
			logger, closer, err := newLogger(cfg, &stdout, &stderr)
			Expect(err).NotTo(HaveOccurred())
			defer closer.Close()

			Expect(run(context.Background(), cfg, logger, &stdout)).To(Succeed())

			out := stdout.Bytes()
			Expect(out[:2]).To(Equal([]byte{0x1B, 0x40}))
			frame, err := printer.Decode(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(frame.Stride).To(Equal(48))

			Expect(stderr.String()).To(ContainSubstring("asset unavailable"))
			Expect(stderr.String()).To(ContainSubstring("Stream written"))
		})

		It("logs to stdout when the stream goes to a file", func() {
			cfg.outPath = filepath.Join(dir, "receipt.bin")
			logger, closer, err := newLogger(cfg, &stdout, &stderr)
			Expect(err).NotTo(HaveOccurred())
			defer closer.Close()

			Expect(run(context.Background(), cfg, logger, &stdout)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Stream written"))
			Expect(stderr.Len()).To(BeZero())

			data, err := os.ReadFile(cfg.outPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = printer.Decode(data)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("engineOptions", func() {
		It("uses the built-in fonts by default", func() {
			opts, err := engineOptions(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(opts).To(BeEmpty())
		})

		It("loads a font file", func() {
			cfg.fontPath = filepath.Join(dir, "regular.ttf")
			Expect(os.WriteFile(cfg.fontPath, goregular.TTF, 0o644)).To(Succeed())

			opts, err := engineOptions(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(opts).To(HaveLen(1))
			_, err = layout.NewEngine(opts...)
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails on a missing font file", func() {
			cfg.fontPath = filepath.Join(dir, "nope.ttf")
			_, err := engineOptions(cfg)
			Expect(err).To(MatchError(ContainSubstring("reading font")))
		})

		It("needs a regular font for the bold one", func() {
			cfg.boldFontPath = filepath.Join(dir, "bold.ttf")
			_, err := engineOptions(cfg)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("openAssets", func() {
		It("leaves the asset directory alone when nothing reads it", func() {
			source, release, err := openAssets(cfg, logInternal.Discard())
			Expect(err).NotTo(HaveOccurred())
			defer release()
			Expect(source).To(BeNil())

			_, err = os.Stat(cfg.assetDir)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("opens the asset directory for a logo", func() {
			cfg.logo = "logo.png"
			source, release, err := openAssets(cfg, logInternal.Discard())
			Expect(err).NotTo(HaveOccurred())
			defer release()
			Expect(source).NotTo(BeNil())
			Expect(cfg.assetDir).To(BeADirectory())
		})

		It("does not create the directory for an HTTP source", func() {
			cfg.logo = "logo.png"
			cfg.assetURL = "http://assets.invalid/"
			_, release, err := openAssets(cfg, logInternal.Discard())
			Expect(err).NotTo(HaveOccurred())
			defer release()

			_, err = os.Stat(cfg.assetDir)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})
})
