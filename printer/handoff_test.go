package printer

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EncodeURIComponent", func() {
	It("leaves the unreserved set alone", func() {
		in := "AZaz09-_.!~*'()"
		Expect(EncodeURIComponent([]byte(in))).To(Equal(in))
	})

	It("encodes every other byte as %XX", func() {
		Expect(EncodeURIComponent([]byte{0x1B, 0x40, 0x00, 0xFF, ' ', '/', '%'})).
			To(Equal("%1B%40%00%FF%20%2F%25"))
	})

	It("encodes multi-byte text one byte at a time", func() {
		Expect(EncodeURIComponent([]byte("é"))).To(Equal("%C3%A9"))
	})
})

var _ = Describe("URIHandoff", func() {
	var (
		opened []string
		h      *URIHandoff
	)

	BeforeEach(func() {
		opened = nil
		h = &URIHandoff{
			Scheme: "rawbt",
			Opener: OpenerFunc(func(_ context.Context, uri string) error {
				opened = append(opened, uri)
				return nil
			}),
		}
	})

	It("navigates to scheme:<encoded stream>", func() {
		ack, err := h.Deliver(context.Background(), Stream{0x1B, 0x40, 'A'})
		Expect(err).NotTo(HaveOccurred())
		Expect(opened).To(Equal([]string{"rawbt:%1B%40A"}))
		Expect(ack.Transport).To(Equal("uri"))
		Expect(ack.Bytes).To(Equal(3))
		Expect(ack.URI).To(Equal("rawbt:%1B%40A"))
		Expect(ack.IssuedAt).NotTo(BeZero())
	})

	It("falls back to the default scheme", func() {
		h.Scheme = ""
		Expect(h.URI(Stream{'x'})).To(Equal(DefaultScheme + ":x"))
	})

	It("refuses a URI over the limit without opening it", func() {
		h.MaxURILength = 10
		_, err := h.Deliver(context.Background(), Stream(strings.Repeat("\x00", 10)))

		var terr *TransportError
		Expect(errors.As(err, &terr)).To(BeTrue())
		Expect(terr.Op).To(Equal("encode"))
		Expect(err).To(MatchError(ErrURITooLong))
		Expect(opened).To(BeEmpty())
	})

	It("wraps opener failures", func() {
		boom := errors.New("no handler for scheme")
		h.Opener = OpenerFunc(func(context.Context, string) error { return boom })

		_, err := h.Deliver(context.Background(), Stream{1})
		var terr *TransportError
		Expect(errors.As(err, &terr)).To(BeTrue())
		Expect(terr.Transport).To(Equal("uri"))
		Expect(terr.Op).To(Equal("open"))
		Expect(err).To(MatchError(boom))
	})

	It("does not navigate once the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := h.Deliver(ctx, Stream{1})
		Expect(err).To(MatchError(context.Canceled))
		Expect(opened).To(BeEmpty())
	})
})
