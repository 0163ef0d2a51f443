package asset

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decode", func() {
	It("decodes PNG", func() {
		img, format, err := Decode(pngBytes(4, 3))
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal("png"))
		Expect(img.Bounds().Dx()).To(Equal(4))
	})

	It("returns the error for unknown data", func() {
		_, _, err := Decode([]byte("definitely not an image"))
		Expect(err).To(MatchError(ContainSubstring("decoding image")))
	})
})

var _ = Describe("format sniffing", func() {
	It("recognises PDF headers", func() {
		Expect(isPDF([]byte("%PDF-1.7\n"))).To(BeTrue())
		Expect(isPDF([]byte("PDF"))).To(BeFalse())
	})

	It("recognises HEIC brands", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypheic\x00\x00"))).To(BeTrue())
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypmp42\x00\x00"))).To(BeFalse())
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
	})
})
