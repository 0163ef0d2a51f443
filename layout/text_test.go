package layout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("wrap", func() {
	var face font.Face

	BeforeEach(func() {
		f, err := opentype.Parse(goregular.TTF)
		Expect(err).NotTo(HaveOccurred())
		face, err = opentype.NewFace(f, &opentype.FaceOptions{Size: bodySize, DPI: 72, Hinting: font.HintingFull})
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps text that fits on one line", func() {
		Expect(wrap(face, "Iced latte", 1000)).To(Equal([]string{"Iced latte"}))
	})

	It("breaks at the last word boundary that fits", func() {
		limit := measure(face, "aaa bbb")
		Expect(wrap(face, "aaa bbb ccc", limit)).To(Equal([]string{"aaa bbb", "ccc"}))
	})

	It("never breaks inside a word", func() {
		limit := measure(face, "ab")
		Expect(wrap(face, "abcdefgh xy abcdefgh", limit)).To(Equal([]string{"abcdefgh", "xy", "abcdefgh"}))
	})

	It("keeps every line within the limit unless it is a single word", func() {
		limit := 150
		text := "a fairly long item name with several words that must wrap across lines"
		for _, line := range wrap(face, text, limit) {
			Expect(measure(face, line)).To(BeNumerically("<=", limit), line)
		}
	})

	It("honours explicit newlines and drops blank text", func() {
		Expect(wrap(face, "one\n\ntwo", 1000)).To(Equal([]string{"one", "two"}))
		Expect(wrap(face, "   ", 1000)).To(BeEmpty())
	})
})
