package image

import (
	"image"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func grayImage(w, h int, values ...uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, values)
	return img
}

func flatGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

var _ = Describe("Threshold", func() {
	It("marks dots below 128 black", func() {
		bm := Reduce(grayImage(2, 2, 200, 100, 130, 50), Threshold{})
		Expect(bm.Pix).To(Equal([]Dot{White, Black, White, Black}))
		Expect(bm.At(1, 0)).To(Equal(Black))
		Expect(bm.At(0, 1)).To(Equal(White))
	})

	It("treats exactly 128 as white", func() {
		bm := Reduce(grayImage(2, 1, 128, 127), Threshold{})
		Expect(bm.Pix).To(Equal([]Dot{White, Black}))
	})

	It("weighs RGB channels by luminance", func() {
		img := image.NewRGBA(image.Rect(0, 0, 3, 1))
		img.Set(0, 0, color.RGBA{R: 255, A: 255}) // L = 76
		img.Set(1, 0, color.RGBA{G: 255, A: 255}) // L = 149
		img.Set(2, 0, color.RGBA{B: 255, A: 255}) // L = 29
		bm := Reduce(img, Threshold{})
		Expect(bm.Pix).To(Equal([]Dot{Black, White, Black}))
	})

	It("composites transparent pixels over white paper", func() {
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.Set(1, 0, color.RGBA{A: 255})
		bm := Reduce(img, Threshold{})
		Expect(bm.Pix).To(Equal([]Dot{White, Black}))
	})

	It("handles images through the generic color path", func() {
		img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
		img.Set(5, 5, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
		img.Set(6, 5, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
		bm := Reduce(img, Threshold{})
		Expect(bm.Width).To(Equal(2))
		Expect(bm.Pix).To(Equal([]Dot{Black, White}))
	})
})

var _ = Describe("FloydSteinberg", func() {
	DescribeTable("conserves ink on flat gray",
		func(gray uint8) {
			const w, h = 200, 200
			bm := Reduce(flatGray(w, h, gray), FloydSteinberg{})
			got := float64(bm.BlackCount()) / float64(w*h)
			want := float64(255-int(gray)) / 255
			Expect(got).To(BeNumerically("~", want, 0.02))
		},
		Entry("dark", uint8(40)),
		Entry("quarter", uint8(64)),
		Entry("mid", uint8(128)),
		Entry("light", uint8(192)),
		Entry("near white", uint8(230)),
	)

	It("leaves pure black and white untouched", func() {
		bm := Reduce(grayImage(4, 1, 0, 255, 0, 255), FloydSteinberg{})
		Expect(bm.Pix).To(Equal([]Dot{Black, White, Black, White}))
	})

	It("diffuses error to the right within a row", func() {
		// 100 -> black, error +100; 7/16 of it lifts 100 to 143.75 -> white.
		bm := Reduce(grayImage(2, 1, 100, 100), FloydSteinberg{})
		Expect(bm.Pix).To(Equal([]Dot{Black, White}))
	})

	It("differs from threshold on mid tones", func() {
		img := flatGray(16, 16, 100)
		Expect(Reduce(img, FloydSteinberg{}).Equal(Reduce(img, Threshold{}))).To(BeFalse())
	})

	It("is deterministic", func() {
		img := flatGray(64, 64, 90)
		Expect(Reduce(img, FloydSteinberg{}).Equal(Reduce(img, FloydSteinberg{}))).To(BeTrue())
	})
})

var _ = DescribeTable("ParseStrategy",
	func(name, want string) {
		s, err := ParseStrategy(name)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.String()).To(Equal(want))
	},
	Entry("default", "", "threshold"),
	Entry("threshold", "threshold", "threshold"),
	Entry("dither", "dither", "floyd-steinberg"),
	Entry("full name", "Floyd-Steinberg", "floyd-steinberg"),
)

var _ = It("rejects unknown strategies", func() {
	_, err := ParseStrategy("halftone")
	Expect(err).To(MatchError(ContainSubstring("unknown monochrome strategy")))
})
