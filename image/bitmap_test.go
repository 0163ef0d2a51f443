package image

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Bitmap", func() {
	It("starts white", func() {
		bm := NewBitmap(3, 2)
		Expect(bm.BlackCount()).To(BeZero())
	})

	It("addresses dots by column and row", func() {
		bm := NewBitmap(3, 2)
		bm.Set(2, 1, Black)
		Expect(bm.At(2, 1)).To(Equal(Black))
		Expect(bm.At(1, 1)).To(Equal(White))
		Expect(bm.Pix[1*3+2]).To(Equal(Black))
	})

	It("renders black dots as 0 in the gray preview", func() {
		bm := NewBitmap(2, 1)
		bm.Set(1, 0, Black)
		g := bm.Gray()
		Expect(g.Pix).To(Equal([]uint8{0xff, 0x00}))
	})

	It("compares size as well as dots", func() {
		Expect(NewBitmap(2, 1).Equal(NewBitmap(1, 2))).To(BeFalse())
		Expect(NewBitmap(2, 1).Equal(NewBitmap(2, 1))).To(BeTrue())
	})
})
