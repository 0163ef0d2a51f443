package image

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func randomBitmap(w, h int, seed int64) *Bitmap {
	r := rand.New(rand.NewSource(seed))
	bm := NewBitmap(w, h)
	for i := range bm.Pix {
		if r.Intn(2) == 1 {
			bm.Pix[i] = Black
		}
	}
	return bm
}

var _ = Describe("Pack", func() {
	It("uses ceil(width/8) bytes per row", func() {
		for _, w := range []int{1, 7, 8, 9, 58, 384, 576} {
			f := Pack(NewBitmap(w, 3))
			Expect(f.Stride).To(Equal((w+7)/8), "width %d", w)
			Expect(f.Data).To(HaveLen(f.Stride * 3))
			Expect(f.Validate()).To(Succeed())
		}
	})

	It("zero-pads the last byte of a 58 dot row", func() {
		bm := NewBitmap(58, 1)
		for x := range bm.Pix {
			bm.Pix[x] = Black
		}
		f := Pack(bm)
		Expect(f.Stride).To(Equal(8))
		Expect(f.Row(0)[:7]).To(HaveEach(byte(0xff)))
		Expect(f.Row(0)[7]).To(Equal(byte(0xfc)))
	})

	It("packs MSB first", func() {
		bm := NewBitmap(10, 1)
		bm.Set(0, 0, Black)
		bm.Set(9, 0, Black)
		Expect(Pack(bm).Data).To(Equal([]byte{0x80, 0x40}))
	})

	DescribeTable("round-trips through Unpack",
		func(w, h int) {
			bm := randomBitmap(w, h, int64(w*h))
			Expect(Unpack(Pack(bm)).Equal(bm)).To(BeTrue())
		},
		Entry("even width", 64, 5),
		Entry("odd width", 61, 4),
		Entry("58 dots", 58, 7),
		Entry("single column", 1, 9),
	)
})

var _ = Describe("Frame.Validate", func() {
	It("rejects empty frames", func() {
		Expect((&Frame{}).Validate()).To(MatchError(ContainSubstring("empty dimensions")))
	})

	It("rejects a short buffer", func() {
		f := &Frame{Width: 16, Height: 2, Stride: 2, Data: make([]byte, 3)}
		Expect(f.Validate()).To(MatchError(ContainSubstring("want 4")))
	})

	It("rejects a wrong stride", func() {
		f := &Frame{Width: 16, Height: 1, Stride: 3, Data: make([]byte, 3)}
		Expect(f.Validate()).To(HaveOccurred())
	})
})
