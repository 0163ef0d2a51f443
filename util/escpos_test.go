package util

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IntLowHigh", func() {
	It("emits the low byte first", func() {
		out, err := IntLowHigh(0x0148, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]byte{0x48, 0x01}))
	})

	It("handles four byte parameters", func() {
		out, err := IntLowHigh(0x01020304, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]byte{0x04, 0x03, 0x02, 0x01}))
	})

	It("rejects unsupported widths", func() {
		_, err := IntLowHigh(1, 5)
		Expect(err).To(MatchError(ContainSubstring("1-4 bytes only")))
	})

	It("rejects values that overflow", func() {
		_, err := IntLowHigh(0x10000, 2)
		Expect(err).To(HaveOccurred())
		_, err = IntLowHigh(-1, 2)
		Expect(err).To(HaveOccurred())
	})
})

var _ = DescribeTable("RowStride",
	func(width, want int) {
		Expect(RowStride(width)).To(Equal(want))
	},
	Entry("zero", 0, 0),
	Entry("one dot", 1, 1),
	Entry("exact byte", 8, 1),
	Entry("58 dots", 58, 8),
	Entry("58mm preset", 384, 48),
	Entry("80mm preset", 576, 72),
)
