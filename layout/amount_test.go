package layout

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = DescribeTable("FormatAmount",
	func(amount uint64, currency, want string) {
		Expect(FormatAmount(amount, currency)).To(Equal(want))
	},
	Entry("zero", uint64(0), "$", "$0"),
	Entry("below a thousand", uint64(999), "$", "$999"),
	Entry("thousands", uint64(3000), "$", "$3,000"),
	Entry("millions", uint64(1234567), "₩", "₩1,234,567"),
	Entry("no glyph", uint64(45000), "", "45,000"),
)
