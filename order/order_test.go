package order

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Document", func() {
	It("computes line totals from unit price and quantity", func() {
		Expect(Line{UnitPrice: 1000, Quantity: 3}.LineTotal()).To(Equal(uint64(3000)))
		Expect(Line{UnitPrice: 1000, Quantity: 0}.LineTotal()).To(BeZero())
	})

	It("clones without sharing the line slice", func() {
		doc := Document{Lines: []Line{{PrimaryName: "Tea", UnitPrice: 10, Quantity: 1}}}
		c := doc.Clone()
		c.Lines[0].PrimaryName = "Coffee"
		Expect(doc.Lines[0].PrimaryName).To(Equal("Tea"))
	})

	It("fills only the missing contact lines", func() {
		doc := Document{Details: StaticDetails{Phone: "010"}}
		doc = doc.WithDefaultDetails(StaticDetails{Address: "1 Main St", Phone: "999"})
		Expect(doc.Details).To(Equal(StaticDetails{Address: "1 Main St", Phone: "010"}))
	})
})

var _ = Describe("Parse", func() {
	var (
		payload string
		doc     Document
		err     error
	)

	JustBeforeEach(func() {
		doc, err = Parse([]byte(payload))
	})

	When("the payload is complete", func() {
		BeforeEach(func() {
			payload = `{
				"shopName": "Corner Cafe",
				"orderId": "A-17",
				"lines": [{"primaryName": "Latte", "secondaryName": "oat", "unitPrice": 4500, "quantity": 2, "category": "drinks"}],
				"totalAmount": 9999,
				"staticDetails": {"address": "1 Main St", "phone": "555-0100"}
			}`
		})

		It("decodes every field", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.ShopName).To(Equal("Corner Cafe"))
			Expect(doc.Lines).To(HaveLen(1))
			Expect(doc.Lines[0].SecondaryName).To(Equal("oat"))
			Expect(doc.Details.Phone).To(Equal("555-0100"))
		})

		It("keeps the given total even when it disagrees with the lines", func() {
			Expect(doc.TotalAmount).To(Equal(uint64(9999)))
		})
	})

	When("the total is missing", func() {
		BeforeEach(func() {
			payload = `{"shopName": "S", "orderId": "1", "lines": [{"primaryName": "X", "unitPrice": 1000, "quantity": 3}]}`
		})

		It("derives it from the lines", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.TotalAmount).To(Equal(uint64(3000)))
		})
	})

	When("the order has no lines", func() {
		BeforeEach(func() {
			payload = `{"shopName": "S", "orderId": "1", "lines": []}`
		})

		It("is accepted", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Lines).To(BeEmpty())
			Expect(doc.TotalAmount).To(BeZero())
		})
	})

	When("a quantity is zero", func() {
		BeforeEach(func() {
			payload = `{"shopName": "S", "orderId": "1", "lines": [{"primaryName": "X", "unitPrice": 1, "quantity": 0}]}`
		})

		It("returns a schema error", func() {
			Expect(err).To(MatchError(ContainSubstring("order does not match schema")))
		})
	})

	When("the payload is not JSON", func() {
		BeforeEach(func() {
			payload = `not json`
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("unmarshal order")))
		})
	})
})
