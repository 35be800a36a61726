package receipt

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestReceipt(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Receipt Suite")
}

var _ = Describe("Form", func() {
	var form *Form

	BeforeEach(func() {
		form = NewForm()
	})

	Describe("NewForm", func() {
		It("should start with a single empty item", func() {
			Expect(form.Items()).To(Equal([]Item{{}}))
		})

		It("should start with a zero total", func() {
			Expect(form.Snapshot().Total).To(Equal("0.00"))
		})
	})

	Describe("UpdateField", func() {
		It("should set the retailer", func() {
			Expect(form.UpdateField(FieldRetailer, "Target")).To(Succeed())
			Expect(form.Snapshot().Retailer).To(Equal("Target"))
		})

		It("should set the purchase date and time without validating them", func() {
			Expect(form.UpdateField(FieldPurchaseDate, "not a date")).To(Succeed())
			Expect(form.UpdateField(FieldPurchaseTime, "13:01")).To(Succeed())
			draft := form.Snapshot()
			Expect(draft.PurchaseDate).To(Equal("not a date"))
			Expect(draft.PurchaseTime).To(Equal("13:01"))
		})

		It("should reject unknown fields", func() {
			Expect(form.UpdateField(Field("total"), "1.00")).To(MatchError(ErrUnknownField))
			Expect(form.Snapshot().Total).To(Equal("0.00"))
		})
	})

	Describe("UpdateItem", func() {
		When("the index is in range", func() {
			It("should set the description", func() {
				Expect(form.UpdateItem(0, ItemFieldShortDescription, "Mountain Dew 12PK")).To(Succeed())
				Expect(form.Items()[0].ShortDescription).To(Equal("Mountain Dew 12PK"))
			})

			It("should keep the raw price text", func() {
				Expect(form.UpdateItem(0, ItemFieldPrice, "6.4")).To(Succeed())
				Expect(form.Items()[0].Price).To(Equal("6.4"))
			})

			It("should recompute the total", func() {
				Expect(form.UpdateItem(0, ItemFieldPrice, "6.4")).To(Succeed())
				Expect(form.Snapshot().Total).To(Equal("6.40"))
			})
		})

		When("the index is out of range", func() {
			It("returns ErrItemIndex", func() {
				Expect(form.UpdateItem(1, ItemFieldPrice, "1")).To(MatchError(ErrItemIndex))
				Expect(form.UpdateItem(-1, ItemFieldPrice, "1")).To(MatchError(ErrItemIndex))
			})
		})

		When("the field is unknown", func() {
			It("returns ErrUnknownField", func() {
				Expect(form.UpdateItem(0, ItemField("qty"), "1")).To(MatchError(ErrUnknownField))
			})
		})
	})

	Describe("AddItem", func() {
		It("should append an empty item", func() {
			form.AddItem()
			Expect(form.Items()).To(HaveLen(2))
			Expect(form.Items()[1]).To(Equal(Item{}))
		})
	})

	Describe("DeleteItem", func() {
		When("only one item remains", func() {
			It("should be a no-op", func() {
				Expect(form.DeleteItem(0)).To(Succeed())
				Expect(form.Items()).To(HaveLen(1))
			})
		})

		When("several items exist", func() {
			BeforeEach(func() {
				form.AddItem()
				form.AddItem()
				Expect(form.UpdateItem(0, ItemFieldPrice, "1.00")).To(Succeed())
				Expect(form.UpdateItem(1, ItemFieldPrice, "2.00")).To(Succeed())
				Expect(form.UpdateItem(2, ItemFieldPrice, "4.00")).To(Succeed())
			})

			It("should remove the item at the index and keep order", func() {
				Expect(form.DeleteItem(1)).To(Succeed())
				Expect(form.Items()).To(Equal([]Item{{Price: "1.00"}, {Price: "4.00"}}))
			})

			It("should recompute the total", func() {
				Expect(form.DeleteItem(2)).To(Succeed())
				Expect(form.Snapshot().Total).To(Equal("3.00"))
			})

			It("returns ErrItemIndex when out of range", func() {
				Expect(form.DeleteItem(3)).To(MatchError(ErrItemIndex))
				Expect(form.Items()).To(HaveLen(3))
			})
		})
	})

	Describe("total", func() {
		It("should sum the parseable prices", func() {
			form.AddItem()
			Expect(form.UpdateItem(0, ItemFieldPrice, "6.49")).To(Succeed())
			Expect(form.UpdateItem(1, ItemFieldPrice, "3.50")).To(Succeed())
			Expect(form.Snapshot().Total).To(Equal("9.99"))
		})

		It("should count empty and unparseable prices as zero", func() {
			form.AddItem()
			form.AddItem()
			Expect(form.UpdateItem(0, ItemFieldPrice, "abc")).To(Succeed())
			Expect(form.UpdateItem(1, ItemFieldPrice, "2.25")).To(Succeed())
			Expect(form.Snapshot().Total).To(Equal("2.25"))
		})

		It("should not accumulate floating point error", func() {
			form.AddItem()
			form.AddItem()
			Expect(form.UpdateItem(0, ItemFieldPrice, "0.1")).To(Succeed())
			Expect(form.UpdateItem(1, ItemFieldPrice, "0.2")).To(Succeed())
			Expect(form.UpdateItem(2, ItemFieldPrice, "0.005")).To(Succeed())
			Expect(form.Snapshot().Total).To(Equal("0.31"))
		})

		It("should count prices with extreme exponents as zero", func() {
			form.AddItem()
			form.AddItem()
			Expect(form.UpdateItem(0, ItemFieldPrice, "1e100000000")).To(Succeed())
			Expect(form.UpdateItem(1, ItemFieldPrice, "1e-100000000")).To(Succeed())
			Expect(form.UpdateItem(2, ItemFieldPrice, "1.5")).To(Succeed())
			Expect(form.Snapshot().Total).To(Equal("1.50"))
		})

		It("should not read a numeric prefix as the price", func() {
			Expect(form.UpdateItem(0, ItemFieldPrice, "6.5abc")).To(Succeed())
			Expect(form.Snapshot().Total).To(Equal("0.00"))
		})
	})

	Describe("Snapshot", func() {
		It("should not share item storage with the draft", func() {
			draft := form.Snapshot()
			draft.Items[0].Price = "99.00"
			Expect(form.Items()[0].Price).To(BeEmpty())
		})
	})

	Describe("Commit", func() {
		It("should replace the items and recompute the total", func() {
			form.Commit([]Item{{ShortDescription: "a", Price: "1.50"}, {ShortDescription: "b", Price: "2.00"}})
			Expect(form.Items()).To(HaveLen(2))
			Expect(form.Snapshot().Total).To(Equal("3.50"))
		})

		It("should keep one empty item when given none", func() {
			form.Commit(nil)
			Expect(form.Items()).To(Equal([]Item{{}}))
		})
	})

	Describe("Prefill", func() {
		It("should replace fields and items and ignore the given total", func() {
			form.Prefill(Receipt{
				Retailer:     "Walgreens",
				PurchaseDate: "2022-01-02",
				PurchaseTime: "08:13",
				Total:        "100.00",
				Items:        []Item{{ShortDescription: "Pepsi - 12-oz", Price: "1.25"}},
			})
			draft := form.Snapshot()
			Expect(draft.Retailer).To(Equal("Walgreens"))
			Expect(draft.PurchaseDate).To(Equal("2022-01-02"))
			Expect(draft.PurchaseTime).To(Equal("08:13"))
			Expect(draft.Total).To(Equal("1.25"))
		})
	})
})

var _ = Describe("ValidateAndFormat", func() {
	var (
		items  []Item
		result Validation
	)

	JustBeforeEach(func() {
		result = ValidateAndFormat(items)
	})

	When("every price parses", func() {
		BeforeEach(func() {
			items = []Item{{ShortDescription: "Gatorade", Price: "6.5"}}
		})

		It("should be valid", func() {
			Expect(result.Valid).To(BeTrue())
			Expect(result.Invalid).To(BeEmpty())
		})

		It("should format prices to two decimals", func() {
			Expect(result.Items).To(Equal([]Item{{ShortDescription: "Gatorade", Price: "6.50"}}))
		})
	})

	When("a price is empty", func() {
		BeforeEach(func() {
			items = []Item{{Price: ""}, {Price: "6.5"}}
		})

		It("should be invalid", func() {
			Expect(result.Valid).To(BeFalse())
		})

		It("should blank the invalid price and format the rest", func() {
			Expect(result.Items[0].Price).To(Equal(""))
			Expect(result.Items[1].Price).To(Equal("6.50"))
		})
	})

	When("several prices are invalid", func() {
		BeforeEach(func() {
			items = []Item{{Price: "x"}, {Price: "1"}, {Price: "-2.00"}, {Price: "   "}}
		})

		It("should flag all of them in one pass", func() {
			Expect(result.Invalid).To(Equal([]int{0, 2, 3}))
			Expect(result.Items[0].Price).To(BeEmpty())
			Expect(result.Items[1].Price).To(Equal("1.00"))
			Expect(result.Items[2].Price).To(BeEmpty())
			Expect(result.Items[3].Price).To(BeEmpty())
		})
	})

	When("a price has an extreme exponent", func() {
		BeforeEach(func() {
			items = []Item{{Price: "1e100000000"}, {Price: "1e-100000000"}, {Price: "1e2"}}
		})

		It("should blank it", func() {
			Expect(result.Invalid).To(Equal([]int{0, 1}))
			Expect(result.Items[0].Price).To(BeEmpty())
			Expect(result.Items[1].Price).To(BeEmpty())
			Expect(result.Items[2].Price).To(Equal("100.00"))
		})
	})

	When("a price has more than two decimals", func() {
		BeforeEach(func() {
			items = []Item{{Price: "2.005"}, {Price: " 3 "}}
		})

		It("should round to two decimals", func() {
			Expect(result.Items[0].Price).To(Equal("2.01"))
			Expect(result.Items[1].Price).To(Equal("3.00"))
		})
	})

	It("should not modify its input", func() {
		in := []Item{{Price: "bad"}}
		ValidateAndFormat(in)
		Expect(in[0].Price).To(Equal("bad"))
	})
})

var _ = Describe("FormatAmount", func() {
	It("should format to two decimals", func() {
		Expect(FormatAmount(1.5)).To(Equal("1.50"))
	})

	It("should blank negative amounts", func() {
		Expect(FormatAmount(-3)).To(BeEmpty())
	})
})
