package value_test

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/trustfall-go/trustfall/value"
)

func TestValue(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "value suite")
}

var _ = Describe("Value", func() {
	It("treats Null as equal only to Null", func() {
		Expect(value.Null.Equal(value.Null)).To(BeTrue())
		Expect(value.Null.Equal(value.NewInt64(0))).To(BeFalse())
		Expect(value.NewInt64(0).Equal(value.Null)).To(BeFalse())
	})

	It("compares Int64 and Uint64 as signed integers when both fit", func() {
		cmp, err := value.Compare(value.NewInt64(3), value.NewUint64(5))
		Expect(err).NotTo(HaveOccurred())
		Expect(cmp).To(Equal(-1))
	})

	It("compares strings lexicographically", func() {
		c, err := value.Compare(value.NewString("alpha"), value.NewString("beta"))
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(-1))
	})

	It("compares lists element-wise with length as a tiebreaker", func() {
		a := value.NewList([]value.Value{value.NewInt64(1), value.NewInt64(2)})
		b := value.NewList([]value.Value{value.NewInt64(1), value.NewInt64(2), value.NewInt64(3)})
		c, err := value.Compare(a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(-1))
	})

	It("rejects incompatible comparisons", func() {
		_, err := value.Compare(value.NewString("x"), value.NewBool(true))
		Expect(err).To(HaveOccurred())
		var incomparable *value.IncomparableError
		Expect(errors.As(err, &incomparable)).To(BeTrue())
	})

	It("panics when an accessor is called against the wrong kind", func() {
		Expect(func() { value.NewInt64(1).AsString() }).To(Panic())
	})

	It("marshals to the expected JSON shapes", func() {
		b, err := value.NewList([]value.Value{value.NewInt64(1), value.Null}).MarshalJSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal("[1,null]"))
	})

	It("sorts a list copy without mutating the original", func() {
		items := []value.Value{value.NewInt64(3), value.NewInt64(1), value.NewInt64(2)}
		sorted := value.SortableList(items)
		Expect(items[0].AsInt64()).To(Equal(int64(3)))
		Expect(sorted[0].AsInt64()).To(Equal(int64(1)))
		Expect(sorted[2].AsInt64()).To(Equal(int64(3)))
	})
})
