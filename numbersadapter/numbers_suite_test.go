package numbersadapter_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestNumbersAdapter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "numbersadapter suite")
}
