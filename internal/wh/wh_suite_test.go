package wh

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestWHSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "wh")
}
