package collide_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCollide(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Collide Suite")
}
