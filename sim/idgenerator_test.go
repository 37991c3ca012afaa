package sim

import (
	"github.com/rs/xid"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	var (
		savedGenerator    IDGenerator
		savedInstantiated bool
	)

	BeforeEach(func() {
		idGeneratorMutex.Lock()
		savedGenerator = idGenerator
		savedInstantiated = idGeneratorInstantiated
		idGenerator = nil
		idGeneratorInstantiated = false
		idGeneratorMutex.Unlock()
	})

	AfterEach(func() {
		idGeneratorMutex.Lock()
		idGenerator = savedGenerator
		idGeneratorInstantiated = savedInstantiated
		idGeneratorMutex.Unlock()
	})

	It("should generate sequential IDs by default", func() {
		g := GetIDGenerator()

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should generate sequential IDs when asked to", func() {
		UseSequentialIDGenerator()

		Expect(GetIDGenerator().Generate()).To(Equal("1"))
	})

	It("should generate unique xids with the global generator", func() {
		UseGlobalIDGenerator()
		g := GetIDGenerator()

		first := g.Generate()
		second := g.Generate()

		Expect(first).NotTo(Equal(second))
		_, err := xid.FromString(first)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should give events globally unique IDs", func() {
		UseGlobalIDGenerator()

		e := NewEventBase(3, nil)

		_, err := xid.FromString(e.ID)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should refuse to change the generator after using it", func() {
		GetIDGenerator()

		Expect(UseGlobalIDGenerator).To(Panic())
	})
})
