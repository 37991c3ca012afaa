package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var idGeneratorMutex sync.Mutex
var idGeneratorInstantiated bool
var idGenerator IDGenerator

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// UseSequentialIDGenerator configures the ID generator to generate IDs in
// sequential. This is the default.
func UseSequentialIDGenerator() {
	useIDGenerator(&sequentialIDGenerator{})
}

// UseGlobalIDGenerator configures the ID generator to generate globally unique
// IDs. The IDs generated are not deterministic across runs, which is useful
// when events of several runs end up in the same database.
func UseGlobalIDGenerator() {
	useIDGenerator(globalIDGenerator{})
}

func useIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGeneratorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
	idGeneratorInstantiated = true
}

// GetIDGenerator returns the ID generator used in the current process.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if !idGeneratorInstantiated {
		idGenerator = &sequentialIDGenerator{}
		idGeneratorInstantiated = true
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type globalIDGenerator struct{}

func (globalIDGenerator) Generate() string {
	return xid.New().String()
}
