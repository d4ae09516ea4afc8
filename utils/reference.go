package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var refMu sync.Mutex
var refRand *rand.Rand

func init() {
	refRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateOrderReference returns a unique-enough order reference. The
// reference is also the idempotency key for bonus distribution, so it must
// never repeat for the same user.
func GenerateOrderReference(userID uint) string {
	refMu.Lock()
	defer refMu.Unlock()

	nanoPart := time.Now().UnixNano() % 1000000
	randPart := refRand.Intn(900) + 100

	return fmt.Sprintf("VB-%06d%03d%d", nanoPart, randPart, userID)
}
