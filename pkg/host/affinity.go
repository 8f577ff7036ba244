package host

import (
	"fmt"

	"github.com/petermattis/goid"
)

// affinity records the goroutine a scheduler belongs to.
type affinity struct {
	gid int64
}

func newAffinity() affinity {
	return affinity{gid: goid.Get()}
}

// check panics in debug mode when called from a foreign goroutine.
func (a affinity) check(op string) {
	if !DebugMode {
		return
	}
	if gid := goid.Get(); gid != a.gid {
		panic(fmt.Sprintf("[COMPOSE E103] host: %s called from goroutine %d, scheduler belongs to goroutine %d",
			op, gid, a.gid))
	}
}
