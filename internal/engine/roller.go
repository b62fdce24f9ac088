package engine

import "math/rand"

// Roller is the engine's source of uniform random draws. Tests inject a
// deterministic implementation; production uses math/rand.
type Roller interface {
	// IntN returns a uniform value in [0, n)
	IntN(n int) int
}

type mathRoller struct{}

func (mathRoller) IntN(n int) int {
	return rand.Intn(n)
}
