package input

import "sort"

// Keys is the key-state collaborator read by gameplay systems. Codes are
// free-form strings ("KeyA", "Space", ...). A press stays down for
// holdTicks ticks unless released explicitly, which lets sources without
// key-up events (terminals) drive held movement.
type Keys struct {
	holdTicks int
	down      map[string]int
}

func NewKeys(holdTicks int) *Keys {
	if holdTicks < 1 {
		holdTicks = 1
	}
	return &Keys{holdTicks: holdTicks, down: make(map[string]int)}
}

func (k *Keys) Press(code string) {
	k.down[code] = k.holdTicks
}

func (k *Keys) Release(code string) {
	delete(k.down, code)
}

// Set mirrors a source that reports both edges.
func (k *Keys) Set(code string, pressed bool) {
	if pressed {
		k.Press(code)
	} else {
		k.Release(code)
	}
}

func (k *Keys) IsPressed(code string) bool {
	return k.down[code] > 0
}

// Advance ages held keys by one tick.
func (k *Keys) Advance() {
	for code, n := range k.down {
		if n <= 1 {
			delete(k.down, code)
			continue
		}
		k.down[code] = n - 1
	}
}

// Pressed lists the keys currently down, sorted.
func (k *Keys) Pressed() []string {
	out := make([]string, 0, len(k.down))
	for code := range k.down {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
