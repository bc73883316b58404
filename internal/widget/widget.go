// Package widget implements the interactive widget state machines: carousel,
// responsive navigation, gallery lightbox, tabs, toggle groups, counters,
// search and dialogs.
//
// Each widget owns a cursor or a small set of flags, mutates them only through
// its transition methods, and reports every resulting state through an
// OnRender callback. Widgets are not safe for concurrent use; callers run
// transitions and timer callbacks one at a time.
package widget

import "strconv"

// Keyboard keys as reported by KeyboardEvent.key.
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyHome       = "Home"
	KeyEnd        = "End"
	KeyEscape     = "Escape"
	KeyEnter      = "Enter"
	KeySpace      = " "
)

func isSpace(key string) bool {
	return key == KeySpace || key == "Spacebar" || key == "Space"
}

// Wrap maps any integer onto [0, n) with ((i % n) + n) % n. It returns 0 when n <= 0.
func Wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func itoa(i int) string { return strconv.Itoa(i) }
