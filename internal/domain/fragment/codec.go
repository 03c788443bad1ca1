// Package fragment keeps the active step number and the location fragment
// in sync: it encodes step numbers as "step<N>" fragments, restores the
// step from the fragment on mount, and follows fragment navigations for
// the rest of the session.
package fragment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/checkoutkit/internal/ports"
)

// stepPattern matches a step fragment. A leading '#' is tolerated because
// some hosts hand the fragment over with the separator still attached.
var stepPattern = regexp.MustCompile(`^#?step([0-9]+)$`)

// ParseStepNumber maps a location fragment to a step number. Absent,
// unrecognized, and malformed fragments all fall back to step 1.
func ParseStepNumber(fragment string) int {
	match := stepPattern.FindStringSubmatch(strings.TrimSpace(fragment))
	if match == nil {
		return 1
	}

	number, err := strconv.Atoi(match[1])
	if err != nil || number < 1 {
		return 1
	}
	return number
}

// FormatStepNumber renders a step number as a fragment. Step 1 is the
// default and renders as the empty fragment.
func FormatStepNumber(number int) string {
	if number > 1 {
		return fmt.Sprintf("step%d", number)
	}
	return ""
}

// Write persists a step number to the location fragment using a silent
// replace-style write: no history entry, no watcher notification. Writing
// the fragment that is already current is a no-op.
func Write(loc ports.Location, number int) {
	next := FormatStepNumber(number)
	current := strings.TrimPrefix(loc.Fragment(), "#")
	if current == next {
		return
	}
	loc.ReplaceFragment(next)
}
