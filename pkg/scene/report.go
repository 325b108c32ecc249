package scene

import (
	"fmt"
	"strings"

	"github.com/chazu/umbra/pkg/shadow"
)

// FormatReport renders the area statistics of a result as the textual
// block shown to the user after a computation.
func FormatReport(res *shadow.Result) string {
	pct := func(a float64) float64 {
		if res.ReceivingArea <= 0 {
			return 0
		}
		return 100 * a / res.ReceivingArea
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Shadow report\n")
	fmt.Fprintf(&b, "  receiving area  %12.3f\n", res.ReceivingArea)
	fmt.Fprintf(&b, "  shadow area     %12.3f  (%5.1f%%)\n", res.Shadow.Area, pct(res.Shadow.Area))
	fmt.Fprintf(&b, "  ground area     %12.3f  (%5.1f%%)\n", res.GroundArea, pct(res.GroundArea))
	fmt.Fprintf(&b, "  sun area        %12.3f  (%5.1f%%)\n", res.SunArea, pct(res.SunArea))
	fmt.Fprintf(&b, "  shadow loops    %12d\n", len(res.Shadow.Loops))
	if res.Incomplete {
		fmt.Fprintf(&b, "  result is incomplete\n")
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	return b.String()
}
