// internal/strategy/datetime.go
package strategy

import (
	"strings"
	"time"

	"github.com/sorsimple/obslayer/internal/types"
)

// defaultDateFormat is used when an action configures no pattern.
const defaultDateFormat = "%Y%m%d"

// DatetimeNow formats the current instant with the strftime-style
// pattern in the action's value. The value is produced fresh on every
// execution. Now is overridable for tests; nil means time.Now.
type DatetimeNow struct {
	Now func() time.Time
}

func (d DatetimeNow) Execute(action types.Action, _ map[string]any, _ *Extensions) (any, bool) {
	format, _ := action.Value.(string)
	if format == "" {
		format = defaultDateFormat
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return now().Format(strftimeLayout(format)), true
}

// strftimeReplacer maps the strftime directives the configuration
// documents use onto Go reference-time fragments. "%%" must come first
// so a literal percent never starts a directive match.
var strftimeReplacer = strings.NewReplacer(
	"%%", "%",
	"%Y", "2006",
	"%y", "06",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%M", "04",
	"%S", "05",
	"%f", "000000",
	"%z", "-0700",
	"%Z", "MST",
)

// strftimeLayout converts a strftime-style pattern to a Go time layout.
// Unrecognized directives pass through unchanged.
func strftimeLayout(format string) string {
	return strftimeReplacer.Replace(format)
}
