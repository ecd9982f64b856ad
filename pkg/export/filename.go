package export

import (
	"fmt"
	"strconv"
	"time"
)

// Filename returns the suggested file name of an export.
func Filename(widthCm float64, dpi int, t time.Time) string {
	return fmt.Sprintf("printframe_%scm_%ddpi_%s.png",
		strconv.FormatFloat(widthCm, 'f', -1, 64), dpi, t.Format("20060102-150405"))
}
