package diagram

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/alexiusacademia/gotruss/internal/analysis"
)

// DrawMemberBars draws one horizontal bar per member, negative values to the
// left of the axis and positive values to the right. width is the number of
// characters available to each half.
func DrawMemberBars(res *analysis.Result, field analysis.Field, width int) (string, error) {
	values, err := res.Field(field)
	if err != nil {
		return "", err
	}
	if width < 4 {
		width = 4
	}

	var largest float64
	for _, v := range values {
		largest = math.Max(largest, math.Abs(v))
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  MEMBER %s\n", strings.ToUpper(string(field))))
	sb.WriteString(fmt.Sprintf("  %s\n\n", strings.Repeat("─", 7+utf8.RuneCountInString(string(field)))))

	for i, v := range values {
		n := 0
		if largest > 0 {
			n = int(math.Round(math.Abs(v) / largest * float64(width)))
		}
		left := strings.Repeat(" ", width)
		right := ""
		if v < 0 {
			left = strings.Repeat(" ", width-n) + strings.Repeat("█", n)
		} else {
			right = strings.Repeat("█", n)
		}
		sb.WriteString(fmt.Sprintf("  %4d %s│%-*s %11.4g\n", i+1, left, width, right, v))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %s◄ compression │ tension ►\n", strings.Repeat(" ", max(0, 5+width-14))))
	return sb.String(), nil
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := utf8.RuneCountInString(title)
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxLen {
			maxLen = n
		}
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(title, maxLen-4)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(line, maxLen-4)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}

// pad right-fills s with spaces to n runes
func pad(s string, n int) string {
	if k := utf8.RuneCountInString(s); k < n {
		return s + strings.Repeat(" ", n-k)
	}
	return s
}
