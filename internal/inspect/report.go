package inspect

import (
	"fmt"
	"io"
	"strings"
)

const bannerWidth = 60

const (
	checkSuccess = "email-history route is registered"
	checkFailure = "email-history route NOT found"
)

// WriteTable renders the records between banners: a 60-column rule, a
// header row, the rule again, then one line per record with the
// comma-joined methods left-aligned in a ten-wide column followed by
// the path.
func WriteTable(w io.Writer, records []Record) error {
	rule := strings.Repeat("=", bannerWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-10s %s\n", "METHODS", "PATH")
	b.WriteString(rule + "\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%-10s %s\n", r.MethodList(), r.Path)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCheck renders the outcome of the email-history probe: a blank
// line, a banner, the success or failure message, and a closing banner.
func WriteCheck(w io.Writer, found bool) error {
	rule := strings.Repeat("=", bannerWidth)

	msg := checkFailure
	if found {
		msg = checkSuccess
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(rule + "\n")
	b.WriteString(msg + "\n")
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
