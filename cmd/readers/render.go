package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/mobile-access/readers-go/pkg/history"
	"github.com/mobile-access/readers-go/pkg/readers"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/sdkstate"
)

// renderView prints the full screen: status messages first, then one row
// per reader.
func renderView(w io.Writer, v readers.View) {
	fmt.Fprintf(w, "\n=== Readers (v%d, scanning: %v) ===\n", v.Version, v.Scanning)
	renderMessages(w, v.Messages)
	fmt.Fprintln(w)
	renderReaders(w, v.Readers)
}

func renderMessages(w io.Writer, msgs []sdkstate.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No status messages")
		return
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "  * %s\n", m.Message)
	}
}

// renderReaders shows a reader's status while one is set, and its distance
// otherwise.
func renderReaders(w io.Writer, list []sdk.Reader) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No readers in range")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tID\tDISTANCE / STATUS")
	for _, r := range list {
		name := r.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", name, r.ID, readerDetail(r))
	}
	_ = tw.Flush()
}

func readerDetail(r sdk.Reader) string {
	if r.Status != "" {
		return r.Status
	}
	return formatDistance(r.Distance)
}

func formatDistance(d *float64) string {
	if d == nil {
		return "-"
	}
	return strconv.FormatFloat(*d, 'f', 2, 64) + " m"
}

func renderReader(w io.Writer, r sdk.Reader) {
	fmt.Fprintf(w, "Reader %s\n", r.ID)
	fmt.Fprintf(w, "  Name:     %s\n", r.Name)
	fmt.Fprintf(w, "  Distance: %s\n", formatDistance(r.Distance))
	status := r.Status
	if status == "" {
		status = "(none)"
	}
	fmt.Fprintf(w, "  Status:   %s\n", status)
	if len(r.Attributes) == 0 {
		return
	}
	fmt.Fprintln(w, "  Attributes:")
	keys := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "    %s: %v\n", k, r.Attributes[k])
	}
}

func renderHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  TIME\tREADER\tKIND\tSTATUS\tEVENT")
	for _, e := range entries {
		reader := e.ReaderName
		if reader == "" {
			reader = e.ReaderID
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			e.At.Local().Format(time.TimeOnly), reader, e.Kind, e.Status, e.Event)
	}
	_ = tw.Flush()
}
