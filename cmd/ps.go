package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/gokernel/coresched/internal/ptable"
	"github.com/olekukonko/tablewriter"
)

// renderPsTable writes a tabular ps listing of every non-UNUSED slot, the
// same tablewriter.NewWriter/SetHeader/AppendBulk/Render shape the
// teacher's createTableListOutput uses, in exactly spec.md §6's field
// order (PID Priority State r_time w_time n_run cur_q q0 q1 q2 q3 q4) —
// tablewriter's box-drawing stands in for the spec's tab separation, but
// the column set itself is unchanged.
func renderPsTable(w io.Writer, procs []ptable.Process) {
	rows := [][]string{}
	for _, p := range procs {
		if p.State == ptable.UNUSED {
			continue
		}
		row := []string{
			strconv.Itoa(p.PID),
			strconv.Itoa(p.Priority),
			p.State.String(),
			strconv.FormatInt(p.RTime, 10),
			strconv.FormatInt(p.PSWTime, 10),
			strconv.FormatInt(p.NRun, 10),
			strconv.Itoa(p.Queue),
		}
		for _, q := range p.QTicks {
			row = append(row, strconv.FormatInt(q, 10))
		}
		rows = append(rows, row)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PID", "Priority", "State", "r_time", "w_time", "n_run", "cur_q", "q0", "q1", "q2", "q3", "q4"})
	table.AppendBulk(rows)
	table.Render()
}

// dumpVerbose writes a go-spew dump of the full process slice, for
// --verbose output that needs every accounting field rather than ps's
// curated columns.
func dumpVerbose(w io.Writer, procs []ptable.Process) {
	fmt.Fprintln(w, spew.Sdump(procs))
}
