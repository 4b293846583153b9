package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"todo-go/internal/presenter"
)

func renderTasks(w io.Writer, userName string, tasks []presenter.TaskView) {
	fmt.Fprintf(w, "Hello, %s\n", userName)
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No todos yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDUE\tSTATUS\t")
	for _, t := range tasks {
		due := t.DueDate.String()
		if t.Overdue {
			due += " (overdue)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", t.ID, t.Title, due, t.Status)
	}
	tw.Flush()
}
