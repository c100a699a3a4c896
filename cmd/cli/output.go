package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/anstrom/gvmclient/internal/client"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
	"github.com/anstrom/gvmclient/internal/openvasd"
	"github.com/anstrom/gvmclient/internal/workers"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
)

var outputFormat = formatTable

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatTable, "output format: table or json")
}

// render writes v as JSON when requested and otherwise calls table.
func render(w io.Writer, v any, table func() error) error {
	switch outputFormat {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatTable, "":
		return table()
	default:
		return gvmerrors.NewInvalidArgument("output", "format", outputFormat)
	}
}

func printTasks(w io.Writer, tasks []client.Task) error {
	return render(w, tasks, func() error {
		table := tablewriter.NewWriter(w)
		table.Header("ID", "Name", "Status", "Progress", "Target", "Last Report", "Severity")
		for i := range tasks {
			t := &tasks[i]
			lastReport, severity := "-", "-"
			if t.LastReport != nil {
				lastReport = t.LastReport.ID
				if t.LastReport.Severity != "" {
					severity = t.LastReport.Severity
				}
			}
			progress := "-"
			if t.Progress >= 0 {
				progress = strconv.Itoa(t.Progress) + "%"
			}
			_ = table.Append([]string{
				t.ID,
				t.Name,
				t.Status,
				progress,
				t.Target.Name,
				lastReport,
				severity,
			})
		}
		return table.Render()
	})
}

func printReports(w io.Writer, reports []client.Report) error {
	return render(w, reports, func() error {
		table := tablewriter.NewWriter(w)
		table.Header("ID", "Task", "Status", "Severity", "Started", "Finished")
		for i := range reports {
			r := &reports[i]
			_ = table.Append([]string{
				r.ID,
				r.Task.Name,
				r.ScanRunStatus,
				orDash(r.Severity),
				orDash(r.ScanStart),
				orDash(r.ScanEnd),
			})
		}
		return table.Render()
	})
}

type batchEntry struct {
	ID       string `json:"id"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
	Retries  int    `json:"retries"`
	Duration string `json:"duration"`
}

func printBatch(w io.Writer, results []workers.Result, details map[string]string) error {
	entries := make([]batchEntry, 0, len(results))
	for _, r := range results {
		e := batchEntry{
			ID:       r.JobID,
			Result:   details[r.JobID],
			Retries:  r.Retries,
			Duration: r.Duration.Round(time.Millisecond).String(),
		}
		if r.Error != nil {
			e.Error = r.Error.Error()
		}
		entries = append(entries, e)
	}

	return render(w, entries, func() error {
		table := tablewriter.NewWriter(w)
		table.Header("Task", "Result", "Retries", "Duration")
		for _, e := range entries {
			result := e.Result
			if e.Error != "" {
				result = "error: " + e.Error
			}
			_ = table.Append([]string{e.ID, result, strconv.Itoa(e.Retries), e.Duration})
		}
		return table.Render()
	})
}

func printVTs(w io.Writer, vts []openvasd.VT) error {
	return render(w, vts, func() error {
		table := tablewriter.NewWriter(w)
		table.Header("OID", "Name", "Family", "Category")
		for i := range vts {
			vt := &vts[i]
			_ = table.Append([]string{vt.OID, vt.Name, vt.Family, vt.Category})
		}
		return table.Render()
	})
}

func printScanStatus(w io.Writer, id string, status *openvasd.ScanStatus) error {
	return render(w, status, func() error {
		table := tablewriter.NewWriter(w)
		table.Header("Scan", "Status", "Started", "Finished", "Hosts", "Alive", "Dead", "Finished Hosts")
		all, alive, dead, finished := "-", "-", "-", "-"
		if h := status.HostInfo; h != nil {
			all = strconv.Itoa(h.All)
			alive = strconv.Itoa(h.Alive)
			dead = strconv.Itoa(h.Dead)
			finished = strconv.Itoa(h.Finished)
		}
		_ = table.Append([]string{
			id,
			string(status.Status),
			formatUnix(status.StartTime),
			formatUnix(status.EndTime),
			all,
			alive,
			dead,
			finished,
		})
		return table.Render()
	})
}

func printResults(w io.Writer, results []openvasd.Result) error {
	return render(w, results, func() error {
		table := tablewriter.NewWriter(w)
		table.Header("ID", "Type", "Host", "Port", "OID", "Message")
		for i := range results {
			r := &results[i]
			port := "-"
			if r.Port != nil {
				port = strconv.Itoa(*r.Port)
				if r.Protocol != "" {
					port += "/" + r.Protocol
				}
			}
			host := r.IPAddress
			if r.Hostname != "" {
				host = fmt.Sprintf("%s (%s)", r.IPAddress, r.Hostname)
			}
			_ = table.Append([]string{
				strconv.Itoa(r.ID),
				r.Type,
				orDash(host),
				port,
				orDash(r.OID),
				truncate(r.Message, 60),
			})
		}
		return table.Render()
	})
}

func formatUnix(ts *int64) string {
	if ts == nil || *ts == 0 {
		return "-"
	}
	return time.Unix(*ts, 0).UTC().Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
