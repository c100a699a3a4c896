package client

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/gvmclient/internal/commands"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
	"github.com/anstrom/gvmclient/internal/logging"
	"github.com/anstrom/gvmclient/internal/protocol"
	"github.com/anstrom/gvmclient/internal/transport"
)

// managerRequest is one command as seen by the fake manager.
type managerRequest struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

func (r managerRequest) attr(name string) string {
	for _, a := range r.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// startManager serves one connection, answering each command with the
// reply returned by handle. Replies are written in two pieces to exercise
// the read loop.
func startManager(t *testing.T, handle func(managerRequest) string, opts ...Option) *GMP {
	t.Helper()

	dir, err := os.MkdirTemp("", "gmp")
	require.NoError(t, err)
	socketPath := filepath.Join(dir, "gvmd.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		dec := xml.NewDecoder(conn)
		for {
			var req managerRequest
			if err := dec.Decode(&req); err != nil {
				return
			}
			reply := handle(req)
			half := len(reply) / 2
			if _, err := conn.Write([]byte(reply[:half])); err != nil {
				return
			}
			if _, err := conn.Write([]byte(reply[half:])); err != nil {
				return
			}
		}
	}()

	tr := transport.NewUnixTransport(socketPath, time.Second)
	require.NoError(t, tr.Connect(context.Background()))
	s := NewSession(tr, append([]Option{WithTimeout(5 * time.Second), WithReadBufferSize(64)}, opts...)...)

	t.Cleanup(func() {
		s.Close()
		listener.Close()
		<-done
		os.RemoveAll(dir)
	})
	return NewGMP(s)
}

func TestGMPGetVersion(t *testing.T) {
	g := startManager(t, func(req managerRequest) string {
		assert.Equal(t, "get_version", req.XMLName.Local)
		return `<get_version_response status="200" status_text="OK"><version>22.4</version></get_version_response>`
	})

	v, err := g.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "22.4", v.Version)
}

func TestGMPAuthenticate(t *testing.T) {
	g := startManager(t, func(req managerRequest) string {
		if req.XMLName.Local != "authenticate" {
			return `<` + req.XMLName.Local + `_response status="400" status_text="Bogus"/>`
		}
		if req.Inner != `<credentials><username>admin</username><password>secret</password></credentials>` {
			return `<authenticate_response status="400" status_text="Authentication failed"/>`
		}
		return `<authenticate_response status="200" status_text="OK"><role>Admin</role><timezone>UTC</timezone></authenticate_response>`
	})

	info, err := g.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Admin", info.Role)
	assert.Equal(t, "UTC", info.Timezone)

	_, err = g.Authenticate(context.Background(), "admin", "wrong")
	var statusErr *protocol.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 400, statusErr.Status())
	assert.Equal(t, "Authentication failed", statusErr.StatusText())

	// A rejected command leaves the session usable.
	assert.Equal(t, protocol.StateInitial, g.Session().State())
}

// jsonLogger returns a debug logger writing JSON lines to a temp file and a
// func reading back the entries logged so far.
func jsonLogger(t *testing.T) (*logging.Logger, func() []map[string]any) {
	t.Helper()
	logFile := filepath.Join(t.TempDir(), "gvmcli.log")
	logger, err := logging.New(logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatJSON,
		Output: logFile,
	})
	require.NoError(t, err)

	return logger, func() []map[string]any {
		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		var entries []map[string]any
		for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
			if line == "" {
				continue
			}
			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			entries = append(entries, entry)
		}
		return entries
	}
}

func findEntry(entries []map[string]any, msg string) map[string]any {
	for _, e := range entries {
		if e["msg"] == msg {
			return e
		}
	}
	return nil
}

func TestGMPAuthenticateLogsCommand(t *testing.T) {
	logger, entries := jsonLogger(t)
	g := startManager(t, func(req managerRequest) string {
		return `<authenticate_response status="200" status_text="OK"><role>Admin</role></authenticate_response>`
	}, WithLogger(logger))

	_, err := g.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)

	entry := findEntry(entries(), "authenticated")
	require.NotNil(t, entry)
	assert.Equal(t, "authenticate", entry["command"])
	assert.EqualValues(t, 200, entry["status"])
	assert.Equal(t, "admin", entry["user"])
	assert.Equal(t, "Admin", entry["role"])
	assert.NotContains(t, entry, "password")

	exchange := findEntry(entries(), "exchange completed")
	require.NotNil(t, exchange)
	assert.Equal(t, "authenticate", exchange["command"])
	assert.EqualValues(t, 200, exchange["status"])
}

func TestGMPTasks(t *testing.T) {
	g := startManager(t, func(req managerRequest) string {
		switch req.XMLName.Local {
		case "get_tasks":
			if req.attr("task_id") == "missing" {
				return `<get_tasks_response status="200" status_text="OK"/>`
			}
			return `<get_tasks_response status="200" status_text="OK">
  <task id="t1">
    <name>Weekly</name>
    <comment>lan</comment>
    <status>Done</status>
    <progress>-1</progress>
    <target id="tg1"><name>LAN</name></target>
    <config id="c1"><name>Full and fast</name></config>
    <scanner id="s1"><name>OpenVAS Default</name></scanner>
    <last_report><report id="r1"><timestamp>2024-05-01T10:00:00Z</timestamp><severity>7.5</severity></report></last_report>
  </task>
  <task id="t2"><name>Daily</name><status>Running</status><progress>42</progress></task>
</get_tasks_response>`
		case "start_task":
			return `<start_task_response status="202" status_text="OK, request submitted"><report_id>r2</report_id></start_task_response>`
		case "stop_task":
			return `<stop_task_response status="202" status_text="OK, request submitted"/>`
		case "delete_task":
			if req.attr("ultimate") != "1" {
				return `<delete_task_response status="400" status_text="ultimate required"/>`
			}
			return `<delete_task_response status="200" status_text="OK"/>`
		case "create_task":
			return `<create_task_response status="201" status_text="OK, resource created" id="t3"/>`
		}
		return `<unknown_response status="400"/>`
	})
	ctx := context.Background()

	tasks, err := g.GetTasks(ctx, commands.GetTasksArgs{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "Weekly", tasks[0].Name)
	assert.Equal(t, "tg1", tasks[0].Target.ID)
	assert.Equal(t, "Full and fast", tasks[0].Config.Name)
	require.NotNil(t, tasks[0].LastReport)
	assert.Equal(t, "r1", tasks[0].LastReport.ID)
	assert.Equal(t, "7.5", tasks[0].LastReport.Severity)
	assert.Equal(t, 42, tasks[1].Progress)
	assert.Nil(t, tasks[1].LastReport)

	task, err := g.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Weekly", task.Name)

	_, err = g.GetTask(ctx, "missing")
	assert.Error(t, err)

	reportID, err := g.StartTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "r2", reportID)

	require.NoError(t, g.StopTask(ctx, "t1"))
	require.NoError(t, g.DeleteTask(ctx, "t1", true))
	assert.Error(t, g.DeleteTask(ctx, "t1", false))

	id, err := g.CreateTask(ctx, commands.CreateTaskArgs{
		Name: "New", ConfigID: "c1", TargetID: "tg1", ScannerID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "t3", id)
}

func TestGMPValidationFailsBeforeSending(t *testing.T) {
	g := startManager(t, func(req managerRequest) string {
		t.Errorf("unexpected command %s", req.XMLName.Local)
		return `<x status="500"/>`
	})
	ctx := context.Background()

	_, err := g.StartTask(ctx, "")
	assert.True(t, gvmerrors.IsCode(err, gvmerrors.CodeRequiredArgument))

	_, err = g.CreateTarget(ctx, commands.CreateTargetArgs{Hosts: []string{"10.0.0.1"}})
	assert.True(t, gvmerrors.IsCode(err, gvmerrors.CodeRequiredArgument))

	_, err = g.GetInfo(ctx, commands.GetInfoArgs{Type: "BOGUS"})
	assert.True(t, gvmerrors.IsCode(err, gvmerrors.CodeInvalidArgument))

	assert.Equal(t, protocol.StateInitial, g.Session().State())
}

func TestGMPReportsAndTargets(t *testing.T) {
	g := startManager(t, func(req managerRequest) string {
		switch req.XMLName.Local {
		case "get_reports":
			if id := req.attr("report_id"); id != "" {
				return `<get_reports_response status="200" status_text="OK"><report id="` + id + `" format_id="a994b278-1f62-11e1-96ac-406186ea4fc5"/></get_reports_response>`
			}
			return `<get_reports_response status="200" status_text="OK">
  <report id="r1">
    <name>2024-05-01T10:00:00Z</name>
    <task id="t1"><name>Weekly</name></task>
    <report id="r1">
      <scan_run_status>Done</scan_run_status>
      <scan_start>2024-05-01T10:00:00Z</scan_start>
      <scan_end>2024-05-01T11:00:00Z</scan_end>
      <severity><full>9.8</full><filtered>9.8</filtered></severity>
    </report>
  </report>
</get_reports_response>`
		case "create_target":
			return `<create_target_response status="201" status_text="OK, resource created" id="tg9"/>`
		case "delete_target":
			return `<delete_target_response status="200" status_text="OK"/>`
		case "get_port_lists":
			return `<get_port_lists_response status="200" status_text="OK">
  <port_list id="p1"><name>All IANA assigned TCP</name><port_count><all>5836</all><tcp>5836</tcp><udp>0</udp></port_count></port_list>
</get_port_lists_response>`
		}
		return `<unknown_response status="400"/>`
	})
	ctx := context.Background()

	reports, err := g.GetReports(ctx, commands.GetReportsArgs{})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "r1", reports[0].ID)
	assert.Equal(t, "t1", reports[0].Task.ID)
	assert.Equal(t, "Done", reports[0].ScanRunStatus)
	assert.Equal(t, "9.8", reports[0].Severity)
	assert.Equal(t, "2024-05-01T11:00:00Z", reports[0].ScanEnd)

	resp, err := g.GetReport(ctx, commands.GetReportArgs{ReportID: "r1"})
	require.NoError(t, err)
	root, err := resp.XML()
	require.NoError(t, err)
	assert.Equal(t, "r1", root.FindElement("report").SelectAttrValue("id", ""))

	id, err := g.CreateTarget(ctx, commands.CreateTargetArgs{Name: "LAN", Hosts: []string{"10.0.0.0/24"}})
	require.NoError(t, err)
	assert.Equal(t, "tg9", id)
	require.NoError(t, g.DeleteTarget(ctx, "tg9", false))

	lists, err := g.GetPortLists(ctx, commands.GetPortListsArgs{})
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, 5836, lists[0].TCPCount)
	assert.Equal(t, 0, lists[0].UDPCount)
}

func TestGMPUsersTicketsAndInfo(t *testing.T) {
	g := startManager(t, func(req managerRequest) string {
		switch req.XMLName.Local {
		case "create_user":
			return `<create_user_response status="201" status_text="OK, resource created" id="u1"/>`
		case "delete_user":
			return `<delete_user_response status="200" status_text="OK"/>`
		case "create_ticket":
			return `<create_ticket_response status="201" status_text="OK, resource created"/>`
		case "get_info":
			return `<get_info_response status="200" status_text="OK"><info id="CVE-2024-0001"><name>CVE-2024-0001</name></info></get_info_response>`
		case "get_nvts":
			return `<get_nvts_response status="200" status_text="OK"><nvt oid="1.3.6.1.4.1.25623.1.0.10330"/></get_nvts_response>`
		case "modify_config":
			return `<modify_config_response status="200" status_text="OK"/>`
		}
		return `<unknown_response status="400"/>`
	})
	ctx := context.Background()

	id, err := g.CreateUser(ctx, commands.CreateUserArgs{Name: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
	require.NoError(t, g.DeleteUser(ctx, commands.DeleteUserArgs{UserID: "u1"}))

	// A create reply without an id is an error.
	_, err = g.CreateTicket(ctx, commands.CreateTicketArgs{ResultID: "r", AssignedUserID: "u1", Note: "fix"})
	assert.Error(t, err)

	resp, err := g.GetInfo(ctx, commands.GetInfoArgs{Type: commands.InfoTypeCVE, InfoID: "CVE-2024-0001"})
	require.NoError(t, err)
	assert.Equal(t, "get_info_response", resp.Name())

	resp, err = g.GetNvts(ctx, commands.GetNvtsArgs{})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	require.NoError(t, g.ModifyScanConfigPreference(ctx, commands.ModifyConfigPreferenceArgs{
		ConfigID: "c1", Name: "scanner:max_hosts", Value: []byte("20"),
	}))
}
