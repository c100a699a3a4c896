package client

import (
	"context"

	"github.com/anstrom/gvmclient/internal/commands"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
	"github.com/anstrom/gvmclient/internal/protocol"
)

// GMP runs typed management operations over a Session. Every operation
// fails with *protocol.StatusError when the manager rejects the command.
type GMP struct {
	session *Session
}

// NewGMP wraps s.
func NewGMP(s *Session) *GMP {
	return &GMP{session: s}
}

// Session returns the underlying session.
func (g *GMP) Session() *Session {
	return g.session
}

// call sends a command built by a fallible builder and checks the reply
// status.
func (g *GMP) call(ctx context.Context, cmd *commands.Command, buildErr error) (*protocol.Response, error) {
	if buildErr != nil {
		return nil, buildErr
	}
	resp, err := g.session.Do(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return resp.RaiseForStatus()
}

func (g *GMP) decode(ctx context.Context, cmd *commands.Command, buildErr error, v any) error {
	resp, err := g.call(ctx, cmd, buildErr)
	if err != nil {
		return err
	}
	return resp.Decode(v)
}

func (g *GMP) createdID(ctx context.Context, cmd *commands.Command, buildErr error) (string, error) {
	var created createResponse
	if err := g.decode(ctx, cmd, buildErr, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", gvmerrors.New(gvmerrors.CodeUnknown, cmd.Command()+" reply carries no id")
	}
	return created.ID, nil
}

// GetVersion returns the protocol version of the manager. It does not
// need authentication.
func (g *GMP) GetVersion(ctx context.Context) (*Version, error) {
	var v Version
	if err := g.decode(ctx, commands.GetVersion(), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Authenticate logs the session in. The manager binds the credentials to
// the connection, so a new session must authenticate again.
func (g *GMP) Authenticate(ctx context.Context, username, password string) (*AuthInfo, error) {
	cmd, err := commands.Authenticate(commands.AuthenticateArgs{Username: username, Password: password})
	resp, err := g.call(ctx, cmd, err)
	if err != nil {
		return nil, err
	}
	var info AuthInfo
	if err := resp.Decode(&info); err != nil {
		return nil, err
	}
	status, _ := resp.StatusCode()
	g.session.logger.InfoCommand("authenticated", "authenticate", status, "user", username, "role", info.Role)
	return &info, nil
}

// GetTasks lists tasks.
func (g *GMP) GetTasks(ctx context.Context, args commands.GetTasksArgs) ([]Task, error) {
	var out getTasksResponse
	if err := g.decode(ctx, commands.GetTasks(args), nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// GetTask returns one task.
func (g *GMP) GetTask(ctx context.Context, taskID string) (*Task, error) {
	cmd, err := commands.GetTask(commands.TaskIDArgs{TaskID: taskID})
	var out getTasksResponse
	if err := g.decode(ctx, cmd, err, &out); err != nil {
		return nil, err
	}
	if len(out.Tasks) == 0 {
		return nil, gvmerrors.New(gvmerrors.CodeUnknown, "task "+taskID+" not found in reply")
	}
	return &out.Tasks[0], nil
}

// CreateTask creates a task and returns its id.
func (g *GMP) CreateTask(ctx context.Context, args commands.CreateTaskArgs) (string, error) {
	cmd, err := commands.CreateTask(args)
	return g.createdID(ctx, cmd, err)
}

// StartTask starts a task and returns the id of the report it writes.
func (g *GMP) StartTask(ctx context.Context, taskID string) (string, error) {
	cmd, err := commands.StartTask(commands.TaskIDArgs{TaskID: taskID})
	var out startTaskResponse
	if err := g.decode(ctx, cmd, err, &out); err != nil {
		return "", err
	}
	return out.ReportID, nil
}

// StopTask stops a running task.
func (g *GMP) StopTask(ctx context.Context, taskID string) error {
	cmd, err := commands.StopTask(commands.TaskIDArgs{TaskID: taskID})
	_, err = g.call(ctx, cmd, err)
	return err
}

// DeleteTask deletes a task.
func (g *GMP) DeleteTask(ctx context.Context, taskID string, ultimate bool) error {
	cmd, err := commands.DeleteTask(commands.DeleteTaskArgs{TaskID: taskID, Ultimate: ultimate})
	_, err = g.call(ctx, cmd, err)
	return err
}

// GetReports lists reports.
func (g *GMP) GetReports(ctx context.Context, args commands.GetReportsArgs) ([]Report, error) {
	var out getReportsResponse
	if err := g.decode(ctx, commands.GetReports(args), nil, &out); err != nil {
		return nil, err
	}
	return out.Reports, nil
}

// GetReport fetches one report. The reply is returned as is; reports in
// non-XML formats are embedded base64 encoded.
func (g *GMP) GetReport(ctx context.Context, args commands.GetReportArgs) (*protocol.Response, error) {
	cmd, err := commands.GetReport(args)
	return g.call(ctx, cmd, err)
}

// CreateTarget creates a target and returns its id.
func (g *GMP) CreateTarget(ctx context.Context, args commands.CreateTargetArgs) (string, error) {
	cmd, err := commands.CreateTarget(args)
	return g.createdID(ctx, cmd, err)
}

// DeleteTarget deletes a target.
func (g *GMP) DeleteTarget(ctx context.Context, targetID string, ultimate bool) error {
	cmd, err := commands.DeleteTarget(commands.DeleteTargetArgs{TargetID: targetID, Ultimate: ultimate})
	_, err = g.call(ctx, cmd, err)
	return err
}

// GetPortLists lists port lists.
func (g *GMP) GetPortLists(ctx context.Context, args commands.GetPortListsArgs) ([]PortList, error) {
	var out getPortListsResponse
	if err := g.decode(ctx, commands.GetPortLists(args), nil, &out); err != nil {
		return nil, err
	}
	return out.PortLists, nil
}

// CreateUser creates a user and returns its id.
func (g *GMP) CreateUser(ctx context.Context, args commands.CreateUserArgs) (string, error) {
	cmd, err := commands.CreateUser(args)
	return g.createdID(ctx, cmd, err)
}

// DeleteUser deletes a user.
func (g *GMP) DeleteUser(ctx context.Context, args commands.DeleteUserArgs) error {
	cmd, err := commands.DeleteUser(args)
	_, err = g.call(ctx, cmd, err)
	return err
}

// GetInfo queries the SecInfo databases.
func (g *GMP) GetInfo(ctx context.Context, args commands.GetInfoArgs) (*protocol.Response, error) {
	cmd, err := commands.GetInfo(args)
	return g.call(ctx, cmd, err)
}

// GetNvts lists vulnerability tests.
func (g *GMP) GetNvts(ctx context.Context, args commands.GetNvtsArgs) (*protocol.Response, error) {
	cmd, err := commands.GetNvts(args)
	return g.call(ctx, cmd, err)
}

// CreateTicket opens a ticket and returns its id.
func (g *GMP) CreateTicket(ctx context.Context, args commands.CreateTicketArgs) (string, error) {
	cmd, err := commands.CreateTicket(args)
	return g.createdID(ctx, cmd, err)
}

// ModifyScanConfigPreference sets or resets a scan config preference.
func (g *GMP) ModifyScanConfigPreference(ctx context.Context, args commands.ModifyConfigPreferenceArgs) error {
	cmd, err := commands.ModifyScanConfigPreference(args)
	_, err = g.call(ctx, cmd, err)
	return err
}
