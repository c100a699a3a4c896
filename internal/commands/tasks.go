package commands

// ListArgs are the arguments shared by list commands.
type ListArgs struct {
	Filter   string `arg:"filter"`
	FilterID string `arg:"filt_id"`
	Trash    bool   `arg:"trash"`
	Details  bool   `arg:"details"`
}

func (a ListArgs) apply(cmd *Command) *Command {
	return cmd.
		attr("filter", a.Filter).
		attr("filt_id", a.FilterID).
		flag("trash", a.Trash).
		flag("details", a.Details)
}

// TaskIDArgs identify a single task.
type TaskIDArgs struct {
	TaskID string `arg:"task_id" validate:"required"`
}

// GetTasksArgs are the arguments of GetTasks.
type GetTasksArgs struct {
	ListArgs
	SchedulesOnly    bool `arg:"schedules_only"`
	IgnorePagination bool `arg:"ignore_pagination"`
}

// GetTasks lists tasks.
func GetTasks(args GetTasksArgs) *Command {
	return args.apply(newCommand("get_tasks")).
		flag("schedules_only", args.SchedulesOnly).
		flag("ignore_pagination", args.IgnorePagination)
}

// GetTask requests one task with details.
func GetTask(args TaskIDArgs) (*Command, error) {
	if err := check("get_task", args); err != nil {
		return nil, err
	}
	return newCommand("get_tasks").attr("task_id", args.TaskID).flag("details", true), nil
}

// CreateTaskArgs are the arguments of CreateTask.
type CreateTaskArgs struct {
	Name        string            `arg:"name" validate:"required"`
	ConfigID    string            `arg:"config_id" validate:"required"`
	TargetID    string            `arg:"target_id" validate:"required"`
	ScannerID   string            `arg:"scanner_id" validate:"required"`
	Comment     string            `arg:"comment"`
	ScheduleID  string            `arg:"schedule_id"`
	AlertIDs    []string          `arg:"alert_ids"`
	Alterable   bool              `arg:"alterable"`
	Preferences map[string]string `arg:"preferences"`
}

// CreateTask creates a scan task.
func CreateTask(args CreateTaskArgs) (*Command, error) {
	if err := check("create_task", args); err != nil {
		return nil, err
	}

	cmd := newCommand("create_task")
	root := cmd.root
	child(root, "name", args.Name)
	child(root, "usage_type", "scan")
	child(root, "comment", args.Comment)
	ref(root, "config", args.ConfigID)
	ref(root, "target", args.TargetID)
	ref(root, "scanner", args.ScannerID)
	ref(root, "schedule", args.ScheduleID)
	for _, id := range args.AlertIDs {
		ref(root, "alert", id)
	}
	if args.Alterable {
		child(root, "alterable", "1")
	}

	if len(args.Preferences) > 0 {
		prefs := root.CreateElement("preferences")
		for _, name := range sortedKeys(args.Preferences) {
			pref := prefs.CreateElement("preference")
			child(pref, "scanner_name", name)
			pref.CreateElement("value").SetText(args.Preferences[name])
		}
	}
	return cmd, nil
}

// StartTask starts a task.
func StartTask(args TaskIDArgs) (*Command, error) {
	return taskCommand("start_task", args)
}

// StopTask stops a running task.
func StopTask(args TaskIDArgs) (*Command, error) {
	return taskCommand("stop_task", args)
}

// ResumeTask resumes a stopped task.
func ResumeTask(args TaskIDArgs) (*Command, error) {
	return taskCommand("resume_task", args)
}

func taskCommand(name string, args TaskIDArgs) (*Command, error) {
	if err := check(name, args); err != nil {
		return nil, err
	}
	return newCommand(name).attr("task_id", args.TaskID), nil
}

// DeleteTaskArgs are the arguments of DeleteTask.
type DeleteTaskArgs struct {
	TaskID   string `arg:"task_id" validate:"required"`
	Ultimate bool   `arg:"ultimate"`
}

// DeleteTask moves a task to the trashcan, or removes it for good if
// Ultimate is set.
func DeleteTask(args DeleteTaskArgs) (*Command, error) {
	if err := check("delete_task", args); err != nil {
		return nil, err
	}
	return newCommand("delete_task").
		attr("task_id", args.TaskID).
		attr("ultimate", boolString(args.Ultimate)), nil
}
