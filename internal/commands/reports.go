package commands

// GetReportsArgs are the arguments of GetReports.
type GetReportsArgs struct {
	Filter           string `arg:"filter"`
	FilterID         string `arg:"filt_id"`
	NoteDetails      bool   `arg:"note_details"`
	OverrideDetails  bool   `arg:"override_details"`
	IgnorePagination bool   `arg:"ignore_pagination"`
	Details          bool   `arg:"details"`
}

// GetReports lists reports.
func GetReports(args GetReportsArgs) *Command {
	return newCommand("get_reports").
		attr("filter", args.Filter).
		attr("filt_id", args.FilterID).
		flag("note_details", args.NoteDetails).
		flag("override_details", args.OverrideDetails).
		flag("ignore_pagination", args.IgnorePagination).
		flag("details", args.Details)
}

// GetReportArgs are the arguments of GetReport.
type GetReportArgs struct {
	ReportID         string `arg:"report_id" validate:"required"`
	FormatID         string `arg:"format_id" validate:"omitempty,uuid"`
	Filter           string `arg:"filter"`
	IgnorePagination bool   `arg:"ignore_pagination"`
}

// GetReport requests one report with its results. Without FormatID the
// report is returned as XML.
func GetReport(args GetReportArgs) (*Command, error) {
	if err := check("get_report", args); err != nil {
		return nil, err
	}
	return newCommand("get_reports").
		attr("report_id", args.ReportID).
		attr("format_id", args.FormatID).
		attr("filter", args.Filter).
		flag("ignore_pagination", args.IgnorePagination).
		flag("details", true), nil
}
