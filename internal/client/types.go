package client

import "encoding/xml"

// Version is the reply of get_version.
type Version struct {
	XMLName xml.Name `xml:"get_version_response"`
	Version string   `xml:"version"`
}

// AuthInfo describes the authenticated user.
type AuthInfo struct {
	XMLName  xml.Name `xml:"authenticate_response"`
	Role     string   `xml:"role"`
	Timezone string   `xml:"timezone"`
}

// Ref is a reference to another entity by id.
type Ref struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name"`
}

// Task is a scan task as listed by get_tasks.
type Task struct {
	ID         string   `xml:"id,attr"`
	Name       string   `xml:"name"`
	Comment    string   `xml:"comment"`
	Status     string   `xml:"status"`
	Progress   int      `xml:"progress"`
	Target     Ref      `xml:"target"`
	Config     Ref      `xml:"config"`
	Scanner    Ref      `xml:"scanner"`
	LastReport *TaskRef `xml:"last_report>report"`
}

// TaskRef points at a report of a task.
type TaskRef struct {
	ID        string `xml:"id,attr"`
	Timestamp string `xml:"timestamp"`
	Severity  string `xml:"severity"`
}

type getTasksResponse struct {
	XMLName xml.Name `xml:"get_tasks_response"`
	Tasks   []Task   `xml:"task"`
}

// Report is a report as listed by get_reports. Severity is kept as the
// manager renders it.
type Report struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name"`
	Task          Ref    `xml:"task"`
	ScanRunStatus string `xml:"report>scan_run_status"`
	Severity      string `xml:"report>severity>full"`
	ScanStart     string `xml:"report>scan_start"`
	ScanEnd       string `xml:"report>scan_end"`
}

type getReportsResponse struct {
	XMLName xml.Name `xml:"get_reports_response"`
	Reports []Report `xml:"report"`
}

// PortList is a named set of port ranges.
type PortList struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name"`
	Comment  string `xml:"comment"`
	TCPCount int    `xml:"port_count>tcp"`
	UDPCount int    `xml:"port_count>udp"`
}

type getPortListsResponse struct {
	XMLName   xml.Name   `xml:"get_port_lists_response"`
	PortLists []PortList `xml:"port_list"`
}

// createResponse covers the create_* replies, which carry the new id as
// an attribute.
type createResponse struct {
	ID string `xml:"id,attr"`
}

type startTaskResponse struct {
	XMLName  xml.Name `xml:"start_task_response"`
	ReportID string   `xml:"report_id"`
}
