package commands

// GetInfoArgs are the arguments of GetInfo. Without InfoID the command
// lists entries matching Filter.
type GetInfoArgs struct {
	Type    InfoType `arg:"info_type" validate:"required,enum"`
	InfoID  string   `arg:"info_id"`
	Name    string   `arg:"name"`
	Filter  string   `arg:"filter"`
	Details bool     `arg:"details"`
}

// GetInfo queries the SecInfo databases: CVE, CPE, NVT, CERT-Bund and
// DFN-CERT advisories and OVAL definitions.
func GetInfo(args GetInfoArgs) (*Command, error) {
	if err := check("get_info", args); err != nil {
		return nil, err
	}
	return newCommand("get_info").
		attr("type", string(args.Type)).
		attr("info_id", args.InfoID).
		attr("name", args.Name).
		attr("filter", args.Filter).
		flag("details", args.Details), nil
}

// GetNvtsArgs are the arguments of GetNvts.
type GetNvtsArgs struct {
	NvtOID      string    `arg:"nvt_oid"`
	Family      string    `arg:"family"`
	ConfigID    string    `arg:"config_id"`
	Details     bool      `arg:"details"`
	Preferences bool      `arg:"preferences"`
	SortField   string    `arg:"sort_field"`
	SortOrder   SortOrder `arg:"sort_order" validate:"omitempty,enum"`
}

// GetNvts lists vulnerability tests known to the manager.
func GetNvts(args GetNvtsArgs) (*Command, error) {
	if err := check("get_nvts", args); err != nil {
		return nil, err
	}
	return newCommand("get_nvts").
		attr("nvt_oid", args.NvtOID).
		attr("family", args.Family).
		attr("config_id", args.ConfigID).
		flag("details", args.Details).
		flag("preferences", args.Preferences).
		attr("sort_field", args.SortField).
		attr("sort_order", string(args.SortOrder)), nil
}
