package commands

import "encoding/base64"

// ModifyConfigPreferenceArgs are the arguments of ModifyScanConfigPreference.
type ModifyConfigPreferenceArgs struct {
	ConfigID string `arg:"config_id" validate:"required"`
	NvtOID   string `arg:"nvt_oid"`
	Name     string `arg:"name" validate:"required"`
	Value    []byte `arg:"value"`
}

// ModifyScanConfigPreference sets a scanner or NVT preference of a scan
// config. The manager expects preference values base64 encoded; a nil
// value resets the preference.
func ModifyScanConfigPreference(args ModifyConfigPreferenceArgs) (*Command, error) {
	if err := check("modify_config", args); err != nil {
		return nil, err
	}

	cmd := newCommand("modify_config").attr("config_id", args.ConfigID)
	pref := cmd.root.CreateElement("preference")
	if args.NvtOID != "" {
		pref.CreateElement("nvt").CreateAttr("oid", args.NvtOID)
	}
	child(pref, "name", args.Name)
	if args.Value != nil {
		pref.CreateElement("value").SetText(base64.StdEncoding.EncodeToString(args.Value))
	}
	return cmd, nil
}
