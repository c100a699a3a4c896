package commands

import "strings"

// GetTargetsArgs are the arguments of GetTargets.
type GetTargetsArgs struct {
	ListArgs
	Tasks bool `arg:"tasks"`
}

// GetTargets lists targets.
func GetTargets(args GetTargetsArgs) *Command {
	return args.apply(newCommand("get_targets")).flag("tasks", args.Tasks)
}

// CredentialRef points a target at a stored credential.
type CredentialRef struct {
	ID   string `arg:"id" validate:"required"`
	Port int    `arg:"port" validate:"omitempty,min=1,max=65535"`
}

// CreateTargetArgs are the arguments of CreateTarget. Hosts and
// AssetHostsFilter are alternatives; one of them is needed.
type CreateTargetArgs struct {
	Name                string         `arg:"name" validate:"required"`
	Hosts               []string       `arg:"hosts" validate:"required_without=AssetHostsFilter"`
	AssetHostsFilter    string         `arg:"asset_hosts_filter"`
	ExcludeHosts        []string       `arg:"exclude_hosts"`
	Comment             string         `arg:"comment"`
	PortListID          string         `arg:"port_list_id"`
	PortRange           string         `arg:"port_range"`
	AliveTest           AliveTest      `arg:"alive_test" validate:"omitempty,enum"`
	ReverseLookupOnly   bool           `arg:"reverse_lookup_only"`
	ReverseLookupUnify  bool           `arg:"reverse_lookup_unify"`
	SSHCredential       *CredentialRef `arg:"ssh_credential"`
	SMBCredentialID     string         `arg:"smb_credential_id"`
	ESXiCredentialID    string         `arg:"esxi_credential_id"`
	SNMPCredentialID    string         `arg:"snmp_credential_id"`
	AllowSimultaneousIP bool           `arg:"allow_simultaneous_ips"`
}

// CreateTarget creates a scan target.
func CreateTarget(args CreateTargetArgs) (*Command, error) {
	if err := check("create_target", args); err != nil {
		return nil, err
	}

	cmd := newCommand("create_target")
	root := cmd.root
	child(root, "name", args.Name)

	if args.AssetHostsFilter != "" {
		root.CreateElement("asset_hosts").CreateAttr("filter", args.AssetHostsFilter)
	} else {
		child(root, "hosts", strings.Join(args.Hosts, ","))
	}
	child(root, "exclude_hosts", strings.Join(args.ExcludeHosts, ","))
	child(root, "comment", args.Comment)
	ref(root, "port_list", args.PortListID)
	child(root, "port_range", args.PortRange)
	child(root, "alive_tests", string(args.AliveTest))

	if args.ReverseLookupOnly {
		child(root, "reverse_lookup_only", "1")
	}
	if args.ReverseLookupUnify {
		child(root, "reverse_lookup_unify", "1")
	}
	if args.AllowSimultaneousIP {
		child(root, "allow_simultaneous_ips", "1")
	}

	if args.SSHCredential != nil {
		ssh := ref(root, "ssh_credential", args.SSHCredential.ID)
		if args.SSHCredential.Port != 0 {
			child(ssh, "port", itoa(args.SSHCredential.Port))
		}
	}
	ref(root, "smb_credential", args.SMBCredentialID)
	ref(root, "esxi_credential", args.ESXiCredentialID)
	ref(root, "snmp_credential", args.SNMPCredentialID)

	return cmd, nil
}

// DeleteTargetArgs are the arguments of DeleteTarget.
type DeleteTargetArgs struct {
	TargetID string `arg:"target_id" validate:"required"`
	Ultimate bool   `arg:"ultimate"`
}

// DeleteTarget deletes a target.
func DeleteTarget(args DeleteTargetArgs) (*Command, error) {
	if err := check("delete_target", args); err != nil {
		return nil, err
	}
	return newCommand("delete_target").
		attr("target_id", args.TargetID).
		attr("ultimate", boolString(args.Ultimate)), nil
}

// GetPortListsArgs are the arguments of GetPortLists.
type GetPortListsArgs struct {
	ListArgs
	Targets bool `arg:"targets"`
}

// GetPortLists lists port lists.
func GetPortLists(args GetPortListsArgs) *Command {
	return args.apply(newCommand("get_port_lists")).flag("targets", args.Targets)
}
