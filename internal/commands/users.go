package commands

import "strings"

// CreateUserArgs are the arguments of CreateUser.
type CreateUserArgs struct {
	Name        string     `arg:"name" validate:"required"`
	Password    string     `arg:"password"`
	RoleIDs     []string   `arg:"role_ids"`
	Hosts       []string   `arg:"hosts"`
	HostsAllow  bool       `arg:"hosts_allow"`
	Ifaces      []string   `arg:"ifaces"`
	IfacesAllow bool       `arg:"ifaces_allow"`
	AuthSource  AuthSource `arg:"auth_source" validate:"omitempty,enum"`
}

// CreateUser creates a user. With an LDAP or RADIUS auth source the
// password is checked remotely and may be left empty.
func CreateUser(args CreateUserArgs) (*Command, error) {
	if err := check("create_user", args); err != nil {
		return nil, err
	}

	cmd := newCommand("create_user")
	root := cmd.root
	child(root, "name", args.Name)
	child(root, "password", args.Password)

	if len(args.Hosts) > 0 {
		hosts := root.CreateElement("hosts")
		hosts.CreateAttr("allow", boolString(args.HostsAllow))
		hosts.SetText(strings.Join(args.Hosts, ","))
	}
	if len(args.Ifaces) > 0 {
		ifaces := root.CreateElement("ifaces")
		ifaces.CreateAttr("allow", boolString(args.IfacesAllow))
		ifaces.SetText(strings.Join(args.Ifaces, ","))
	}
	for _, id := range args.RoleIDs {
		ref(root, "role", id)
	}
	if args.AuthSource != "" {
		child(root.CreateElement("sources"), "source", string(args.AuthSource))
	}
	return cmd, nil
}

// DeleteUserArgs are the arguments of DeleteUser. The user is selected by
// id or by name; objects it owns move to the inheritor.
type DeleteUserArgs struct {
	UserID        string `arg:"user_id" validate:"required_without=Name"`
	Name          string `arg:"name"`
	InheritorID   string `arg:"inheritor_id"`
	InheritorName string `arg:"inheritor_name"`
}

// DeleteUser deletes a user.
func DeleteUser(args DeleteUserArgs) (*Command, error) {
	if err := check("delete_user", args); err != nil {
		return nil, err
	}
	return newCommand("delete_user").
		attr("user_id", args.UserID).
		attr("name", args.Name).
		attr("inheritor_id", args.InheritorID).
		attr("inheritor_name", args.InheritorName), nil
}
