package commands

// GetVersion requests the protocol version. It needs no authentication.
func GetVersion() *Command {
	return newCommand("get_version")
}

// AuthenticateArgs are the arguments of Authenticate.
type AuthenticateArgs struct {
	Username string `arg:"username" validate:"required"`
	Password string `arg:"password" validate:"required"`
}

// Authenticate builds the login command. A session must send it before
// any command other than get_version.
func Authenticate(args AuthenticateArgs) (*Command, error) {
	if err := check("authenticate", args); err != nil {
		return nil, err
	}

	cmd := newCommand("authenticate")
	credentials := cmd.root.CreateElement("credentials")
	child(credentials, "username", args.Username)
	child(credentials, "password", args.Password)
	return cmd, nil
}

// DescribeAuth requests the authentication configuration.
func DescribeAuth() *Command {
	return newCommand("describe_auth")
}

// HelpArgs are the arguments of Help.
type HelpArgs struct {
	Format HelpFormat `arg:"format" validate:"omitempty,enum"`
	Brief  bool       `arg:"brief"`
}

// Help requests the command overview or the protocol schema.
func Help(args HelpArgs) (*Command, error) {
	if err := check("help", args); err != nil {
		return nil, err
	}

	cmd := newCommand("help").attr("format", string(args.Format))
	if args.Brief {
		cmd.attr("type", "brief")
	}
	return cmd, nil
}
