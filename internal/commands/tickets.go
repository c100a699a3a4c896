package commands

// CreateTicketArgs are the arguments of CreateTicket.
type CreateTicketArgs struct {
	ResultID       string `arg:"result_id" validate:"required"`
	AssignedUserID string `arg:"assigned_to_user_id" validate:"required"`
	Note           string `arg:"note" validate:"required"`
	Comment        string `arg:"comment"`
}

// CreateTicket opens a remediation ticket for a scan result.
func CreateTicket(args CreateTicketArgs) (*Command, error) {
	if err := check("create_ticket", args); err != nil {
		return nil, err
	}

	cmd := newCommand("create_ticket")
	root := cmd.root
	ref(root, "result", args.ResultID)
	ref(root.CreateElement("assigned_to"), "user", args.AssignedUserID)
	child(root, "open_note", args.Note)
	child(root, "comment", args.Comment)
	return cmd, nil
}

// ModifyTicketArgs are the arguments of ModifyTicket. Changing the status
// needs the matching note.
type ModifyTicketArgs struct {
	TicketID       string       `arg:"ticket_id" validate:"required"`
	Status         TicketStatus `arg:"status" validate:"omitempty,enum"`
	Note           string       `arg:"note" validate:"required_with=Status"`
	AssignedUserID string       `arg:"assigned_to_user_id"`
	Comment        string       `arg:"comment"`
}

// ModifyTicket changes a ticket's status, assignee or comment.
func ModifyTicket(args ModifyTicketArgs) (*Command, error) {
	if err := check("modify_ticket", args); err != nil {
		return nil, err
	}

	cmd := newCommand("modify_ticket").attr("ticket_id", args.TicketID)
	root := cmd.root
	if args.Status != "" {
		child(root, "status", string(args.Status))
		child(root, ticketNoteElement(args.Status), args.Note)
	}
	if args.AssignedUserID != "" {
		ref(root.CreateElement("assigned_to"), "user", args.AssignedUserID)
	}
	child(root, "comment", args.Comment)
	return cmd, nil
}

func ticketNoteElement(status TicketStatus) string {
	switch status {
	case TicketStatusFixed:
		return "fixed_note"
	case TicketStatusClosed:
		return "closed_note"
	default:
		return "open_note"
	}
}
