package commands

import "slices"

// AliveTest selects how a target's hosts are checked before scanning.
type AliveTest string

const (
	AliveTestScanConfigDefault        AliveTest = "Scan Config Default"
	AliveTestICMPPing                 AliveTest = "ICMP Ping"
	AliveTestTCPAckServicePing        AliveTest = "TCP-ACK Service Ping"
	AliveTestTCPSynServicePing        AliveTest = "TCP-SYN Service Ping"
	AliveTestARPPing                  AliveTest = "ARP Ping"
	AliveTestICMPAndTCPAckServicePing AliveTest = "ICMP & TCP-ACK Service Ping"
	AliveTestICMPAndARPPing           AliveTest = "ICMP & ARP Ping"
	AliveTestTCPAckServiceAndARPPing  AliveTest = "TCP-ACK Service & ARP Ping"
	AliveTestICMPTCPAckServiceAndARP  AliveTest = "ICMP, TCP-ACK Service & ARP Ping"
	AliveTestConsiderAlive            AliveTest = "Consider Alive"
)

var aliveTests = []string{
	string(AliveTestScanConfigDefault),
	string(AliveTestICMPPing),
	string(AliveTestTCPAckServicePing),
	string(AliveTestTCPSynServicePing),
	string(AliveTestARPPing),
	string(AliveTestICMPAndTCPAckServicePing),
	string(AliveTestICMPAndARPPing),
	string(AliveTestTCPAckServiceAndARPPing),
	string(AliveTestICMPTCPAckServiceAndARP),
	string(AliveTestConsiderAlive),
}

func (a AliveTest) valid() bool      { return slices.Contains(aliveTests, string(a)) }
func (a AliveTest) values() []string { return aliveTests }

// AuthSource is where the manager checks a user's password.
type AuthSource string

const (
	AuthSourceFile   AuthSource = "file"
	AuthSourceLDAP   AuthSource = "ldap_connect"
	AuthSourceRADIUS AuthSource = "radius_connect"
)

var authSources = []string{string(AuthSourceFile), string(AuthSourceLDAP), string(AuthSourceRADIUS)}

func (a AuthSource) valid() bool      { return slices.Contains(authSources, string(a)) }
func (a AuthSource) values() []string { return authSources }

// InfoType selects the SecInfo database queried by get_info.
type InfoType string

const (
	InfoTypeCERTBund InfoType = "CERT_BUND_ADV"
	InfoTypeCPE      InfoType = "CPE"
	InfoTypeCVE      InfoType = "CVE"
	InfoTypeDFNCERT  InfoType = "DFN_CERT_ADV"
	InfoTypeOVALDef  InfoType = "OVALDEF"
	InfoTypeNVT      InfoType = "NVT"
)

var infoTypes = []string{
	string(InfoTypeCERTBund),
	string(InfoTypeCPE),
	string(InfoTypeCVE),
	string(InfoTypeDFNCERT),
	string(InfoTypeOVALDef),
	string(InfoTypeNVT),
}

func (i InfoType) valid() bool      { return slices.Contains(infoTypes, string(i)) }
func (i InfoType) values() []string { return infoTypes }

// TicketStatus is the life-cycle state of a remediation ticket.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "Open"
	TicketStatusFixed  TicketStatus = "Fixed"
	TicketStatusClosed TicketStatus = "Closed"
)

var ticketStatuses = []string{string(TicketStatusOpen), string(TicketStatusFixed), string(TicketStatusClosed)}

func (s TicketStatus) valid() bool      { return slices.Contains(ticketStatuses, string(s)) }
func (s TicketStatus) values() []string { return ticketStatuses }

// SortOrder orders list replies.
type SortOrder string

const (
	SortOrderAscending  SortOrder = "ascending"
	SortOrderDescending SortOrder = "descending"
)

var sortOrders = []string{string(SortOrderAscending), string(SortOrderDescending)}

func (s SortOrder) valid() bool      { return slices.Contains(sortOrders, string(s)) }
func (s SortOrder) values() []string { return sortOrders }

// HelpFormat selects the output of the help command.
type HelpFormat string

const (
	HelpFormatHTML HelpFormat = "html"
	HelpFormatRNC  HelpFormat = "rnc"
	HelpFormatText HelpFormat = "text"
	HelpFormatXML  HelpFormat = "xml"
)

var helpFormats = []string{string(HelpFormatHTML), string(HelpFormatRNC), string(HelpFormatText), string(HelpFormatXML)}

func (f HelpFormat) valid() bool      { return slices.Contains(helpFormats, string(f)) }
func (f HelpFormat) values() []string { return helpFormats }

// Report format ids shipped with the manager.
const (
	ReportFormatXML = "a994b278-1f62-11e1-96ac-406186ea4fc5"
	ReportFormatTXT = "a3810a62-1f62-11e1-9219-406186ea4fc5"
	ReportFormatCSV = "c1645568-627a-11e3-a660-406186ea4fc5"
	ReportFormatPDF = "c402cc3e-b531-11e1-9163-406186ea4fc5"
)
