package openvasd

// HealthProbe names a health endpoint.
type HealthProbe string

// Health endpoints of the daemon.
const (
	ProbeAlive   HealthProbe = "alive"
	ProbeReady   HealthProbe = "ready"
	ProbeStarted HealthProbe = "started"
)

// Action is a scan control action.
type Action string

// Scan actions.
const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
)

type actionRequest struct {
	Action Action `json:"action"`
}

// Phase is the life-cycle phase of a scan.
type Phase string

// Scan phases as reported by the status endpoint.
const (
	PhaseStored    Phase = "stored"
	PhaseRequested Phase = "requested"
	PhaseRunning   Phase = "running"
	PhaseStopped   Phase = "stopped"
	PhaseFailed    Phase = "failed"
	PhaseSucceeded Phase = "succeeded"
)

// Done reports whether the scan has reached a final phase.
func (p Phase) Done() bool {
	switch p {
	case PhaseStopped, PhaseFailed, PhaseSucceeded:
		return true
	default:
		return false
	}
}

// Scan is a scan definition.
type Scan struct {
	ScanID          string           `json:"scan_id,omitempty"`
	Target          Target           `json:"target"`
	ScanPreferences []ScanPreference `json:"scan_preferences,omitempty"`
	VTs             []VTSelection    `json:"vts"`
}

// Target describes the hosts and ports to scan.
type Target struct {
	Hosts              []string     `json:"hosts"`
	ExcludedHosts      []string     `json:"excluded_hosts,omitempty"`
	Ports              []PortRange  `json:"ports,omitempty"`
	Credentials        []Credential `json:"credentials,omitempty"`
	AliveTestPorts     []PortRange  `json:"alive_test_ports,omitempty"`
	AliveTestMethods   []string     `json:"alive_test_methods,omitempty"`
	ReverseLookupOnly  bool         `json:"reverse_lookup_only,omitempty"`
	ReverseLookupUnify bool         `json:"reverse_lookup_unify,omitempty"`
}

// PortRange is a set of port ranges for one protocol. An empty protocol
// means both TCP and UDP.
type PortRange struct {
	Protocol string  `json:"protocol,omitempty"`
	Range    []Range `json:"range"`
}

// Range is an inclusive port range. End is omitted for a single port.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end,omitempty"`
}

// Credential is a login used by authenticated checks.
type Credential struct {
	Service string          `json:"service"`
	Port    int             `json:"port,omitempty"`
	UP      *UserPassword   `json:"up,omitempty"`
	USK     *UserSSHKey     `json:"usk,omitempty"`
	SNMP    *SNMPCredential `json:"snmp,omitempty"`
}

// UserPassword is username and password authentication.
type UserPassword struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserSSHKey is SSH key authentication.
type UserSSHKey struct {
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	PrivateKey string `json:"private_key"`
}

// SNMPCredential holds SNMPv3 parameters.
type SNMPCredential struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	Community        string `json:"community,omitempty"`
	AuthAlgorithm    string `json:"auth_algorithm,omitempty"`
	PrivacyPassword  string `json:"privacy_password,omitempty"`
	PrivacyAlgorithm string `json:"privacy_algorithm,omitempty"`
}

// ScanPreference is a scanner setting for one scan.
type ScanPreference struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// VTSelection selects a VT and overrides its parameters.
type VTSelection struct {
	OID        string        `json:"oid"`
	Parameters []VTParameter `json:"parameters,omitempty"`
}

// VTParameter overrides one VT parameter.
type VTParameter struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// VT is a vulnerability test with its metadata.
type VT struct {
	OID      string         `json:"oid"`
	Name     string         `json:"name"`
	Filename string         `json:"filename"`
	Family   string         `json:"family"`
	Category string         `json:"category"`
	Tag      map[string]any `json:"tag,omitempty"`
	Refs     []VTRef        `json:"references,omitempty"`
	Deps     []string       `json:"dependencies,omitempty"`
}

// VTRef is an external reference such as a CVE id.
type VTRef struct {
	Class string `json:"class"`
	ID    string `json:"id"`
}

// ScanStatus is the progress of a scan. Times are Unix seconds.
type ScanStatus struct {
	StartTime *int64    `json:"start_time,omitempty"`
	EndTime   *int64    `json:"end_time,omitempty"`
	Status    Phase     `json:"status"`
	HostInfo  *HostInfo `json:"host_info,omitempty"`
}

// HostInfo counts hosts by scan progress.
type HostInfo struct {
	All      int `json:"all"`
	Excluded int `json:"excluded"`
	Dead     int `json:"dead"`
	Alive    int `json:"alive"`
	Queued   int `json:"queued"`
	Finished int `json:"finished"`
}

// Result is one finding or log entry of a scan.
type Result struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	IPAddress string `json:"ip_address,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
	OID       string `json:"oid,omitempty"`
	Port      *int   `json:"port,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ResultRange selects results by index.
type ResultRange struct {
	First int
	Last  int
}
