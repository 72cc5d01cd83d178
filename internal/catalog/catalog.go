package catalog

import "errors"

// VendorGate tags a milestone whose completion may be coupled to assigning a
// third-party facilitator.
type VendorGate string

const (
	GateNone                 VendorGate = ""
	GateDiscomNetMetering    VendorGate = "discom_net_metering"
	GateBankLoanFacilitation VendorGate = "bank_loan_facilitation"
)

// MilestoneDefinition is one static entry of the installation journey.
type MilestoneDefinition struct {
	Key          string     `json:"key"`
	OrdinalIndex int        `json:"ordinal_index"`
	Label        string     `json:"label"`
	Description  string     `json:"description"`
	VendorGate   VendorGate `json:"vendor_gate,omitempty"`
}

func (d MilestoneDefinition) Gated() bool {
	return d.VendorGate != GateNone
}

var ErrUnknownMilestone = errors.New("unknown_milestone")

// Catalog is the fixed, ordered journey. Immutable after construction.
type Catalog struct {
	entries []MilestoneDefinition
	byKey   map[string]MilestoneDefinition
}

// Default returns the shipped installation journey.
func Default() *Catalog {
	return New([]MilestoneDefinition{
		{Key: "site_survey", Label: "Site Survey", Description: "Technical site survey completed"},
		{Key: "proposal_accepted", Label: "Proposal Accepted", Description: "Proposal signed by customer"},
		{Key: "loan_sanctioned", Label: "Loan Sanctioned", Description: "Bank loan sanctioned", VendorGate: GateBankLoanFacilitation},
		{Key: "material_delivered", Label: "Material Delivered", Description: "Panels and inverter delivered on site"},
		{Key: "installation_done", Label: "Installation Done", Description: "Physical installation complete"},
		{Key: "net_metering", Label: "Net Metering", Description: "DISCOM net-metering application approved", VendorGate: GateDiscomNetMetering},
		{Key: "commissioning", Label: "Commissioning", Description: "System commissioned and handed over"},
	})
}

// New builds a catalog from entries in journey order. Ordinal indexes are
// assigned from position.
func New(entries []MilestoneDefinition) *Catalog {
	c := &Catalog{
		entries: make([]MilestoneDefinition, len(entries)),
		byKey:   make(map[string]MilestoneDefinition, len(entries)),
	}
	for i, entry := range entries {
		entry.OrdinalIndex = i
		c.entries[i] = entry
		c.byKey[entry.Key] = entry
	}
	return c
}

// Entries returns the journey in ordinal order.
func (c *Catalog) Entries() []MilestoneDefinition {
	out := make([]MilestoneDefinition, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Lookup(key string) (MilestoneDefinition, error) {
	def, ok := c.byKey[key]
	if !ok {
		return MilestoneDefinition{}, ErrUnknownMilestone
	}
	return def, nil
}

// Terminal returns the journey's last entry.
func (c *Catalog) Terminal() MilestoneDefinition {
	return c.entries[len(c.entries)-1]
}

func (c *Catalog) IsTerminal(key string) bool {
	return key == c.Terminal().Key
}

func (c *Catalog) Len() int {
	return len(c.entries)
}
