package domain

type Capability string

const (
	CapabilityAccountAdmin  Capability = "account-admin"
	CapabilityFundsMovement Capability = "funds-movement"
)

// Principal identifies the authenticated caller. It is passed explicitly
// into every service call; there is no ambient admin flag.
type Principal struct {
	ChannelID    string
	Capabilities []Capability
}

func (p Principal) Can(capability Capability) bool {
	for _, granted := range p.Capabilities {
		if granted == capability {
			return true
		}
	}
	return false
}
