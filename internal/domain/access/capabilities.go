package access

const CapabilityChat = "chat"

// CapabilitiesFor lists what the UI may offer for a decision.
func CapabilitiesFor(d Decision) []string {
	if !d.Allowed {
		return []string{}
	}
	return []string{CapabilityChat}
}
