package enums

import "fmt"

// Channel names an event bus channel shared between UI fragments.
type Channel string

const (
	ChannelCartChanged            Channel = "cart-changed"
	ChannelNavigationRequested    Channel = "navigation-requested"
	ChannelCheckoutCompleted      Channel = "checkout-completed"
	ChannelContentUpdated         Channel = "content-updated"
	ChannelCheckoutPanelRequested Channel = "checkout-panel-requested"
)

var validChannels = []Channel{
	ChannelCartChanged,
	ChannelNavigationRequested,
	ChannelCheckoutCompleted,
	ChannelContentUpdated,
	ChannelCheckoutPanelRequested,
}

// String implements fmt.Stringer.
func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Channel.
func (c Channel) IsValid() bool {
	for _, candidate := range validChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChannel converts raw input into a Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}
