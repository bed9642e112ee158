package wizard

import (
	"github.com/charmbracelet/huh"

	"github.com/imamik/seedmaster/internal/config"
)

// Option is a selectable value with a human description.
type Option struct {
	Value       string
	Description string
}

// Providers lists the supported cloud backends.
var Providers = []Option{
	{Value: config.ProviderDigitalOcean, Description: "DigitalOcean droplets"},
	{Value: config.ProviderHetzner, Description: "Hetzner Cloud servers"},
}

// Regions holds suggested regions per provider.
var Regions = map[string][]Option{
	config.ProviderDigitalOcean: {
		{Value: "nyc3", Description: "New York 3"},
		{Value: "sfo3", Description: "San Francisco 3"},
		{Value: "ams3", Description: "Amsterdam 3"},
		{Value: "fra1", Description: "Frankfurt 1"},
		{Value: "lon1", Description: "London 1"},
		{Value: "sgp1", Description: "Singapore 1"},
	},
	config.ProviderHetzner: {
		{Value: "nbg1", Description: "Nuremberg, Germany"},
		{Value: "fsn1", Description: "Falkenstein, Germany"},
		{Value: "hel1", Description: "Helsinki, Finland"},
		{Value: "ash", Description: "Ashburn, USA"},
		{Value: "hil", Description: "Hillsboro, USA"},
		{Value: "sin", Description: "Singapore"},
	},
}

// Sizes holds suggested instance sizes per provider.
var Sizes = map[string][]Option{
	config.ProviderDigitalOcean: {
		{Value: "s-2vcpu-4gb", Description: "2 vCPU, 4GB RAM"},
		{Value: "s-4vcpu-8gb", Description: "4 vCPU, 8GB RAM"},
		{Value: "c-4", Description: "4 dedicated vCPU, 8GB RAM"},
	},
	config.ProviderHetzner: {
		{Value: "cpx21", Description: "3 vCPU, 4GB RAM (AMD)"},
		{Value: "cpx31", Description: "4 vCPU, 8GB RAM (AMD)"},
		{Value: "ccx13", Description: "2 vCPU, 8GB RAM (Dedicated)"},
	},
}

// toHuhOptions converts options into huh select options.
func toHuhOptions(opts []Option) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		out = append(out, huh.NewOption(o.Value+" - "+o.Description, o.Value))
	}
	return out
}
