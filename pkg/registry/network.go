package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Network identifies the cluster an app is deployed on. The numeric values
// are part of the registry data format.
type Network int

const (
	MainnetBeta Network = 101
	Testnet     Network = 102
	Devnet      Network = 103
)

// Networks lists every known network in registry order.
func Networks() []Network {
	return []Network{MainnetBeta, Testnet, Devnet}
}

// String returns the canonical cluster name.
func (n Network) String() string {
	switch n {
	case MainnetBeta:
		return "mainnet-beta"
	case Testnet:
		return "testnet"
	case Devnet:
		return "devnet"
	default:
		return "network(" + strconv.Itoa(int(n)) + ")"
	}
}

// Valid reports whether n is one of the known networks.
func (n Network) Valid() bool {
	switch n {
	case MainnetBeta, Testnet, Devnet:
		return true
	default:
		return false
	}
}

// ParseNetwork accepts cluster names ("mainnet-beta", "mainnet", "testnet",
// "devnet") as well as the numeric identifiers.
func ParseNetwork(raw string) (Network, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "mainnet-beta", "mainnet", "mainnetbeta":
		return MainnetBeta, nil
	case "testnet":
		return Testnet, nil
	case "devnet":
		return Devnet, nil
	}

	if num, err := strconv.Atoi(value); err == nil {
		if n := Network(num); n.Valid() {
			return n, nil
		}
	}
	return 0, fmt.Errorf("registry: unknown network %q", raw)
}

// MarshalJSON keeps the numeric wire form.
func (n Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(n))
}

// UnmarshalJSON accepts either the numeric identifier or a cluster name.
func (n *Network) UnmarshalJSON(data []byte) error {
	var num int
	if err := json.Unmarshal(data, &num); err == nil {
		*n = Network(num)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("registry: network must be a number or a name: %w", err)
	}
	parsed, err := ParseNetwork(name)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML registries.
func (n *Network) UnmarshalYAML(node *yaml.Node) error {
	var num int
	if err := node.Decode(&num); err == nil {
		*n = Network(num)
		return nil
	}
	parsed, err := ParseNetwork(node.Value)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
