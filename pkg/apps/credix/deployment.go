package credix

import (
	"github.com/gagliardetto/solana-go"

	"github.com/supersafe-org/go-safe-apps/pkg/registry"
)

// DefaultMarket is the marketplace used when no market name is given.
const DefaultMarket = "credix-marketplace"

// Layout selects the instruction set of a deployment.
type Layout int

const (
	// LayoutV1 withdraws directly from the pool and tracks tranche
	// positions in an investor tranche account.
	LayoutV1 Layout = iota + 1
	// LayoutV2 withdraws through epoch requests and uses an optional
	// tranche info account.
	LayoutV2
)

func (l Layout) String() string {
	switch l {
	case LayoutV1:
		return "v1"
	case LayoutV2:
		return "v2"
	default:
		return "unknown"
	}
}

// Deployment identifies one Credix program.
type Deployment struct {
	Name      string
	Network   registry.Network
	ProgramID solana.PublicKey
	Layout    Layout
}

var (
	Mainnet = Deployment{
		Name:      "credix",
		Network:   registry.MainnetBeta,
		ProgramID: solana.MustPublicKeyFromBase58("CRDx2YkdtYtGZXGHZ59wNv1EwKHQndnRc1gT4p8i2vPX"),
		Layout:    LayoutV1,
	}
	Devnet = Deployment{
		Name:      "credix-devnet",
		Network:   registry.Devnet,
		ProgramID: solana.MustPublicKeyFromBase58("crdszSnZQu7j36KfsMJ4VEmMUTJgrNYXwoPVHUANpAu"),
		Layout:    LayoutV2,
	}
)

// DeploymentFor returns the deployment running on network.
func DeploymentFor(network registry.Network) (Deployment, bool) {
	switch network {
	case registry.MainnetBeta:
		return Mainnet, true
	case registry.Devnet:
		return Devnet, true
	default:
		return Deployment{}, false
	}
}

// DeploymentByProgram returns the deployment with the given program id.
func DeploymentByProgram(programID solana.PublicKey) (Deployment, bool) {
	for _, d := range []Deployment{Mainnet, Devnet} {
		if d.ProgramID.Equals(programID) {
			return d, true
		}
	}
	return Deployment{}, false
}
