package infra

import (
	p "github.com/pulumi/pulumi-go-provider"
	"github.com/pulumi/pulumi-go-provider/infer"
)

// ProviderName is the Pulumi package name of the component provider.
const ProviderName = "glowcycle"

// NewProvider builds the component provider serving GlowCycleStack.
func NewProvider() (p.Provider, error) {
	return infer.NewProviderBuilder().
		WithComponents(infer.ComponentF(NewGlowCycleStack)).
		Build()
}
