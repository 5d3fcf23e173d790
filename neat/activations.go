package neat

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Activation is the closed set of node activation functions.
type Activation uint8

const (
	Identity Activation = iota
	Sigmoid
	ReLU
	LeakyReLU
	Tanh

	numActivations
)

// activationTable holds the apply function and neutral value for every Activation.
// The neutral value v* satisfies apply(v*) ≈ 1.0 and is used by add-node mutation.
var activationTable = [numActivations]struct {
	name    string
	apply   func(float64) float64
	neutral float64
}{
	Identity:  {"identity", identityFn, 1.0},
	Sigmoid:   {"sigmoid", sigmoidFn, 4.0},  // sigmoid(4) = 0.98201
	ReLU:      {"relu", reluFn, 1.0},
	LeakyReLU: {"leaky_relu", leakyReLUFn, 1.0},
	Tanh:      {"tanh", math.Tanh, 2.37}, // tanh(2.37) = 0.98267
}

// ActivationFunctions maps configuration names to activations.
var ActivationFunctions = map[string]Activation{
	"identity":   Identity,
	"linear":     Identity,
	"sigmoid":    Sigmoid,
	"relu":       ReLU,
	"leaky_relu": LeakyReLU,
	"lrelu":      LeakyReLU,
	"tanh":       Tanh,
}

// GetActivation retrieves an activation by name.
func GetActivation(name string) (Activation, error) {
	if a, ok := ActivationFunctions[strings.ToLower(strings.TrimSpace(name))]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown activation function: %s", name)
}

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 {
	return activationTable[a].apply(x)
}

// NeutralValue returns v* with Apply(v*) ≈ 1.
func (a Activation) NeutralValue() float64 {
	return activationTable[a].neutral
}

// Valid reports whether a is one of the defined activations.
func (a Activation) Valid() bool {
	return a < numActivations
}

func (a Activation) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Activation(%d)", uint8(a))
	}
	return activationTable[a].name
}

// RandomActivation picks an activation uniformly.
func RandomActivation(rng *rand.Rand) Activation {
	return Activation(rng.Intn(int(numActivations)))
}

func identityFn(x float64) float64 { return x }

func sigmoidFn(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func reluFn(x float64) float64 { return math.Max(0, x) }

func leakyReLUFn(x float64) float64 {
	if x >= 0 {
		return x
	}
	return 0.1 * x
}
