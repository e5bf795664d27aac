package optimise

import "fmt"

// GateState records which VAE-GAN sub-networks train on the next step.
//
// It is a two-bit value: bit 0 enables the decoder, bit 1 the
// discriminator. The encoder always trains.
type GateState uint8

// Gate states.
const (
	// Neither is transient: Gate never returns it.
	Neither           GateState = 0
	DecoderOnly       GateState = 1
	DiscriminatorOnly GateState = 2
	BothTrain         GateState = 3
)

const (
	decoderBit       GateState = 1 << 0
	discriminatorBit GateState = 1 << 1
)

// Decoder reports whether the decoder trains.
func (s GateState) Decoder() bool {
	return s&decoderBit != 0
}

// Discriminator reports whether the discriminator trains.
func (s GateState) Discriminator() bool {
	return s&discriminatorBit != 0
}

// String returns the state name.
func (s GateState) String() string {
	switch s {
	case Neither:
		return "Neither"
	case DecoderOnly:
		return "DecoderOnly"
	case DiscriminatorOnly:
		return "DiscriminatorOnly"
	case BothTrain:
		return "BothTrain"
	}
	return fmt.Sprintf("GateState(%d)", uint8(s))
}

// Thresholds parameterise the discriminator balance heuristic.
type Thresholds struct {
	Equilibrium float64
	Margin      float64
}

// DefaultThresholds returns equilibrium 0.68 and margin 0.2.
func DefaultThresholds() Thresholds {
	return Thresholds{Equilibrium: 0.68, Margin: 0.2}
}

// Low returns the bound under which the discriminator stops training.
func (t Thresholds) Low() float64 {
	return t.Equilibrium - t.Margin
}

// High returns the bound above which the decoder stops training.
func (t Thresholds) High() float64 {
	return t.Equilibrium + t.Margin
}

// transitions is indexed by [state][low][high]. A low signal clears the
// discriminator bit and a high signal clears the decoder bit.
var transitions = [4][2][2]GateState{
	Neither: {
		{Neither, Neither},
		{Neither, Neither},
	},
	DecoderOnly: {
		{DecoderOnly, Neither},
		{DecoderOnly, Neither},
	},
	DiscriminatorOnly: {
		{DiscriminatorOnly, DiscriminatorOnly},
		{Neither, Neither},
	},
	BothTrain: {
		{BothTrain, DiscriminatorOnly},
		{DecoderOnly, Neither},
	},
}

// Signals reports whether either batch mean is below Low and whether
// either is above High. Comparisons are strict.
func (t Thresholds) Signals(meanReal, meanRecon float64) (low, high bool) {
	low = meanReal < t.Low() || meanRecon < t.Low()
	high = meanReal > t.High() || meanRecon > t.High()
	return low, high
}

// Transition applies the table without resolving Neither.
func Transition(s GateState, low, high bool) GateState {
	return transitions[s&BothTrain][b2i(low)][b2i(high)]
}

// Resolve maps the transient Neither to BothTrain.
func Resolve(s GateState) GateState {
	if s == Neither {
		return BothTrain
	}
	return s
}

// Gate evaluates the balance heuristic on the batch means of the
// discriminator's real and reconstruction probabilities.
func Gate(s GateState, meanReal, meanRecon float64, t Thresholds) GateState {
	low, high := t.Signals(meanReal, meanRecon)
	return Resolve(Transition(s, low, high))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
